//go:build windows

package process

import (
	"os"
	"os/exec"
	"syscall"
)

// No CREATE_NEW_PROCESS_GROUP: console Ctrl+C is delivered to workers too
func setupProcessAttributes(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{}
}

func signalOf(state *os.ProcessState) string {
	return ""
}

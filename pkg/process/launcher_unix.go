//go:build !windows

package process

import (
	"os"
	"os/exec"
	"syscall"
)

// Workers stay in the orchestrator's process group so a terminal interrupt
// reaches all of them.
func setupProcessAttributes(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{}
}

func signalOf(state *os.ProcessState) string {
	status, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !status.Signaled() {
		return ""
	}
	return status.Signal().String()
}

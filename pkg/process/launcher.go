package process

import (
	stderrors "errors"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/core-tools/resburner/pkg/errors"
	"github.com/core-tools/resburner/pkg/logcollection"
	"github.com/core-tools/resburner/pkg/logging"
	"github.com/core-tools/resburner/pkg/workload"
)

// ExecutionConfig describes the executable that runs workers. An empty
// ExecutablePath re-executes the current binary.
type ExecutionConfig struct {
	ExecutablePath   string
	Args             []string
	Environment      []string
	WorkingDirectory string
}

// WorkerProcess is a started worker
type WorkerProcess interface {
	Pid() int
	// Wait blocks until the worker has exited
	Wait() ExitStatus
}

// ExitStatus describes how a worker terminated
type ExitStatus struct {
	ExitCode int    // -1 when the process did not exit normally
	Signal   string // terminating signal, if any
	Err      error  // launch or wait failure unrelated to the exit code
}

func (s ExitStatus) Success() bool {
	return s.Err == nil && s.Signal == "" && s.ExitCode == 0
}

// WorkerLauncher starts worker processes for one workload
type WorkerLauncher struct {
	execution     ExecutionConfig
	encodedConfig string
	collector     logcollection.LogCollector
	logger        logging.Logger
}

// NewWorkerLauncher validates execution and encodes config once for all
// launches. With a nil collector worker output goes to stderr unchanged.
func NewWorkerLauncher(execution ExecutionConfig, config *workload.Config, collector logcollection.LogCollector, logger logging.Logger) (*WorkerLauncher, error) {
	if execution.ExecutablePath == "" {
		self, err := os.Executable()
		if err != nil {
			return nil, errors.NewInternalError("failed to locate own executable", err)
		}
		execution.ExecutablePath = self
	}

	if err := ValidateExecutionConfig(execution); err != nil {
		return nil, errors.NewValidationError("invalid execution configuration", err)
	}

	encoded, err := config.Encode()
	if err != nil {
		return nil, err
	}

	return &WorkerLauncher{
		execution:     execution,
		encodedConfig: encoded,
		collector:     collector,
		logger:        logger,
	}, nil
}

func (l *WorkerLauncher) Launch(wctx workload.WorkerContext) (WorkerProcess, error) {
	cmd := exec.Command(l.execution.ExecutablePath, l.execution.Args...)
	cmd.Dir = l.execution.WorkingDirectory

	env := os.Environ()
	env = append(env, l.execution.Environment...)
	cmd.Env = append(env, requestEnvironment(wctx, l.encodedConfig)...)

	setupProcessAttributes(cmd)

	proc := &workerProcess{
		cmd:  cmd,
		wctx: wctx,
	}

	if l.collector != nil {
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, errors.NewProcessError("failed to create stdout pipe", err).WithContext("worker", wctx.String())
		}
		cmd.Stderr = cmd.Stdout
		proc.relayDone = make(chan struct{})

		if err := cmd.Start(); err != nil {
			return nil, errors.NewProcessError("failed to start worker", err).
				WithContext("worker", wctx.String()).WithContext("executable_path", l.execution.ExecutablePath)
		}

		go func() {
			defer close(proc.relayDone)
			err := l.collector.CollectFromStream(stdout,
				logcollection.Iteration(wctx.Iteration),
				logcollection.Worker(wctx.Worker),
				logcollection.PID(cmd.Process.Pid))
			if err != nil {
				l.logger.Warnf("Worker output relay stopped, worker: %s, error: %v", wctx, err)
				// Keep draining so the worker never blocks on a full pipe
				_, _ = io.Copy(io.Discard, stdout)
			}
		}()
	} else {
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			return nil, errors.NewProcessError("failed to start worker", err).
				WithContext("worker", wctx.String()).WithContext("executable_path", l.execution.ExecutablePath)
		}
	}

	l.logger.Debugf("Started worker, iteration: %d, worker: %d, PID: %d", wctx.Iteration, wctx.Worker, cmd.Process.Pid)
	return proc, nil
}

type workerProcess struct {
	cmd       *exec.Cmd
	wctx      workload.WorkerContext
	relayDone chan struct{}
}

func (p *workerProcess) Pid() int {
	return p.cmd.Process.Pid
}

func (p *workerProcess) Wait() ExitStatus {
	// The pipe must be drained before Wait closes it
	if p.relayDone != nil {
		<-p.relayDone
	}
	err := p.cmd.Wait()
	return exitStatusOf(p.cmd.ProcessState, err)
}

// ExitCodeOf returns the exit code carried by an *exec.ExitError, 0 for nil
// and -1 for any other error.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func exitStatusOf(state *os.ProcessState, err error) ExitStatus {
	if state == nil {
		return ExitStatus{ExitCode: -1, Err: errors.NewProcessError("failed to wait for worker", err)}
	}
	status := ExitStatus{
		ExitCode: state.ExitCode(),
		Signal:   signalOf(state),
	}
	var exitErr *exec.ExitError
	if err != nil && !stderrors.As(err, &exitErr) {
		status.Err = errors.NewProcessError("failed to wait for worker", err)
	}
	return status
}

// ValidateExecutionConfig validates execution configuration
func ValidateExecutionConfig(config ExecutionConfig) error {
	if config.ExecutablePath == "" {
		return errors.NewValidationError("executable path is required", nil)
	}

	if info, err := os.Stat(config.ExecutablePath); err != nil {
		return errors.NewValidationError("executable not found: "+config.ExecutablePath, err)
	} else if info.IsDir() {
		return errors.NewValidationError("executable is a directory: "+config.ExecutablePath, nil)
	}

	if config.WorkingDirectory != "" {
		if info, err := os.Stat(config.WorkingDirectory); err != nil {
			return errors.NewValidationError("working directory not accessible: "+config.WorkingDirectory, err)
		} else if !info.IsDir() {
			return errors.NewValidationError("working directory is not a directory: "+config.WorkingDirectory, nil)
		}
	}

	for _, env := range config.Environment {
		if !strings.Contains(env, "=") {
			return errors.NewValidationError("invalid environment variable format: "+env, nil)
		}
	}

	return nil
}

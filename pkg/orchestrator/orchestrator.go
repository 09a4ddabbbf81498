package orchestrator

import (
	"time"

	"github.com/grailbio/base/traverse"

	"github.com/core-tools/resburner/pkg/logcollection"
	"github.com/core-tools/resburner/pkg/process"
	"github.com/core-tools/resburner/pkg/workload"
)

// Launcher starts one worker process
type Launcher interface {
	Launch(wctx workload.WorkerContext) (process.WorkerProcess, error)
}

type Options struct {
	// OnIteration, if set, is called after every iteration
	OnIteration func(result IterationResult)
}

// Orchestrator runs iterations of concurrently executing workers. An
// iteration finishes only when all of its workers have terminated, and no
// worker failure stops its siblings or later iterations.
type Orchestrator struct {
	config   *workload.Config
	launcher Launcher
	logger   logcollection.StructuredLogger
	options  Options
}

func New(config *workload.Config, launcher Launcher, logger logcollection.StructuredLogger, options Options) *Orchestrator {
	return &Orchestrator{
		config:   config,
		launcher: launcher,
		logger:   logger,
		options:  options,
	}
}

// Run executes the configured number of iterations, or never returns when
// iterations are infinite.
func (o *Orchestrator) Run() Summary {
	start := time.Now()
	summary := Summary{}

	if o.config.Infinite() {
		o.logger.Infof("Running forever, processes per iteration: %d", o.config.Processes)
	} else {
		o.logger.Infof("Running %d iterations, processes per iteration: %d", o.config.Iterations, o.config.Processes)
	}

	for i := 0; o.config.Infinite() || i < o.config.Iterations; i++ {
		result := o.RunIteration(i)
		summary.add(result)
		if o.options.OnIteration != nil {
			o.options.OnIteration(result)
		}
	}

	summary.Elapsed = time.Since(start)
	o.logger.LogWithFields(logcollection.InfoLevel, "run completed",
		logcollection.Int("iterations", summary.Iterations),
		logcollection.Int("launched", summary.Launched),
		logcollection.Int("succeeded", summary.Succeeded),
		logcollection.Int("failed", summary.Failed),
		logcollection.Duration("elapsed", summary.Elapsed),
	)
	return summary
}

// RunIteration launches every worker of iteration i in index order, then
// waits for all of them.
func (o *Orchestrator) RunIteration(i int) IterationResult {
	start := time.Now()
	n := o.config.Processes

	outcomes := make([]WorkerOutcome, n)
	procs := make([]process.WorkerProcess, n)

	for p := 0; p < n; p++ {
		wctx := workload.WorkerContext{Iteration: i, Worker: p}
		outcomes[p].Context = wctx

		proc, err := o.launcher.Launch(wctx)
		if err != nil {
			outcomes[p].ExitCode = -1
			outcomes[p].Err = err
			o.logger.LogWithFields(logcollection.ErrorLevel, "worker launch failed", outcomes[p].fields()...)
			continue
		}
		procs[p] = proc
		outcomes[p].PID = proc.Pid()
	}

	// Each writes only its own outcome slot
	_ = traverse.Each(n, func(p int) error {
		if procs[p] == nil {
			return nil
		}
		status := procs[p].Wait()
		outcome := &outcomes[p]
		outcome.ExitCode = status.ExitCode
		outcome.Signal = status.Signal
		outcome.Err = status.Err

		if outcome.Succeeded() {
			o.logger.LogWithFields(logcollection.InfoLevel, "worker completed", outcome.fields()...)
		} else {
			o.logger.LogWithFields(logcollection.ErrorLevel, "worker failed", outcome.fields()...)
		}
		return nil
	})

	result := IterationResult{
		Iteration: i,
		Outcomes:  outcomes,
		Elapsed:   time.Since(start),
	}
	o.logger.LogWithFields(logcollection.InfoLevel, "iteration completed",
		logcollection.Iteration(i),
		logcollection.Int("succeeded", result.Succeeded()),
		logcollection.Int("failed", result.Failed()),
		logcollection.Duration("elapsed", result.Elapsed),
	)
	return result
}

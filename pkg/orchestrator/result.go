package orchestrator

import (
	"time"

	"github.com/core-tools/resburner/pkg/logcollection"
	"github.com/core-tools/resburner/pkg/workload"
)

// WorkerOutcome is how one worker of an iteration terminated
type WorkerOutcome struct {
	Context  workload.WorkerContext
	PID      int    // 0 when the worker was never started
	ExitCode int    // -1 when the worker did not exit normally
	Signal   string // terminating signal, if any
	Err      error  // launch or wait failure
}

func (o WorkerOutcome) Launched() bool {
	return o.PID > 0
}

func (o WorkerOutcome) Succeeded() bool {
	return o.Err == nil && o.Signal == "" && o.ExitCode == 0
}

func (o WorkerOutcome) fields() []logcollection.LogField {
	fields := []logcollection.LogField{
		logcollection.Iteration(o.Context.Iteration),
		logcollection.Worker(o.Context.Worker),
		logcollection.Int("exit_code", o.ExitCode),
	}
	if o.PID > 0 {
		fields = append(fields, logcollection.PID(o.PID))
	}
	if o.Signal != "" {
		fields = append(fields, logcollection.String("signal", o.Signal))
	}
	if o.Err != nil {
		fields = append(fields, logcollection.Error(o.Err))
	}
	return fields
}

// IterationResult collects the outcome of every worker of one iteration,
// indexed by worker index.
type IterationResult struct {
	Iteration int
	Outcomes  []WorkerOutcome
	Elapsed   time.Duration
}

func (r IterationResult) Succeeded() int {
	count := 0
	for _, outcome := range r.Outcomes {
		if outcome.Succeeded() {
			count++
		}
	}
	return count
}

func (r IterationResult) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// Summary aggregates every iteration of a run
type Summary struct {
	Iterations int
	Launched   int
	Succeeded  int
	Failed     int
	Elapsed    time.Duration
}

func (s *Summary) add(result IterationResult) {
	s.Iterations++
	for _, outcome := range result.Outcomes {
		if outcome.Launched() {
			s.Launched++
		}
		if outcome.Succeeded() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
}

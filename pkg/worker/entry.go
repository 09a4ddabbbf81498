package worker

import (
	"os"

	"github.com/core-tools/resburner/pkg/logcollection"
	"github.com/core-tools/resburner/pkg/logging"
	"github.com/core-tools/resburner/pkg/process"
	"github.com/core-tools/resburner/pkg/resourceusage"
)

// Main runs a worker process to completion and returns its exit code
func Main(request *process.WorkerRequest) int {
	zapLogger := logging.NewWorkerZapLogger(os.Stdout)
	logger := logcollection.NewZapAdapter(zapLogger).WithFields(
		logcollection.Iteration(request.Context.Iteration),
		logcollection.Worker(request.Context.Worker),
		logcollection.PID(os.Getpid()),
	)
	defer logger.Sync()

	monitor := resourceusage.NewMonitor(logging.NewLogger("resourceusage: ", logging.FuncsOf(logger)))

	_, err := New(request.Config, request.Context, monitor, logger).Run()
	if err != nil {
		logger.WithError(err).LogWithFields(logcollection.ErrorLevel, "worker failed")
	}
	return ExitCode(err)
}

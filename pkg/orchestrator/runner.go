package orchestrator

import (
	"code.cloudfoundry.org/bytefmt"

	"github.com/core-tools/resburner/pkg/errors"
	"github.com/core-tools/resburner/pkg/logcollection"
	"github.com/core-tools/resburner/pkg/logging"
	"github.com/core-tools/resburner/pkg/process"
	"github.com/core-tools/resburner/pkg/resourceusage"
	"github.com/core-tools/resburner/pkg/workload"
)

type RunOptions struct {
	Workload  *workload.Config
	Logging   logging.Config
	Execution process.ExecutionConfig
	Host      resourceusage.Host
	Options   Options
}

func logPrefix(module string) string {
	return "module: " + module + " , "
}

// Run validates the workload, sets up logging with worker output relay and
// runs the orchestrator to completion. Only setup failures are returned;
// worker failures are reported in the Summary.
func Run(options RunOptions, bootLogger logging.Logger) (Summary, error) {
	if err := workload.ValidateConfig(options.Workload); err != nil {
		return Summary{}, err
	}

	zapLogger, err := logging.NewOrchestratorZapLogger(options.Logging)
	if err != nil {
		return Summary{}, errors.NewValidationError("failed to set up logging", err)
	}
	logger := logcollection.NewZapAdapter(zapLogger)
	defer logger.Sync()

	if options.Logging.File.Path != "" {
		bootLogger.Infof("Logging to %s", options.Logging.File.Path)
	}

	host := options.Host
	logger.LogWithFields(logcollection.InfoLevel, "host",
		logcollection.Int("logical_cpus", host.LogicalCPUs),
		logcollection.String("memory_total", bytefmt.ByteSize(host.MemoryTotal)),
		logcollection.String("memory_available", bytefmt.ByteSize(host.MemoryAvailable)),
		logcollection.Float64("memory_used_percent", host.MemoryPercent),
	)

	config := options.Workload
	logger.LogWithFields(logcollection.InfoLevel, "workload",
		logcollection.Int("iterations", config.Iterations),
		logcollection.Int("processes", config.Processes),
		logcollection.Int("loops", config.Loops),
		logcollection.Int("cpu_load", config.CPULoad),
		logcollection.String("memory_load", config.MemoryLoad.String()),
		logcollection.String("disk_write_load", config.DiskWriteLoad.String()),
		logcollection.String("disk_read_load", config.DiskReadLoad.String()),
		logcollection.String("disk_write_destination", config.DiskWriteDestination),
		logcollection.String("disk_read_source", config.DiskReadSource),
		logcollection.Int("disk_buffer", config.DiskBuffer),
	)

	relay := logcollection.NewStreamRelay(logger.WithFields(logcollection.Component("worker")))
	launcher, err := process.NewWorkerLauncher(options.Execution, config, relay,
		logging.NewLogger(logPrefix("process"), logging.FuncsOf(logger)))
	if err != nil {
		return Summary{}, err
	}

	orchestrator := New(config, launcher, logger.WithFields(logcollection.Component("orchestrator")), options.Options)
	return orchestrator.Run(), nil
}

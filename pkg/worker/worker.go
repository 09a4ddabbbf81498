package worker

import (
	"os"
	"time"

	"github.com/grailbio/base/diagnostic/memsize"

	"github.com/core-tools/resburner/pkg/errors"
	"github.com/core-tools/resburner/pkg/logcollection"
	"github.com/core-tools/resburner/pkg/resourceusage"
	"github.com/core-tools/resburner/pkg/workload"
)

// Process exit codes of a worker
const (
	ExitCodeSuccess       = 0
	ExitCodeFailure       = 1
	ExitCodeConfiguration = 2
)

// ExitCode maps a Run error to the worker's process exit code
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitCodeSuccess
	case errors.IsValidationError(err):
		return ExitCodeConfiguration
	default:
		return ExitCodeFailure
	}
}

// Worker executes one load-generation run. It owns the retained buffer and
// the disk handles; a Worker is not safe for concurrent use and Run may be
// called once.
type Worker struct {
	config  *workload.Config
	wctx    workload.WorkerContext
	monitor resourceusage.Monitor
	logger  logcollection.StructuredLogger

	retained [][]byte
	writer   *diskWriter
	reader   *diskReader
}

func New(config *workload.Config, wctx workload.WorkerContext, monitor resourceusage.Monitor, logger logcollection.StructuredLogger) *Worker {
	return &Worker{
		config:  config,
		wctx:    wctx,
		monitor: monitor,
		logger:  logger,
	}
}

// Run performs the configured loops and emits one resource usage report.
// Configuration problems are returned as validation errors before any loop
// runs; disk failures abort the run as I/O errors. No report is emitted
// on failure.
func (w *Worker) Run() (*Report, error) {
	readPath := w.wctx.ResolvePath(w.config.DiskReadSource)
	writePath := w.wctx.ResolvePath(w.config.DiskWriteDestination)

	// The resolved path is checked, so templated sources are validated per worker
	if w.config.DiskReadLoad > 0 {
		if err := checkReadSource(readPath); err != nil {
			return nil, err
		}
	}

	w.logger.Debugf("Worker starting, loops: %d, cpu load: %d, memory load: %s, disk write: %s, disk read: %s",
		w.config.Loops, w.config.CPULoad, w.config.MemoryLoad, w.config.DiskWriteLoad, w.config.DiskReadLoad)

	start := time.Now()
	defer w.closeHandles()

	for loop := 1; loop <= w.config.Loops; loop++ {
		if err := w.step(loop, writePath, readPath); err != nil {
			return nil, errors.NewIOError("worker loop failed", err).WithContext("loop", loop)
		}
	}

	if err := w.closeHandles(); err != nil {
		return nil, err
	}

	report := w.buildReport(time.Since(start))
	w.logger.LogWithFields(logcollection.InfoLevel, "resource usage", report.Fields()...)
	return report, nil
}

func (w *Worker) step(loop int, writePath, readPath string) error {
	cpuSink += burnCPU(w.config.CPULoad)

	w.retained = append(w.retained, newChunk(loop, w.config.MemoryLoad.Int()))

	if w.config.DiskWriteLoad > 0 {
		if w.writer == nil {
			writer, err := openDiskWriter(writePath, w.config.DiskBuffer)
			if err != nil {
				return err
			}
			w.writer = writer
		}
		if err := w.writer.write(int64(w.config.DiskWriteLoad)); err != nil {
			return err
		}
	}

	if w.config.DiskReadLoad > 0 {
		if w.reader == nil {
			reader, err := openDiskReader(readPath, w.config.DiskBuffer)
			if err != nil {
				return err
			}
			w.reader = reader
		}
		if err := w.reader.readQuota(int64(w.config.DiskReadLoad)); err != nil {
			return err
		}
	}

	return nil
}

// closeHandles closes the write handle, then the read handle. It is safe to
// call more than once.
func (w *Worker) closeHandles() error {
	collection := errors.NewErrorCollection()
	if w.writer != nil && w.writer.file != nil {
		collection.Add(w.writer.Close())
		w.writer.file = nil
	}
	if w.reader != nil && w.reader.file != nil {
		collection.Add(w.reader.Close())
		w.reader.file = nil
	}
	if collection.HasErrors() {
		return collection.Errors[0]
	}
	return nil
}

func (w *Worker) buildReport(elapsed time.Duration) *Report {
	report := &Report{
		Context:        w.wctx,
		PID:            os.Getpid(),
		Loops:          w.config.Loops,
		RetainedChunks: len(w.retained),
		RetainedBytes:  memsize.DeepSize(&w.retained),
		Elapsed:        elapsed,
	}
	if w.writer != nil {
		report.BytesWritten = w.writer.written
	}
	if w.reader != nil {
		report.BytesRead = w.reader.read
		report.ReadRewinds = w.reader.rewinds
	}

	usage, err := w.monitor.GetProcessUsage(report.PID)
	if err != nil {
		w.logger.Warnf("Failed to measure worker resource usage: %v", err)
	} else {
		report.Usage = usage
	}
	return report
}

// Retained returns the retained buffer
func (w *Worker) Retained() [][]byte {
	return w.retained
}

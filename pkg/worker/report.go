package worker

import (
	"time"

	"code.cloudfoundry.org/bytefmt"

	"github.com/core-tools/resburner/pkg/logcollection"
	"github.com/core-tools/resburner/pkg/resourceusage"
	"github.com/core-tools/resburner/pkg/workload"
)

// Report is the footprint of one completed worker run
type Report struct {
	Context        workload.WorkerContext
	PID            int
	Loops          int
	RetainedChunks int
	RetainedBytes  int // deep size of the retained buffer
	BytesWritten   int64
	BytesRead      int64
	ReadRewinds    int
	Elapsed        time.Duration
	Usage          *resourceusage.ResourceUsage // nil when measurement failed
}

func (r *Report) Fields() []logcollection.LogField {
	fields := []logcollection.LogField{
		logcollection.Int("loops", r.Loops),
		logcollection.Duration("elapsed", r.Elapsed),
		logcollection.Int("retained_chunks", r.RetainedChunks),
		logcollection.Int("retained_bytes", r.RetainedBytes),
		logcollection.String("retained_size", bytefmt.ByteSize(uint64(r.RetainedBytes))),
		logcollection.Int64("disk_bytes_written", r.BytesWritten),
		logcollection.Int64("disk_bytes_read", r.BytesRead),
		logcollection.Int("disk_read_rewinds", r.ReadRewinds),
	}
	if r.Usage == nil {
		return fields
	}
	return append(fields,
		logcollection.Float64("cpu_user_seconds", r.Usage.CPUUser),
		logcollection.Float64("cpu_system_seconds", r.Usage.CPUSystem),
		logcollection.Uint64("memory_rss", r.Usage.MemoryRSS),
		logcollection.String("memory_rss_size", bytefmt.ByteSize(r.Usage.MemoryRSS)),
		logcollection.Uint64("memory_virtual", r.Usage.MemoryVirtual),
		logcollection.Uint64("io_read_bytes", r.Usage.IOReadBytes),
		logcollection.Uint64("io_write_bytes", r.Usage.IOWriteBytes),
		logcollection.Uint64("io_read_ops", r.Usage.IOReadOps),
		logcollection.Uint64("io_write_ops", r.Usage.IOWriteOps),
		logcollection.Int("open_fds", r.Usage.OpenFileDescriptors),
		logcollection.Int("threads", r.Usage.Threads),
	)
}

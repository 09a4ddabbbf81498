package resourceusage

import (
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/core-tools/resburner/pkg/errors"
	"github.com/core-tools/resburner/pkg/logging"
)

// processMonitor reads process statistics through gopsutil
type processMonitor struct {
	logger logging.Logger
}

func NewMonitor(logger logging.Logger) Monitor {
	return &processMonitor{
		logger: logger,
	}
}

func (m *processMonitor) GetProcessUsage(pid int) (*ResourceUsage, error) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return nil, errors.NewNotFoundError("process not found", err).WithContext("pid", pid)
	}

	usage := &ResourceUsage{
		Timestamp: time.Now(),
	}

	if times, err := proc.Times(); err == nil {
		usage.CPUUser = times.User
		usage.CPUSystem = times.System
	} else {
		m.unsupported(pid, "cpu times", err)
	}

	if memory, err := proc.MemoryInfo(); err == nil {
		usage.MemoryRSS = memory.RSS
		usage.MemoryVirtual = memory.VMS
	} else {
		m.unsupported(pid, "memory info", err)
	}

	// Not available on darwin, and requires privileges for foreign processes on linux
	if io, err := proc.IOCounters(); err == nil {
		usage.IOReadBytes = io.ReadBytes
		usage.IOWriteBytes = io.WriteBytes
		usage.IOReadOps = io.ReadCount
		usage.IOWriteOps = io.WriteCount
	} else {
		m.unsupported(pid, "io counters", err)
	}

	if fds, err := proc.NumFDs(); err == nil {
		usage.OpenFileDescriptors = int(fds)
	} else {
		m.unsupported(pid, "open file descriptors", err)
	}

	if threads, err := proc.NumThreads(); err == nil {
		usage.Threads = int(threads)
	} else {
		m.unsupported(pid, "threads", err)
	}

	return usage, nil
}

func (m *processMonitor) unsupported(pid int, metric string, err error) {
	m.logger.Debugf("Resource metric unavailable, pid: %d, metric: %s, error: %v", pid, metric, err)
}

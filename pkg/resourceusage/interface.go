package resourceusage

import (
	"time"
)

// Monitor measures the resource footprint of a running process
type Monitor interface {
	GetProcessUsage(pid int) (*ResourceUsage, error)
}

// ResourceUsage is a point-in-time snapshot of one process. Metrics the
// platform cannot report are left zero.
type ResourceUsage struct {
	Timestamp time.Time `json:"timestamp"`

	// CPU time accounting, in seconds
	CPUUser   float64 `json:"cpu_user"`
	CPUSystem float64 `json:"cpu_system"`

	// Memory usage
	MemoryRSS     uint64 `json:"memory_rss"`     // Resident Set Size
	MemoryVirtual uint64 `json:"memory_virtual"` // Virtual memory

	// I/O usage
	IOReadBytes  uint64 `json:"io_read_bytes"`
	IOWriteBytes uint64 `json:"io_write_bytes"`
	IOReadOps    uint64 `json:"io_read_ops"`
	IOWriteOps   uint64 `json:"io_write_ops"`

	OpenFileDescriptors int `json:"open_file_descriptors"`
	Threads             int `json:"threads"`
}

// CPUTotal returns user plus system CPU time
func (u *ResourceUsage) CPUTotal() time.Duration {
	return time.Duration((u.CPUUser + u.CPUSystem) * float64(time.Second))
}

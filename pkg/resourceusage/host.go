package resourceusage

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Host describes the machine the load runs on
type Host struct {
	LogicalCPUs     int
	MemoryTotal     uint64
	MemoryAvailable uint64
	MemoryPercent   float64
}

// HostInfo collects host capacity. The CPU count falls back to
// runtime.NumCPU and memory figures stay zero when unavailable.
func HostInfo() Host {
	host := Host{
		LogicalCPUs: runtime.NumCPU(),
	}
	if count, err := cpu.Counts(true); err == nil && count > 0 {
		host.LogicalCPUs = count
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		host.MemoryTotal = vm.Total
		host.MemoryAvailable = vm.Available
		host.MemoryPercent = vm.UsedPercent
	}
	return host
}

// Package sysprobe sizes the frame worker pool from the host's CPUs and
// free memory.
package sysprobe

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Info describes the host.
type Info struct {
	LogicalCPUs    int
	AvailableBytes uint64
}

// Probe reads the host state. Values that cannot be read fall back to
// runtime.NumCPU and zero (unknown) memory.
func Probe() Info {
	info := Info{LogicalCPUs: runtime.NumCPU()}
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		info.LogicalCPUs = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		info.AvailableBytes = vm.Available
	}
	return info
}

// FrameBytes is the memory one in-flight frame needs: the RGBA canvas plus
// about as much again for layers.
func FrameBytes(width, height int) uint64 {
	if width <= 0 || height <= 0 {
		return 0
	}
	return uint64(width) * uint64(height) * 4 * 2
}

// Workers returns the worker count for frames of frameBytes. Every worker
// keeps up to two frames in flight, and at most half the available memory
// is used. The result is between 1 and limit (no limit when limit <= 0).
func (i Info) Workers(frameBytes uint64, limit int) int {
	n := i.LogicalCPUs
	if n < 1 {
		n = 1
	}
	if i.AvailableBytes > 0 && frameBytes > 0 {
		byMem := int(i.AvailableBytes / 2 / (frameBytes * 2))
		if byMem < n {
			n = byMem
		}
	}
	if limit > 0 && n > limit {
		n = limit
	}
	if n < 1 {
		n = 1
	}
	return n
}

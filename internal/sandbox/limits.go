package sandbox

import (
	"fmt"
)

// Limits are the resource ceilings for a single execution.
// Memory and disk are given in megabytes.
type Limits struct {
	CPUTimeSec int
	MemoryMB   int
	DiskMB     int
	MaxProcs   int
}

func DefaultLimits() Limits {
	return Limits{
		CPUTimeSec: 5,
		MemoryMB:   200,
		DiskMB:     20,
		MaxProcs:   20,
	}
}

// Validate reports the first limit that is out of range.
func (l Limits) Validate() error {
	if l.CPUTimeSec <= 0 {
		return fmt.Errorf("cpu time limit must be positive, got %d", l.CPUTimeSec)
	}
	if l.MemoryMB < 0 {
		return fmt.Errorf("memory limit must not be negative, got %d", l.MemoryMB)
	}
	if l.DiskMB < 0 {
		return fmt.Errorf("disk limit must not be negative, got %d", l.DiskMB)
	}
	if l.MaxProcs <= 0 {
		return fmt.Errorf("process limit must be positive, got %d", l.MaxProcs)
	}
	return nil
}

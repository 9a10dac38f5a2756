// FILE: tunable/timing.go
package tunable

import "time"

// Timing constants for manifest auto-reload.
const (
	SpinWaitInterval    = 5 * time.Millisecond   // CPU-friendly busy-wait quantum
	MinPollInterval     = 10 * time.Millisecond  // Hard floor for file stat polling
	ShutdownTimeout     = 100 * time.Millisecond // Graceful watcher termination window
	DefaultDebounce     = 200 * time.Millisecond // File change coalescence period
	DefaultPollInterval = 500 * time.Millisecond // Standard file monitoring frequency
)

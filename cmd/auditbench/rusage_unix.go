//go:build linux || darwin

package main

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// getMaxRSS returns the peak resident set size in bytes, from
// getrusage(RUSAGE_SELF). Best-effort: returns 0 on error.
func getMaxRSS() uint64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	maxRSS := uint64(ru.Maxrss)
	// On macOS, Maxrss is in bytes. On Linux, it's in kilobytes.
	if runtime.GOOS == "linux" {
		maxRSS *= 1024
	}
	return maxRSS
}

//go:build !linux && !darwin

package main

// getMaxRSS is unavailable on this platform.
func getMaxRSS() uint64 {
	return 0
}

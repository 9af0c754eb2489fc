//go:build !tinygo

package core

import "sync/atomic"

var timeSource atomic.Value // TimeSource

// getSystemTicks returns the current system ticks (regular Go implementation)
func getSystemTicks() uint32 {
	src, _ := timeSource.Load().(TimeSource)
	if src == nil {
		return 0
	}
	return src()
}

// setTimeSource swaps the time source; tests replace it per simulated board
func setTimeSource(src TimeSource) {
	timeSource.Store(src)
}

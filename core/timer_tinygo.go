//go:build tinygo

package core

var timeSource TimeSource

// getSystemTicks reads the hardware counter directly so ISRs see the
// time of the edge, not the time of the last main-loop update
func getSystemTicks() uint32 {
	return timeSource()
}

// setTimeSource is called once from target init, before interrupts are enabled
func setTimeSource(src TimeSource) {
	timeSource = src
}

//go:build !tinygo

package core

import (
	"runtime"
	"sync/atomic"
)

// State is a placeholder for interrupt state on regular Go
type State uintptr

// disableInterrupts is a no-op on regular Go (for testing)
func disableInterrupts() State {
	return 0
}

// restoreInterrupts is a no-op on regular Go (for testing)
func restoreInterrupts(state State) {
	// No-op
}

// IdleHook is invoked from every busy-wait iteration on host builds.
// A simulated board uses it to advance virtual time and fire its
// interrupt sources in lock step with the polling loop.
type IdleHook func()

var idleHook atomic.Value // IdleHook

// SetIdleHook installs (or clears, with nil) the busy-wait hook
func SetIdleHook(h IdleHook) {
	idleHook.Store(h)
}

// cpuIdle is called once per busy-wait iteration
func cpuIdle() {
	if h, _ := idleHook.Load().(IdleHook); h != nil {
		h()
		return
	}
	runtime.Gosched()
}

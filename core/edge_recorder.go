// Trigger edge recording
// Interrupt-context capture of trigger input transitions for the analyzer
// and the ETS engine
package core

import "sync/atomic"

// CaptureMode selects how the edge interrupt treats each edge.
type CaptureMode uint32

const (
	ModeIdle      CaptureMode = 0 // interrupt ignores edges
	ModeRecording CaptureMode = 1 // append (delta, mask) to the ring
	ModeArmed     CaptureMode = 2 // count phase-lock edges
	ModeETS       CaptureMode = 3 // count every rising edge, ungated
)

const (
	// MaxEdgeEvents is the ring capacity; edges past it are dropped.
	MaxEdgeEvents = 50

	// DebounceMicros is the minimum spacing between accepted edges.
	// Two ISR calls per period put the measurable ceiling at 100KHz.
	DebounceMicros = 5
)

// EdgeEvent is one recorded trigger transition.
type EdgeEvent struct {
	DeltaMicros uint32   // time since the previous accepted edge
	Events      EdgeMask // which edge(s) fired in this dispatch
}

// EdgeRecorder is the state shared between the trigger interrupt and the
// foreground capture session. Every field is accessed atomically.
//
// Writers:
//   - pin, mode, minGap: foreground only, while the interrupt is disabled
//   - count, lastCall: interrupt while enabled; foreground resets them
//     only while the interrupt is disabled
//   - events[i]: interrupt only, before count is advanced past i
type EdgeRecorder struct {
	pin      uint32
	mode     uint32
	minGap   uint32
	count    uint32
	lastCall uint32
	events   [MaxEdgeEvents]struct {
		delta uint32
		mask  uint32
	}
}

// activeRecorder is where HandleTriggerEdge delivers edges
var activeRecorder atomic.Pointer[EdgeRecorder]

// HandleTriggerEdge is the trigger GPIO interrupt entry point.
// No allocation, no blocking, no floating point.
func HandleTriggerEdge(pin GPIOPin, events EdgeMask) {
	if r := activeRecorder.Load(); r != nil {
		r.handleEdge(pin, events)
	}
}

// Arm resets the session state and selects the behaviour for the next
// interrupt-enabled window. The interrupt must be disabled.
func (r *EdgeRecorder) Arm(pin GPIOPin, mode CaptureMode, minGap uint32) {
	atomic.StoreUint32(&r.pin, uint32(pin))
	atomic.StoreUint32(&r.minGap, minGap)
	atomic.StoreUint32(&r.count, 0)
	atomic.StoreUint32(&r.lastCall, 0)
	atomic.StoreUint32(&r.mode, uint32(mode))
}

// Disarm returns the recorder to idle. The interrupt must be disabled.
func (r *EdgeRecorder) Disarm() {
	atomic.StoreUint32(&r.mode, uint32(ModeIdle))
}

// Count returns the number of accepted edges (ring entries in ModeRecording)
func (r *EdgeRecorder) Count() uint32 {
	return atomic.LoadUint32(&r.count)
}

// Mode returns the current capture mode
func (r *EdgeRecorder) Mode() CaptureMode {
	return CaptureMode(atomic.LoadUint32(&r.mode))
}

// Events copies the recorded ring entries into dst and returns them.
// Only entries published by count are read.
func (r *EdgeRecorder) Events(dst []EdgeEvent) []EdgeEvent {
	n := r.Count()
	if n > MaxEdgeEvents {
		n = MaxEdgeEvents
	}
	dst = dst[:0]
	for i := uint32(0); i < n; i++ {
		dst = append(dst, EdgeEvent{
			DeltaMicros: atomic.LoadUint32(&r.events[i].delta),
			Events:      EdgeMask(atomic.LoadUint32(&r.events[i].mask)),
		})
	}
	return dst
}

func (r *EdgeRecorder) handleEdge(pin GPIOPin, events EdgeMask) {
	if uint32(pin) != atomic.LoadUint32(&r.pin) {
		return
	}

	switch CaptureMode(atomic.LoadUint32(&r.mode)) {
	case ModeRecording:
		now := GetTime()
		last := atomic.LoadUint32(&r.lastCall)
		if last == 0 || now-last < DebounceMicros {
			atomic.StoreUint32(&r.lastCall, now)
			return
		}
		ix := atomic.LoadUint32(&r.count)
		if ix < MaxEdgeEvents {
			atomic.StoreUint32(&r.events[ix].delta, now-last)
			atomic.StoreUint32(&r.events[ix].mask, uint32(events))
			atomic.StoreUint32(&r.count, ix+1)
		}
		atomic.StoreUint32(&r.lastCall, now)

	case ModeArmed:
		now := GetTime()
		last := atomic.LoadUint32(&r.lastCall)
		if events == EdgeFall || last == 0 || now-last < DebounceMicros {
			atomic.StoreUint32(&r.lastCall, now)
			return
		}
		minGap := atomic.LoadUint32(&r.minGap)
		if minGap == 0 || now-last > minGap {
			atomic.AddUint32(&r.count, 1)
		}
		atomic.StoreUint32(&r.lastCall, now)

	case ModeETS:
		if events != EdgeFall {
			atomic.AddUint32(&r.count, 1)
		}
	}
}

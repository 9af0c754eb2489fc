// Trigger analysis
// Estimates the trigger signal period from recorded edges, then phase
// locks to it so the capture starts at a consistent point of the waveform
package core

// PeriodStatus classifies a period estimate
type PeriodStatus uint16

const (
	PeriodGood           PeriodStatus = 0 // clean single-edge signal
	PeriodLesserQuality  PeriodStatus = 1 // some dispatches reported both edges
	PeriodLesserQuality2 PeriodStatus = 2 // irregular deltas, mean of the long ones
	PeriodAboveMax       PeriodStatus = 3 // edges too close to tell apart
	PeriodTimeout        PeriodStatus = 4 // not enough edges in time
)

const (
	TriggerTimeoutMillis = 500
	AnalysisEvents       = 20
	PhaseLockEdges       = 2
)

// TriggerResult is the outcome of WaitForTrigger, sent in the capture trailer.
// PeriodMicros is 0 unless Status is Good, LesserQuality or LesserQuality2.
type TriggerResult struct {
	Status       PeriodStatus
	PeriodMicros uint16
}

// Analysis carries the edge statistics behind a TriggerResult
type Analysis struct {
	Min, Max  uint32 // extreme deltas, µs
	Mean      uint32 // mean delta used for the period, µs
	Quality   uint32 // Max / Min
	BothEdges int    // dispatches that reported rise and fall together
	Result    TriggerResult
}

// AnalyzeEdges derives the trigger period from recorded edges.
//
// A signal whose deltas are all within a factor of two (Quality == 1) is
// regular: the period is twice the mean delta, as every edge is recorded.
// If two thirds or more of the dispatches saw both edges at once, the
// signal is too fast to measure and AboveMax is reported. Otherwise the
// deltas split into short and long halves (narrow pulses); the long ones
// above the mean are averaged instead.
func AnalyzeEdges(edges []EdgeEvent) Analysis {
	var a Analysis
	n := len(edges)
	if n == 0 {
		a.Result.Status = PeriodTimeout
		return a
	}

	a.Min = ^uint32(0)
	var sum uint64
	for _, e := range edges {
		if e.DeltaMicros < a.Min {
			a.Min = e.DeltaMicros
		}
		if e.DeltaMicros > a.Max {
			a.Max = e.DeltaMicros
		}
		sum += uint64(e.DeltaMicros)
	}
	mean := uint32(sum / uint64(n))
	if a.Min > 0 {
		a.Quality = a.Max / a.Min
	} else {
		a.Quality = a.Max
	}

	if a.Quality == 1 {
		a.Mean = mean
		for _, e := range edges {
			if e.Events == EdgeBoth {
				a.BothEdges++
			}
		}
		if a.BothEdges < n*2/3 {
			a.Result.PeriodMicros = saturate16(uint64(mean) * 2)
			if a.BothEdges == 0 {
				a.Result.Status = PeriodGood
			} else {
				a.Result.Status = PeriodLesserQuality
			}
		} else {
			a.Result.Status = PeriodAboveMax
		}
		return a
	}

	var longSum uint64
	var longN uint64
	for _, e := range edges {
		if e.DeltaMicros > mean {
			longSum += uint64(e.DeltaMicros)
			longN++
		}
	}
	// Quality != 1 implies Max > mean, so longN > 0
	a.Mean = uint32(longSum / longN)
	a.Result.PeriodMicros = saturate16(uint64(a.Mean) * 2)
	a.Result.Status = PeriodLesserQuality2
	return a
}

// WaitForTrigger estimates the period on pin and waits for the next
// phase-lock point. It returns within twice TriggerTimeoutMillis.
func (o *Oscilloscope) WaitForTrigger(pin GPIOPin) (TriggerResult, error) {
	if !o.acquire() {
		return TriggerResult{}, ErrScopeBusy
	}
	defer o.release()
	res, _ := o.waitForTrigger(pin)
	return res, nil
}

// waitForTrigger runs both phases; the session must already be held
func (o *Oscilloscope) waitForTrigger(pin GPIOPin) (TriggerResult, Analysis) {
	RecordTiming(EvtTriggerArmed, uint8(pin), GetTime(), 0, 0)

	// Phase 1: record edges
	if o.collect(pin, ModeRecording, 0, AnalysisEvents, TriggerTimeoutMillis) {
		RecordTiming(EvtTriggerTimeout, uint8(pin), GetTime(), 1, o.recorder.Count())
		return TriggerResult{Status: PeriodTimeout}, Analysis{Result: TriggerResult{Status: PeriodTimeout}}
	}
	a := AnalyzeEdges(o.recorder.Events(o.edges[:0]))

	// Phase 2: lock onto a rising edge. Irregular signals only count
	// edges that trail a gap of at least a quarter period.
	var minGap uint32
	if a.Quality != 1 {
		minGap = uint32(a.Result.PeriodMicros / 4)
	}
	if o.collect(pin, ModeArmed, minGap, PhaseLockEdges, TriggerTimeoutMillis) {
		RecordTiming(EvtTriggerTimeout, uint8(pin), GetTime(), 2, o.recorder.Count())
		return TriggerResult{Status: PeriodTimeout}, a
	}

	RecordTiming(EvtTriggerLocked, uint8(pin), GetTime(), uint32(a.Result.Status), uint32(a.Result.PeriodMicros))
	return a.Result, a
}

func saturate16(v uint64) uint16 {
	if v > 0xFFFF {
		return 0xFFFF
	}
	return uint16(v)
}

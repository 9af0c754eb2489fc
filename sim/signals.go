//go:build !tinygo

package sim

import (
	"math"
	"sort"

	"picoscope/core"
)

// EdgeSource describes the transitions seen on a trigger input
type EdgeSource interface {
	// Next returns the first edge strictly after the given time (ns)
	Next(after uint64) (at uint64, mask core.EdgeMask, ok bool)
}

// SquareWave is a periodic 50% duty trigger. The first rising edge is at
// PhaseNs; edges alternate rise, fall every half period.
type SquareWave struct {
	PeriodNs uint64
	PhaseNs  uint64
}

func (s SquareWave) Next(after uint64) (uint64, core.EdgeMask, bool) {
	half := s.PeriodNs / 2
	if half == 0 {
		return 0, 0, false
	}
	var k uint64
	if after >= s.PhaseNs {
		k = (after-s.PhaseNs)/half + 1
	}
	mask := core.EdgeRise
	if k%2 == 1 {
		mask = core.EdgeFall
	}
	return s.PhaseNs + k*half, mask, true
}

// Edge is one scripted trigger transition
type Edge struct {
	AtNs uint64
	Mask core.EdgeMask
}

// EdgeList replays a fixed sequence of edges
type EdgeList []Edge

func (l EdgeList) Next(after uint64) (uint64, core.EdgeMask, bool) {
	i := sort.Search(len(l), func(i int) bool { return l[i].AtNs > after })
	if i == len(l) {
		return 0, 0, false
	}
	return l[i].AtNs, l[i].Mask, true
}

// PulseTrain is a periodic trigger with a narrow high time, which
// makes alternate edge deltas short and long
type PulseTrain struct {
	PeriodNs uint64
	WidthNs  uint64
	PhaseNs  uint64
}

func (p PulseTrain) Next(after uint64) (uint64, core.EdgeMask, bool) {
	if p.PeriodNs == 0 || p.WidthNs == 0 || p.WidthNs >= p.PeriodNs {
		return 0, 0, false
	}
	var cycle uint64
	if after >= p.PhaseNs {
		cycle = (after - p.PhaseNs) / p.PeriodNs
	}
	for {
		start := p.PhaseNs + cycle*p.PeriodNs
		if start > after {
			return start, core.EdgeRise, true
		}
		if start+p.WidthNs > after {
			return start + p.WidthNs, core.EdgeFall, true
		}
		cycle++
	}
}

// Waveform returns the raw ADC reading of an input at time ns
type Waveform func(ns uint64) uint16

// Constant is a flat input
func Constant(v uint16) Waveform {
	return func(uint64) uint16 { return v }
}

// Sine is a full-scale sine of the given period around mid-scale
func Sine(periodNs uint64, amplitude uint16) Waveform {
	return func(ns uint64) uint16 {
		phase := float64(ns%periodNs) / float64(periodNs)
		v := float64(core.ADCMax)/2 + float64(amplitude)*math.Sin(2*math.Pi*phase)
		if v < 0 {
			v = 0
		}
		if v > core.ADCMax {
			v = core.ADCMax
		}
		return uint16(v)
	}
}

// Ramp rises by one count every stepNs, wrapping at full scale
func Ramp(stepNs uint64) Waveform {
	return func(ns uint64) uint16 {
		return uint16((ns / stepNs) % (core.ADCMax + 1))
	}
}

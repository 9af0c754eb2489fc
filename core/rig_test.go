package core_test

import (
	"bytes"
	"testing"

	"picoscope/core"
	"picoscope/sim"
)

const (
	ch1Trigger = core.GPIOPin(29)
	ch2Trigger = core.GPIOPin(14)
	ch1ADC     = core.ADCChannelID(1)
	ch2ADC     = core.ADCChannelID(2)

	msNs = uint64(1000000)
)

var testScope = core.ScopeConfig{
	Ch1ADC:     ch1ADC,
	Ch2ADC:     ch2ADC,
	Ch1Trigger: ch1Trigger,
	Ch2Trigger: ch2Trigger,
}

// rig is a scope wired to a fresh simulated board
type rig struct {
	board *sim.Board
	out   *bytes.Buffer
	scope *core.Oscilloscope
}

func newRig(t *testing.T) *rig {
	t.Helper()
	b := sim.NewBoard()
	b.Install()
	t.Cleanup(b.Uninstall)

	out := &bytes.Buffer{}
	scope := core.NewOscilloscope(out)
	if err := scope.Setup(testScope); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	return &rig{board: b, out: out, scope: scope}
}

// checkIdle verifies a session left no interrupt source running
func (r *rig) checkIdle(t *testing.T) {
	t.Helper()
	for _, pin := range []core.GPIOPin{ch1Trigger, ch2Trigger} {
		if r.board.TriggerEnabled(pin) {
			t.Errorf("Trigger on GPIO%d still enabled", pin)
		}
	}
	if r.board.AlarmActive() {
		t.Error("Alarm still running")
	}
}

func within(got, want, percent uint32) bool {
	tol := want * percent / 100
	return got+tol >= want && got <= want+tol
}

// samplesOf unpacks a 12-bit sample payload
func samplesOf(payload []byte) []uint16 {
	s := make([]uint16, 0, len(payload)/2)
	for i := 0; i+1 < len(payload); i += 2 {
		s = append(s, uint16(payload[i])<<8|uint16(payload[i+1]))
	}
	return s
}

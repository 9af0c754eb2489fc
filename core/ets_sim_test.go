package core_test

import (
	"bytes"
	"testing"

	"picoscope/core"
	"picoscope/sim"
)

func TestCaptureETSRejectsSpikes(t *testing.T) {
	r := newRig(t)
	r.board.SetEdgeSource(ch1Trigger, sim.SquareWave{PeriodNs: 100000})
	r.board.QueueReadings(ch1ADC, 100, 101, 500, 102, 103, 104)

	if err := r.scope.CaptureETS(1, 4, 100, 0); err != nil {
		t.Fatalf("CaptureETS failed: %v", err)
	}

	got := r.out.Bytes()
	if len(got) != 12 {
		t.Fatalf("Expected 12 bytes, got %d", len(got))
	}
	samples := samplesOf(got[:8])
	want := []uint16{100, 101, 103, 104}
	for i := range want {
		if samples[i] != want[i] {
			t.Errorf("Sample %d = %d, want %d", i, samples[i], want[i])
		}
	}
	// Too short for a period estimate
	if !bytes.Equal(got[8:], []byte{0, core.ETSStatusOK, 0, 0}) {
		t.Errorf("Trailer = % x", got[8:])
	}

	// The delay only grows with accepted samples
	spins := r.board.Spins()
	wantSpins := []uint16{0, 1, 2, 2, 2, 3}
	if len(spins) != len(wantSpins) {
		t.Fatalf("Spins = %v, want %v", spins, wantSpins)
	}
	for i := range wantSpins {
		if spins[i] != wantSpins[i] {
			t.Errorf("Spins = %v, want %v", spins, wantSpins)
			break
		}
	}
	if r.board.Selected() != ch1ADC {
		t.Errorf("ADC input %d selected, want %d", r.board.Selected(), ch1ADC)
	}
	r.checkIdle(t)
}

func TestCaptureETSTimeout(t *testing.T) {
	r := newRig(t)
	start := r.board.Now()

	if err := r.scope.CaptureETS(2, 20, 100, 0); err != nil {
		t.Fatalf("CaptureETS failed: %v", err)
	}

	elapsed := r.board.Now() - start
	if elapsed < core.ETSTimeoutMillis*msNs {
		t.Errorf("Gave up after %dns", elapsed)
	}
	got := r.out.Bytes()
	if len(got) != 44 {
		t.Fatalf("Expected 44 bytes, got %d", len(got))
	}
	if !bytes.Equal(got[:40], make([]byte, 40)) {
		t.Errorf("Timed out payload is not zeroed: % x", got[:40])
	}
	if !bytes.Equal(got[40:], []byte{0, core.ETSStatusTimeout, 0, 0}) {
		t.Errorf("Trailer = % x", got[40:])
	}
	r.checkIdle(t)
}

func TestCaptureETSTimeoutAfterSomeSamples(t *testing.T) {
	r := newRig(t)
	start := r.board.Now()
	var edges sim.EdgeList
	for i := uint64(1); i <= 10; i++ {
		edges = append(edges, sim.Edge{AtNs: start + i*msNs, Mask: core.EdgeRise})
	}
	r.board.SetEdgeSource(ch2Trigger, edges)
	r.board.SetWaveform(ch2ADC, sim.Constant(2000))
	core.ClearTimingRing()

	if err := r.scope.CaptureETS(2, 30, 100, 0); err != nil {
		t.Fatalf("CaptureETS failed: %v", err)
	}

	got := r.out.Bytes()
	if len(got) != 64 {
		t.Fatalf("Expected 64 bytes, got %d", len(got))
	}
	// Accepted samples are discarded on timeout
	if !bytes.Equal(got[:60], make([]byte, 60)) {
		t.Errorf("Partial payload is not zeroed: % x", got[:60])
	}
	if !bytes.Equal(got[60:], []byte{0, core.ETSStatusTimeout, 0, 0}) {
		t.Errorf("Trailer = % x", got[60:])
	}

	var accepted uint32
	for _, e := range core.TimingEvents() {
		if e.EventType == core.EvtETSTimeout {
			accepted = e.Value1
		}
	}
	if accepted != 10 {
		t.Errorf("Timed out with %d samples accepted, want 10", accepted)
	}
	r.checkIdle(t)
}

func TestCaptureETSReconstructsSine(t *testing.T) {
	r := newRig(t)
	// 100KHz signal sampled every 100ns of equivalent time
	r.board.SetEdgeSource(ch1Trigger, sim.SquareWave{PeriodNs: 10000})
	r.board.SetWaveform(ch1ADC, sim.Sine(10000, 100))

	if err := r.scope.CaptureETS(1, 250, 100, 0); err != nil {
		t.Fatalf("CaptureETS failed: %v", err)
	}

	got := r.out.Bytes()
	if len(got) != 504 {
		t.Fatalf("Expected 504 bytes, got %d", len(got))
	}
	trailer := got[500:]
	if trailer[1] != core.ETSStatusOK {
		t.Fatalf("Trailer status = %d", trailer[1])
	}
	period := uint32(trailer[2])<<8 | uint32(trailer[3])
	if period < 9700 || period > 10300 {
		t.Errorf("Period = %dns, want about 10000ns", period)
	}
}

func TestCaptureETSZeroSamples(t *testing.T) {
	r := newRig(t)

	if err := r.scope.CaptureETS(1, 0, 100, 0); err != nil {
		t.Fatalf("CaptureETS failed: %v", err)
	}
	if !bytes.Equal(r.out.Bytes(), []byte{0, core.ETSStatusOK, 0, 0}) {
		t.Errorf("Output = % x", r.out.Bytes())
	}
}

package core_test

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"

	"picoscope/core"
	"picoscope/sim"
)

func TestCaptureBasicSingleChannel(t *testing.T) {
	r := newRig(t)
	r.board.SetEdgeSource(ch1Trigger, sim.SquareWave{PeriodNs: 1000000})
	r.board.SetWaveform(ch1ADC, sim.Constant(0xABC))

	if err := r.scope.CaptureBasic(1, 100, 10, 0); err != nil {
		t.Fatalf("CaptureBasic failed: %v", err)
	}

	got := r.out.Bytes()
	if len(got) != 100*2+4 {
		t.Fatalf("Expected 204 bytes, got %d", len(got))
	}
	if got[0] != 0x0A || got[1] != 0xBC {
		t.Errorf("First sample packed as % x", got[:2])
	}
	trailer := got[200:]
	if !bytes.Equal(trailer, []byte{0x00, 0x00, 0x03, 0xE8}) {
		t.Errorf("Trailer = % x, want 00 00 03 e8", trailer)
	}

	caps := r.board.Captures()
	if len(caps) != 1 {
		t.Fatalf("Expected 1 block capture, got %d", len(caps))
	}
	c := caps[0]
	if c.First != ch1ADC || c.Dual || c.Count != 100 || c.ClockDiv != 480<<8 {
		t.Errorf("Unexpected capture request %+v", c)
	}
	r.checkIdle(t)
}

func TestCaptureBasicChannelTwo(t *testing.T) {
	r := newRig(t)
	r.board.SetEdgeSource(ch2Trigger, sim.SquareWave{PeriodNs: 100000})
	r.board.SetWaveform(ch2ADC, sim.Constant(7))

	if err := r.scope.CaptureBasic(2, 10, 2, 0); err != nil {
		t.Fatalf("CaptureBasic failed: %v", err)
	}
	got := r.out.Bytes()
	if len(got) != 24 {
		t.Fatalf("Expected 24 bytes, got %d", len(got))
	}
	if !bytes.Equal(got[20:], []byte{0, 0, 0, 100}) {
		t.Errorf("Trailer = % x", got[20:])
	}
	if c := r.board.Captures()[0]; c.First != ch2ADC || c.ClockDiv != 96<<8 {
		t.Errorf("Unexpected capture request %+v", c)
	}
}

func TestCaptureBasicDualChannel(t *testing.T) {
	r := newRig(t)
	// Only channel 2 sees a trigger; triggerChannel selects it
	r.board.SetEdgeSource(ch2Trigger, sim.SquareWave{PeriodNs: 1000000})
	r.board.SetWaveform(ch1ADC, sim.Constant(100))
	r.board.SetWaveform(ch2ADC, sim.Constant(200))

	if err := r.scope.CaptureBasic(core.ChannelBoth, 50, 10, 2); err != nil {
		t.Fatalf("CaptureBasic failed: %v", err)
	}

	got := r.out.Bytes()
	if len(got) != 204 {
		t.Fatalf("Expected 204 bytes, got %d", len(got))
	}
	samples := samplesOf(got[:200])
	for i, s := range samples {
		want := uint16(100)
		if i%2 == 1 {
			want = 200
		}
		if s != want {
			t.Fatalf("Sample %d = %d, want %d", i, s, want)
		}
	}
	if trailer := got[200:]; trailer[1] != byte(core.PeriodGood) {
		t.Errorf("Trailer = % x", trailer)
	}

	c := r.board.Captures()[0]
	if !c.Dual || c.First != ch1ADC || c.Second != ch2ADC || c.Count != 100 || c.ClockDiv != 240<<8 {
		t.Errorf("Unexpected capture request %+v", c)
	}
}

func TestCaptureBasicTriggerTimeout(t *testing.T) {
	r := newRig(t)
	r.board.SetWaveform(ch1ADC, sim.Constant(5))

	if err := r.scope.CaptureBasic(1, 100, 10, 0); err != nil {
		t.Fatalf("CaptureBasic failed: %v", err)
	}

	// The block is still captured and sent; the trailer flags it
	got := r.out.Bytes()
	if len(got) != 204 {
		t.Fatalf("Expected 204 bytes, got %d", len(got))
	}
	if !bytes.Equal(got[200:], []byte{0, 4, 0, 0}) {
		t.Errorf("Trailer = % x, want 00 04 00 00", got[200:])
	}
	r.checkIdle(t)
}

func TestCaptureBasicBlockError(t *testing.T) {
	r := newRig(t)
	r.board.SetEdgeSource(ch1Trigger, sim.SquareWave{PeriodNs: 1000000})
	r.board.CaptureErr = core.ErrCaptureTimeout

	if err := r.scope.CaptureBasic(1, 10, 10, 0); err != nil {
		t.Fatalf("CaptureBasic failed: %v", err)
	}
	if got := r.out.Len(); got != 24 {
		t.Errorf("Expected payload and trailer despite the error, got %d bytes", got)
	}
}

func TestCaptureRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name    string
		capture func(*core.Oscilloscope) error
		want    error
	}{
		{"channel 0", func(o *core.Oscilloscope) error { return o.CaptureBasic(0, 10, 10, 0) }, core.ErrInvalidChannel},
		{"channel 4", func(o *core.Oscilloscope) error { return o.CaptureBasic(4, 10, 10, 0) }, core.ErrInvalidChannel},
		{"single too long", func(o *core.Oscilloscope) error { return o.CaptureBasic(1, core.MaxSamples+1, 10, 0) }, core.ErrTooManySamples},
		{"dual too long", func(o *core.Oscilloscope) error { return o.CaptureBasic(3, core.MaxSamples/2+1, 10, 1) }, core.ErrTooManySamples},
		{"ets dual", func(o *core.Oscilloscope) error { return o.CaptureETS(3, 10, 100, 0) }, core.ErrInvalidChannel},
		{"ets too long", func(o *core.Oscilloscope) error { return o.CaptureETS(1, core.MaxSamples+1, 100, 0) }, core.ErrTooManySamples},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			if err := tt.capture(r.scope); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
			if r.out.Len() != 0 {
				t.Errorf("Rejected request wrote %d bytes", r.out.Len())
			}
		})
	}
}

func TestCaptureMaxSamples(t *testing.T) {
	r := newRig(t)
	r.board.SetEdgeSource(ch1Trigger, sim.SquareWave{PeriodNs: 100000})

	if err := r.scope.CaptureBasic(3, core.MaxSamples/2, 2, 1); err != nil {
		t.Fatalf("CaptureBasic failed: %v", err)
	}
	if got := r.out.Len(); got != core.MaxSamples*2+4 {
		t.Errorf("Expected %d bytes, got %d", core.MaxSamples*2+4, got)
	}
}

// gateWriter blocks the first write until released
type gateWriter struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gateWriter) Write(p []byte) (int, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return len(p), nil
}

func TestCaptureSessionsExclusive(t *testing.T) {
	b := sim.NewBoard()
	b.Install()
	t.Cleanup(b.Uninstall)
	b.SetEdgeSource(ch1Trigger, sim.SquareWave{PeriodNs: 100000})

	gate := &gateWriter{entered: make(chan struct{}), release: make(chan struct{})}
	scope := core.NewOscilloscope(gate)
	if err := scope.Setup(testScope); err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	var g errgroup.Group
	g.Go(func() error {
		return scope.CaptureBasic(1, 10, 10, 0)
	})

	<-gate.entered
	if err := scope.CaptureBasic(2, 10, 10, 0); !errors.Is(err, core.ErrScopeBusy) {
		t.Errorf("Expected ErrScopeBusy from CaptureBasic, got %v", err)
	}
	if err := scope.CaptureETS(1, 10, 100, 0); !errors.Is(err, core.ErrScopeBusy) {
		t.Errorf("Expected ErrScopeBusy from CaptureETS, got %v", err)
	}
	if _, err := scope.WaitForTrigger(ch1Trigger); !errors.Is(err, core.ErrScopeBusy) {
		t.Errorf("Expected ErrScopeBusy from WaitForTrigger, got %v", err)
	}
	close(gate.release)

	if err := g.Wait(); err != nil {
		t.Fatalf("First session failed: %v", err)
	}

	// The hardware is free again
	if _, err := scope.WaitForTrigger(ch1Trigger); err != nil {
		t.Errorf("WaitForTrigger after release: %v", err)
	}
}

func TestCaptureBasicConversionFloor(t *testing.T) {
	tests := []struct {
		name    string
		channel uint8
		us      uint16
		div     uint32
	}{
		{"free running", 1, 0, 0},
		{"single 1us", 1, 1, 48 << 8},
		{"dual 2us", core.ChannelBoth, 2, 48 << 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			r.board.SetEdgeSource(ch1Trigger, sim.SquareWave{PeriodNs: 100000})
			var at []uint64
			stamp := func(ns uint64) uint16 {
				at = append(at, ns)
				return 1000
			}
			r.board.SetWaveform(ch1ADC, stamp)
			r.board.SetWaveform(ch2ADC, stamp)

			if err := r.scope.CaptureBasic(tt.channel, 50, tt.us, 1); err != nil {
				t.Fatalf("CaptureBasic failed: %v", err)
			}
			c := r.board.Captures()[0]
			if c.ClockDiv != tt.div {
				t.Errorf("ClockDiv = %#x, want %#x", c.ClockDiv, tt.div)
			}
			if len(at) < c.Count {
				t.Fatalf("Only %d conversions for %d transfers", len(at), c.Count)
			}
			// The ADC cannot convert faster than once per 96 clocks
			at = at[len(at)-c.Count:]
			for i := 1; i < len(at); i++ {
				if d := at[i] - at[i-1]; d != 2000 {
					t.Fatalf("Conversion %d spaced %dns, want 2000", i, d)
				}
			}
			got := r.out.Bytes()
			if want := 2*c.Count + 4; len(got) != want {
				t.Errorf("Expected %d bytes, got %d", want, len(got))
			}
		})
	}
}

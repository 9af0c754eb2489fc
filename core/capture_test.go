package core

import "testing"

func TestADCClockDivider(t *testing.T) {
	tests := []struct {
		us         uint16
		roundRobin bool
		want       uint32
	}{
		{0, false, 0},
		{2, false, 96 << 8},
		{10, false, 480 << 8},
		{10, true, 240 << 8},
		{4, true, 96 << 8},
		{1365, false, 65520 << 8},
		{2000, false, 0xFFFF << 8}, // clamped to the 16-bit integer field
	}
	for _, tt := range tests {
		if got := ADCClockDivider(tt.us, tt.roundRobin); got != tt.want {
			t.Errorf("ADCClockDivider(%d, %v) = %#x, want %#x", tt.us, tt.roundRobin, got, tt.want)
		}
	}
}

func TestBlockCaptureDuration(t *testing.T) {
	tests := []struct {
		req    BlockCapture
		clocks uint64 // whole ADC clocks per conversion
		micros uint32
	}{
		{BlockCapture{ClockDiv: 0, Count: 10000}, 96, 20000},
		{BlockCapture{ClockDiv: 48 << 8, Count: 10000, Dual: true}, 96, 20000},
		{BlockCapture{ClockDiv: 94 << 8, Count: 100}, 96, 200},
		{BlockCapture{ClockDiv: 96 << 8, Count: 48}, 97, 97},
		{BlockCapture{ClockDiv: 480 << 8, Count: 100}, 481, 1002},
	}
	for _, tt := range tests {
		if got := tt.req.ConversionClocks(); got != tt.clocks<<8 {
			t.Errorf("ConversionClocks(div %#x) = %#x, want %#x", tt.req.ClockDiv, got, tt.clocks<<8)
		}
		if got := tt.req.DurationMicros(); got != tt.micros {
			t.Errorf("DurationMicros(div %#x, n %d) = %d, want %d", tt.req.ClockDiv, tt.req.Count, got, tt.micros)
		}
	}
}

func TestBlockCaptureInputs(t *testing.T) {
	single := BlockCapture{First: 1}
	dual := BlockCapture{First: 1, Second: 2, Dual: true}
	if single.RoundRobin() || single.Inputs() != 1 {
		t.Errorf("Single capture reports %d inputs", single.Inputs())
	}
	if !dual.RoundRobin() || dual.Inputs() != 2 {
		t.Errorf("Dual capture reports %d inputs", dual.Inputs())
	}
}

func TestETSPeriod(t *testing.T) {
	tests := []struct {
		name    string
		samples []uint16
		nanos   uint16
		want    uint16
	}{
		{"empty", nil, 50, 0},
		{"triangle", []uint16{0, 100, 200, 100, 0, 100, 200, 100, 0}, 50, 200},
		{"too short for a second crossing", []uint16{5, 5, 5}, 50, 0},
		{"single crossing", []uint16{100, 101, 103, 104}, 50, 0},
		{"saturates", []uint16{0, 100, 200, 100, 0, 100, 200, 100, 0}, 60000, 0xFFFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ETSPeriod(tt.samples, tt.nanos); got != tt.want {
				t.Errorf("ETSPeriod = %d, want %d", got, tt.want)
			}
		})
	}
}

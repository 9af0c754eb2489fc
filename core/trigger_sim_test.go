package core_test

import (
	"errors"
	"testing"

	"picoscope/core"
	"picoscope/sim"
)

func TestWaitForTriggerSquareWave(t *testing.T) {
	tests := []struct {
		name       string
		periodNs   uint64
		wantMicros uint32
	}{
		{"100KHz", 10000, 10},
		{"10KHz", 100000, 100},
		{"1KHz", 1000000, 1000},
		{"50Hz", 20000000, 20000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRig(t)
			r.board.SetEdgeSource(ch1Trigger, sim.SquareWave{PeriodNs: tt.periodNs})

			res, err := r.scope.WaitForTrigger(ch1Trigger)
			if err != nil {
				t.Fatalf("WaitForTrigger failed: %v", err)
			}
			if res.Status != core.PeriodGood {
				t.Errorf("Status = %d, want PeriodGood", res.Status)
			}
			if !within(uint32(res.PeriodMicros), tt.wantMicros, 5) {
				t.Errorf("Period = %dus, want %dus", res.PeriodMicros, tt.wantMicros)
			}
			r.checkIdle(t)
		})
	}
}

func TestWaitForTriggerTimeout(t *testing.T) {
	r := newRig(t)
	start := r.board.Now()

	res, err := r.scope.WaitForTrigger(ch1Trigger)
	if err != nil {
		t.Fatalf("WaitForTrigger failed: %v", err)
	}
	if res.Status != core.PeriodTimeout || res.PeriodMicros != 0 {
		t.Errorf("Expected timeout result, got %+v", res)
	}
	elapsed := r.board.Now() - start
	if elapsed != core.TriggerTimeoutMillis*msNs {
		t.Errorf("Timeout took %dns, want %dms", elapsed, core.TriggerTimeoutMillis)
	}
	r.checkIdle(t)
}

func TestWaitForTriggerPhaseLockTimeout(t *testing.T) {
	r := newRig(t)

	// Exactly enough edges for the analysis, none left to lock onto
	var edges sim.EdgeList
	at := r.board.Now()
	for i := 0; i <= core.AnalysisEvents; i++ {
		at += 100000
		mask := core.EdgeRise
		if i%2 == 1 {
			mask = core.EdgeFall
		}
		edges = append(edges, sim.Edge{AtNs: at, Mask: mask})
	}
	r.board.SetEdgeSource(ch1Trigger, edges)

	res, _ := r.scope.WaitForTrigger(ch1Trigger)
	if res.Status != core.PeriodTimeout || res.PeriodMicros != 0 {
		t.Errorf("Expected timeout result, got %+v", res)
	}
	r.checkIdle(t)
}

func TestWaitForTriggerNarrowPulses(t *testing.T) {
	r := newRig(t)
	r.board.SetEdgeSource(ch1Trigger, sim.PulseTrain{PeriodNs: 1000000, WidthNs: 100000})

	res, err := r.scope.WaitForTrigger(ch1Trigger)
	if err != nil {
		t.Fatalf("WaitForTrigger failed: %v", err)
	}
	// Twice the mean of the long deltas
	if res.Status != core.PeriodLesserQuality2 || res.PeriodMicros != 1800 {
		t.Errorf("Expected {2 1800}, got %+v", res)
	}
}

func TestWaitForTriggerRepeatable(t *testing.T) {
	r := newRig(t)
	r.board.SetEdgeSource(ch2Trigger, sim.SquareWave{PeriodNs: 200000, PhaseNs: 30000})

	first, _ := r.scope.WaitForTrigger(ch2Trigger)
	second, _ := r.scope.WaitForTrigger(ch2Trigger)
	if first != second {
		t.Errorf("Results differ between sessions: %+v then %+v", first, second)
	}
	if first.Status != core.PeriodGood || first.PeriodMicros != 200 {
		t.Errorf("Unexpected result %+v", first)
	}
}

func TestWaitForTriggerIgnoresOtherChannel(t *testing.T) {
	r := newRig(t)
	r.board.SetEdgeSource(ch2Trigger, sim.SquareWave{PeriodNs: 100000})

	res, _ := r.scope.WaitForTrigger(ch1Trigger)
	if res.Status != core.PeriodTimeout {
		t.Errorf("Channel 2 edges reached the channel 1 session: %+v", res)
	}
}

func TestWaitForTriggerAlarmUnavailable(t *testing.T) {
	r := newRig(t)
	r.board.AlarmErr = errors.New("no alarm")
	r.board.SetEdgeSource(ch1Trigger, sim.SquareWave{PeriodNs: 100000})
	start := r.board.Now()

	res, err := r.scope.WaitForTrigger(ch1Trigger)
	if err != nil {
		t.Fatalf("WaitForTrigger failed: %v", err)
	}
	if res.Status != core.PeriodTimeout {
		t.Errorf("Expected timeout without an alarm, got %+v", res)
	}
	if r.board.Now() != start {
		t.Errorf("Session waited %dns without a deadline", r.board.Now()-start)
	}
	r.checkIdle(t)
}

package core

import "testing"

func TestTimerDispatchOrder(t *testing.T) {
	resetTimers()
	defer resetTimers()

	var fired []uint32
	handler := func(tm *Timer) uint8 {
		fired = append(fired, tm.WakeTime)
		return SF_DONE
	}
	t1 := &Timer{WakeTime: 300, Handler: handler}
	t2 := &Timer{WakeTime: 100, Handler: handler}
	t3 := &Timer{WakeTime: 200, Handler: handler}
	ScheduleTimer(t1)
	ScheduleTimer(t2)
	ScheduleTimer(t3)

	currentTime = 250
	TimerDispatch()
	if len(fired) != 2 || fired[0] != 100 || fired[1] != 200 {
		t.Fatalf("At 250 fired %v, want [100 200]", fired)
	}

	currentTime = 300
	TimerDispatch()
	if len(fired) != 3 || fired[2] != 300 {
		t.Errorf("At 300 fired %v", fired)
	}
}

func TestTimerDispatchWraps(t *testing.T) {
	resetTimers()
	defer resetTimers()

	var fired []uint32
	handler := func(tm *Timer) uint8 {
		fired = append(fired, tm.WakeTime)
		return SF_DONE
	}
	ScheduleTimer(&Timer{WakeTime: 0x10, Handler: handler})
	ScheduleTimer(&Timer{WakeTime: 0xFFFFFFF0, Handler: handler})

	currentTime = 0xFFFFFF00
	TimerDispatch()
	if len(fired) != 0 {
		t.Fatalf("Timers fired early: %v", fired)
	}

	currentTime = 0x20
	TimerDispatch()
	if len(fired) != 2 || fired[0] != 0xFFFFFFF0 || fired[1] != 0x10 {
		t.Errorf("Across wrap fired %v, want [0xfffffff0 0x10]", fired)
	}
}

func TestTimerReschedule(t *testing.T) {
	resetTimers()
	defer resetTimers()

	count := 0
	tm := &Timer{WakeTime: 1000}
	tm.Handler = func(t *Timer) uint8 {
		count++
		if count == 3 {
			return SF_DONE
		}
		t.WakeTime += 100
		return SF_RESCHEDULE
	}
	ScheduleTimer(tm)

	// A late dispatch catches up on every missed period
	currentTime = 1500
	TimerDispatch()
	if count != 3 {
		t.Errorf("Expected 3 runs, got %d", count)
	}
	if timerList != nil {
		t.Error("Finished timer still queued")
	}
}

func TestCancelTimer(t *testing.T) {
	resetTimers()
	defer resetTimers()

	ran := false
	a := &Timer{WakeTime: 10, Handler: func(*Timer) uint8 { ran = true; return SF_DONE }}
	b := &Timer{WakeTime: 20, Handler: func(*Timer) uint8 { return SF_DONE }}
	ScheduleTimer(a)
	ScheduleTimer(b)

	CancelTimer(a)
	CancelTimer(a) // not queued, no effect
	currentTime = 100
	TimerDispatch()
	if ran {
		t.Error("Canceled timer ran")
	}
}

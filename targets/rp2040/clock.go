//go:build rp2040

package main

import (
	"device/rp"
	"errors"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"picoscope/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x24 // Raw timer high word
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word

	// ALARM0 belongs to the TinyGo runtime (time.Sleep), ALARM3 is ours
	alarmNum = 3
	alarmBit = 1 << alarmNum
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

var errAlarmPeriod = errors.New("alarm period must be non-zero")

// InitClock registers the hardware microsecond counter as the core time
// source. Must run before any trigger interrupt is enabled.
func InitClock() {
	core.SetTimeSource(GetHardwareTime)
	core.TimerInit()
}

// GetHardwareTime reads the RP2040 hardware timer
// Returns the low 32 bits of the microsecond counter
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// GetHardwareUptime reads the full 64-bit RP2040 hardware timer
func GetHardwareUptime() uint64 {
	// Must read high first, then low, then high again to detect rollover
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()

		// If high didn't change, we got a consistent reading
		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
	}
}

// RPAlarmDriver implements core.AlarmDriver on TIMER ALARM3.
// The handler runs in interrupt context once per period until Cancel.
type RPAlarmDriver struct {
	period uint32 // µs
	next   uint32
	fn     func()
}

var alarm = &RPAlarmDriver{}

// NewRPAlarmDriver installs the ALARM3 interrupt and returns the driver
func NewRPAlarmDriver() *RPAlarmDriver {
	intr := interrupt.New(rp.IRQ_TIMER_IRQ_3, alarmIRQ)
	intr.SetPriority(0x40)
	intr.Enable()
	return alarm
}

// StartRepeating arms ALARM3 to fire every periodMS
func (a *RPAlarmDriver) StartRepeating(periodMS uint32, fn func()) error {
	if periodMS == 0 {
		return errAlarmPeriod
	}
	state := interrupt.Disable()
	a.period = core.TimerFromMS(periodMS)
	a.fn = fn
	a.next = GetHardwareTime() + a.period
	rp.TIMER.INTR.Set(alarmBit)
	rp.TIMER.INTE.SetBits(alarmBit)
	rp.TIMER.ALARM3.Set(a.next)
	interrupt.Restore(state)
	return nil
}

// Cancel disarms ALARM3 and drops any pending expiry
func (a *RPAlarmDriver) Cancel() {
	state := interrupt.Disable()
	rp.TIMER.INTE.ClearBits(alarmBit)
	rp.TIMER.ARMED.Set(alarmBit)
	rp.TIMER.INTR.Set(alarmBit)
	a.fn = nil
	interrupt.Restore(state)
}

func alarmIRQ(interrupt.Interrupt) {
	rp.TIMER.INTR.Set(alarmBit)
	fn := alarm.fn
	if fn == nil {
		return
	}
	alarm.next += alarm.period
	rp.TIMER.ALARM3.Set(alarm.next)
	fn()
}

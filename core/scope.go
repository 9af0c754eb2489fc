// Oscilloscope session orchestration
// Owns the acquisition buffers and serializes capture sessions
package core

import (
	"errors"
	"io"
	"sync/atomic"
)

const (
	// MaxSamples is the sample buffer capacity (all inputs combined)
	MaxSamples = 10000

	// MicrosNeededFor1Sample is the ADC DMA limit for one channel
	MicrosNeededFor1Sample = 2

	// MicrosNeededFor2Sample is the ADC DMA limit for two channels in round-robin
	MicrosNeededFor2Sample = 4
)

var (
	ErrScopeBusy      = errors.New("capture session already running")
	ErrInvalidChannel = errors.New("invalid oscilloscope channel")
	ErrTooManySamples = errors.New("sample count exceeds buffer")
	ErrCaptureTimeout = errors.New("ADC block capture did not complete")
)

// ScopeConfig maps the two oscilloscope channels to hardware.
type ScopeConfig struct {
	Ch1ADC     ADCChannelID
	Ch2ADC     ADCChannelID
	Ch1Trigger GPIOPin
	Ch2Trigger GPIOPin
}

// Oscilloscope is the acquisition subsystem. One session runs at a time;
// its buffers are reused and overwritten, never shared between sessions.
type Oscilloscope struct {
	cfg  ScopeConfig
	out  io.Writer
	busy uint32 // session owner flag, CAS guarded

	recorder EdgeRecorder
	timeout  Deadline

	edges   [MaxEdgeEvents]EdgeEvent
	samples [MaxSamples]uint16
	tx      [MaxSamples * 2]byte
}

// NewOscilloscope creates the subsystem writing capture results to out.
func NewOscilloscope(out io.Writer) *Oscilloscope {
	return &Oscilloscope{out: out}
}

// Setup configures both trigger inputs with edge interrupts left disabled,
// and routes the trigger interrupt to this instance.
func (o *Oscilloscope) Setup(cfg ScopeConfig) error {
	o.cfg = cfg
	o.recorder.Disarm()
	activeRecorder.Store(&o.recorder)

	trig := MustTrigger()
	for _, pin := range []GPIOPin{cfg.Ch1Trigger, cfg.Ch2Trigger} {
		if err := MustGPIO().ConfigureInput(pin); err != nil {
			return err
		}
		if err := trig.ConfigureTrigger(pin, HandleTriggerEdge); err != nil {
			return err
		}
		trig.SetTriggerEnabled(pin, false)
	}
	return nil
}

// Config returns the active channel map
func (o *Oscilloscope) Config() ScopeConfig {
	return o.cfg
}

// acquire claims the hardware (ADC, DMA channel, alarm slot) for one session
func (o *Oscilloscope) acquire() bool {
	return atomic.CompareAndSwapUint32(&o.busy, 0, 1)
}

// release tears the session down: recorder idle, alarm canceled
func (o *Oscilloscope) release() {
	o.recorder.Disarm()
	o.timeout.Release()
	atomic.StoreUint32(&o.busy, 0)
}

// triggerFor returns the trigger input honoured by channel 1 or 2
func (o *Oscilloscope) triggerFor(channel uint8) GPIOPin {
	if channel == 2 {
		return o.cfg.Ch2Trigger
	}
	return o.cfg.Ch1Trigger
}

// adcFor returns the ADC input of channel 1 or 2
func (o *Oscilloscope) adcFor(channel uint8) ADCChannelID {
	if channel == 2 {
		return o.cfg.Ch2ADC
	}
	return o.cfg.Ch1ADC
}

// collect arms the recorder in mode, bounds the wait with a deadline of
// ms, and spins until want edges are accepted or the deadline fires.
// Returns true on timeout. The interrupt is disabled and the alarm
// canceled on return.
func (o *Oscilloscope) collect(pin GPIOPin, mode CaptureMode, minGap, want, ms uint32) bool {
	trig := MustTrigger()

	o.recorder.Arm(pin, mode, minGap)
	if err := o.timeout.Arm(ms); err != nil {
		DebugPrintln("[OSC] alarm start failed: " + err.Error())
	}
	trig.SetTriggerEnabled(pin, true)
	for !o.timeout.Expired() && o.recorder.Count() < want {
		cpuIdle()
	}
	trig.SetTriggerEnabled(pin, false)
	o.timeout.Release()
	o.recorder.Disarm()

	return o.timeout.Expired()
}

func (o *Oscilloscope) write(p []byte) error {
	_, err := o.out.Write(p)
	return err
}

// Status indicators
// Channel and generator LEDs, the command activity LED and the RGB pixel
package core

// LED identifies one of the indicator LEDs
type LED uint8

const (
	LEDCh1 LED = iota
	LEDCh2
	LEDFuncGen
	LEDActivity
	numLEDs
)

// ParseLED maps the command name of an indicator to its LED
func ParseLED(name string) (LED, bool) {
	switch name {
	case "ch1":
		return LEDCh1, true
	case "ch2":
		return LEDCh2, true
	case "fgen":
		return LEDFuncGen, true
	}
	return 0, false
}

// LEDConfig selects the indicator pins
type LEDConfig struct {
	Ch1, Ch2, FuncGen, Activity GPIOPin
}

const maxBreathes = 4

// breathe is a queued pixel ramp 0->255->0 on one colour component
type breathe struct {
	component uint8 // 0 red, 1 green, 2 blue
	stepUS    uint32
}

// StatusLEDs owns the indicators. Breathing runs from the software timer
// scheduler so the main loop keeps servicing commands.
type StatusLEDs struct {
	pins [numLEDs]GPIOPin

	timer   Timer
	queue   [maxBreathes]breathe
	qHead   int
	qLen    int
	level   int // 0..510, ramp position of the active breathe
	running bool
}

// NewStatusLEDs returns the indicator set; call Setup before use
func NewStatusLEDs() *StatusLEDs {
	l := &StatusLEDs{}
	l.timer.Handler = l.step
	return l
}

// Setup configures every LED pin as an output, driven low
func (l *StatusLEDs) Setup(cfg LEDConfig) error {
	l.pins = [numLEDs]GPIOPin{cfg.Ch1, cfg.Ch2, cfg.FuncGen, cfg.Activity}
	gpio := MustGPIO()
	for _, pin := range l.pins {
		if err := gpio.ConfigureOutput(pin); err != nil {
			return err
		}
		if err := gpio.SetPin(pin, false); err != nil {
			return err
		}
	}
	return nil
}

// Set drives one LED
func (l *StatusLEDs) Set(led LED, on bool) error {
	if led >= numLEDs {
		return ErrUnknownOutput
	}
	return MustGPIO().SetPin(l.pins[led], on)
}

// SetAll drives the channel and generator LEDs together
func (l *StatusLEDs) SetAll(on bool) error {
	for _, led := range []LED{LEDCh1, LEDCh2, LEDFuncGen} {
		if err := l.Set(led, on); err != nil {
			return err
		}
	}
	return nil
}

// Breathe queues a ramp of the named colour (red, green or blue), one
// brightness step per stepMillis. Unknown colours and a full queue are
// ignored. Returns whether the breathe was queued.
func (l *StatusLEDs) Breathe(color string, stepMillis uint32) bool {
	var c uint8
	switch color {
	case "red":
		c = 0
	case "green":
		c = 1
	case "blue":
		c = 2
	default:
		return false
	}
	if l.qLen == maxBreathes {
		return false
	}
	l.queue[(l.qHead+l.qLen)%maxBreathes] = breathe{component: c, stepUS: TimerFromMS(stepMillis)}
	l.qLen++
	if !l.running {
		l.running = true
		l.level = 0
		l.timer.WakeTime = GetTime()
		ScheduleTimer(&l.timer)
	}
	return true
}

// Breathing reports whether a ramp is active or queued
func (l *StatusLEDs) Breathing() bool {
	return l.running
}

// step advances the active ramp by one brightness level
func (l *StatusLEDs) step(t *Timer) uint8 {
	b := l.queue[l.qHead]
	v := l.level
	if v > 255 {
		v = 510 - v
	}
	var rgb [3]uint8
	rgb[b.component] = uint8(v)
	if pixelDriver != nil {
		if err := pixelDriver.SetColor(rgb[0], rgb[1], rgb[2]); err != nil {
			DebugPrintln("[LED] pixel: " + err.Error())
		}
	}

	l.level++
	if l.level > 510 {
		l.qHead = (l.qHead + 1) % maxBreathes
		l.qLen--
		l.level = 0
		if l.qLen == 0 {
			l.running = false
			return SF_DONE
		}
		b = l.queue[l.qHead]
	}
	t.WakeTime += b.stepUS
	return SF_RESCHEDULE
}

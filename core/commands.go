package core

import (
	"io"

	"picoscope/protocol"
)

// Device bundles the subsystems driven by the host command table
type Device struct {
	Scope   *Oscilloscope
	FuncGen *FuncGen
	LEDs    *StatusLEDs
	Reply   io.Writer // same stream the capture engines write to
}

// breatheStepMillis is the ramp speed of "led breathe"
const breatheStepMillis = 2

// InitDeviceCommands registers the osc, funcgen and led command tools
// IMPORTANT: argument formats define the required token count
func InitDeviceCommands(r *CommandRegistry, d *Device) {
	// Oscilloscope
	r.Register("osc", "get_samples", "ch n us trig", d.handleGetSamples)
	r.Register("osc", "get_samples_ets", "ch n ns trig", d.handleGetSamplesETS)
	r.Register("osc", "get_micros_needed_for_1sample", "", d.replyConst(MicrosNeededFor1Sample))
	r.Register("osc", "get_micros_needed_for_2sample", "", d.replyConst(MicrosNeededFor2Sample))
	r.Register("osc", "get_max_samples", "", d.replyConst(MaxSamples))

	// Function generator
	r.Register("funcgen", "pwm_set", "freq duty", d.handlePWMSet)
	r.Register("funcgen", "AD9833_set", "freq shape", d.handleAD9833Set)
	r.Register("funcgen", "stop", "which", d.handleStop)

	// Indicators
	r.Register("led", "ch1", "state", d.handleLED(LEDCh1))
	r.Register("led", "ch2", "state", d.handleLED(LEDCh2))
	r.Register("led", "fgen", "state", d.handleLED(LEDFuncGen))
	r.Register("led", "breathe", "color", d.handleBreathe)
}

// HandleLine runs one tokenized command with the activity LED lit.
// Errors are logged only; the data stream carries no error replies.
func (d *Device) HandleLine(r *CommandRegistry, tokens []string) error {
	if d.LEDs != nil {
		_ = d.LEDs.Set(LEDActivity, true)
		defer d.LEDs.Set(LEDActivity, false)
	}
	err := r.Dispatch(tokens)
	if err != nil {
		DebugPrintln("[CMD] " + joinTokens(tokens) + ": " + err.Error())
	}
	return err
}

// handleGetSamples: osc get_samples ch n us trig
func (d *Device) handleGetSamples(args []string) error {
	return d.Scope.CaptureBasic(
		uint8(parseUint(args[0])),
		uint16(parseUint(args[1])),
		uint16(parseUint(args[2])),
		uint8(parseUint(args[3])),
	)
}

// handleGetSamplesETS: osc get_samples_ets ch n ns trig
func (d *Device) handleGetSamplesETS(args []string) error {
	return d.Scope.CaptureETS(
		uint8(parseUint(args[0])),
		uint16(parseUint(args[1])),
		uint16(parseUint(args[2])),
		uint8(parseUint(args[3])),
	)
}

// replyConst answers a constant query with a little-endian 16-bit value
func (d *Device) replyConst(v uint16) CommandHandler {
	return func(args []string) error {
		var buf [protocol.ReplySize]byte
		n := protocol.PutReply(buf[:], v)
		_, err := d.Reply.Write(buf[:n])
		return err
	}
}

// handlePWMSet: funcgen pwm_set freq duty
func (d *Device) handlePWMSet(args []string) error {
	return d.FuncGen.PWMSet(parseUint(args[0]), uint8(parseUint(args[1])))
}

// handleAD9833Set: funcgen AD9833_set freq Sine|Triangle|Square
func (d *Device) handleAD9833Set(args []string) error {
	shape, err := ParseShape(args[1])
	if err != nil {
		return err
	}
	return d.FuncGen.AD9833Set(parseUint(args[0]), shape)
}

// handleStop: funcgen stop pwm|AD9833
func (d *Device) handleStop(args []string) error {
	return d.FuncGen.Stop(args[0])
}

// handleLED: led ch1|ch2|fgen on|off. Anything but "on" is off.
func (d *Device) handleLED(led LED) CommandHandler {
	return func(args []string) error {
		return d.LEDs.Set(led, args[0] == "on")
	}
}

// handleBreathe: led breathe red|green|blue
func (d *Device) handleBreathe(args []string) error {
	d.LEDs.Breathe(args[0], breatheStepMillis)
	return nil
}

func joinTokens(tokens []string) string {
	s := ""
	for i, t := range tokens {
		if i > 0 {
			s += " "
		}
		s += t
	}
	return s
}

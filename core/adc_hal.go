package core

// ADCChannelID identifies a logical ADC input (0-3 map to GPIO26-29 on RP2040).
type ADCChannelID uint8

// ADCValue is a raw 12-bit conversion result widened to 16 bits.
type ADCValue uint16

// ADCMax is the largest raw conversion result
const ADCMax = 4095

// BlockCapture describes one DMA-paced block acquisition.
type BlockCapture struct {
	// First is the converted input. With Dual set, the hardware
	// round-robin alternates between First and Second, starting at First.
	First  ADCChannelID
	Second ADCChannelID
	Dual   bool

	// ClockDiv is the ADC clock divider in 16.8 fixed point, as written to
	// the DIV register. Conversions start every 1+ClockDiv/256 ADC clocks,
	// but never faster than ADCConversionClocks.
	ClockDiv uint32

	// Count is the number of 16-bit transfers (samples across all inputs).
	Count int
}

// ADCConversionClocks is the fixed length of one conversion. Dividers
// below it run conversions back to back.
const ADCConversionClocks = 96

// ConversionClocks returns the ADC clocks between conversions, 16.8 fixed point
func (b BlockCapture) ConversionClocks() uint64 {
	clocks := uint64(b.ClockDiv) + 1<<adcFracShift
	if floor := uint64(ADCConversionClocks) << adcFracShift; clocks < floor {
		return floor
	}
	return clocks
}

// DurationMicros returns how long the block takes on the 48MHz ADC clock
func (b BlockCapture) DurationMicros() uint32 {
	return uint32(uint64(b.Count) * b.ConversionClocks() / (adcClockMHz << adcFracShift))
}

// RoundRobin reports whether the capture alternates between inputs.
func (b BlockCapture) RoundRobin() bool {
	return b.Dual
}

// Inputs returns the number of ADC inputs converted
func (b BlockCapture) Inputs() int {
	if b.Dual {
		return 2
	}
	return 1
}

// ADCDriver is the abstract ADC interface that core code uses.
type ADCDriver interface {
	// ConfigureChannel resets the ADC, prepares the channel's pin for
	// analog input and selects it for one-shot conversions.
	ConfigureChannel(ch ADCChannelID) error

	// ReadRaw performs a one-shot conversion on the selected channel.
	ReadRaw(ch ADCChannelID) (ADCValue, error)

	// CaptureBlock programs the ADC FIFO and a DMA channel, runs the
	// conversion, and returns once req.Count samples are in dst. The ADC is
	// stopped and its FIFO drained before return.
	CaptureBlock(req BlockCapture, dst []uint16) error

	// SpinDelay executes the calibrated fixed-cost delay loop that
	// stretches the ETS sampling point. One iteration is nominally 100ns.
	SpinDelay(iterations uint16)
}

// Global singleton used by core code.
var adcDriver ADCDriver

// SetADCDriver is called by target-specific code to register its driver.
func SetADCDriver(d ADCDriver) {
	adcDriver = d
}

// MustADC returns the configured driver or panics if missing.
func MustADC() ADCDriver {
	if adcDriver == nil {
		panic("ADC driver not configured")
	}
	return adcDriver
}

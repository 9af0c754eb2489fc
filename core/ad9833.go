package core

import "tinygo.org/x/drivers"

// AD9833 DDS waveform generator over SPI (mode 2, 16-bit big-endian words)
const (
	ad9833MClock    = 25000000 // reference oscillator, Hz
	ad9833PhaseBits = 28

	ad9833RegReset  = 0x0100 // RESET
	ad9833RegLoad   = 0x2100 // B28 | RESET, two FREQ0 writes follow
	ad9833RegFreq0  = 0x4000 // FREQ0 register address bits
	ad9833RegPhase0 = 0xC000 // PHASE0 = 0
	ad9833FreqMask  = 0x3FFF

	ad9833WordDelayMicros  = 10
	ad9833ResetDelayMicros = 10000
)

// WaveShape is the AD9833 control word selecting the output waveform
type WaveShape uint16

const (
	ShapeSine     WaveShape = 0x0000
	ShapeTriangle WaveShape = 0x0002 // MODE
	ShapeSquare   WaveShape = 0x0028 // OPBITEN | DIV2
)

// ParseShape maps the command name of a waveform to its control word
func ParseShape(name string) (WaveShape, error) {
	switch name {
	case "Sine":
		return ShapeSine, nil
	case "Triangle":
		return ShapeTriangle, nil
	case "Square":
		return ShapeSquare, nil
	}
	return 0, ErrUnknownShape
}

// AD9833 talks to the generator through a shared bus and its own select pin
type AD9833 struct {
	bus drivers.SPI
	cs  GPIOPin
}

// NewAD9833 binds the device to bus with chip select cs (active low)
func NewAD9833(bus drivers.SPI, cs GPIOPin) *AD9833 {
	return &AD9833{bus: bus, cs: cs}
}

// Reset holds the DDS core in reset and waits for it to settle
func (a *AD9833) Reset() error {
	if err := a.write(ad9833RegReset); err != nil {
		return err
	}
	DelayMicros(ad9833ResetDelayMicros)
	return nil
}

// FrequencyWord returns the 28-bit FREQ0 value for freqHz
func FrequencyWord(freqHz uint32) uint32 {
	return uint32((uint64(freqHz) << ad9833PhaseBits) / ad9833MClock)
}

// Set programs FREQ0 and PHASE0 and releases the core with shape selected
func (a *AD9833) Set(freqHz uint32, shape WaveShape) error {
	w := FrequencyWord(freqHz)
	lsb := uint16(w&ad9833FreqMask) | ad9833RegFreq0
	msb := uint16((w&0xFFFC000)>>14) | ad9833RegFreq0
	return a.write(ad9833RegLoad, lsb, msb, ad9833RegPhase0, uint16(shape))
}

// write sends each word inside one chip-select window
func (a *AD9833) write(words ...uint16) error {
	gpio := MustGPIO()
	if err := gpio.SetPin(a.cs, false); err != nil {
		return err
	}
	var buf [2]byte
	var err error
	for _, w := range words {
		buf[0] = byte(w >> 8)
		buf[1] = byte(w)
		if err = a.bus.Tx(buf[:], nil); err != nil {
			break
		}
		DelayMicros(ad9833WordDelayMicros)
	}
	if e := gpio.SetPin(a.cs, true); err == nil {
		err = e
	}
	return err
}

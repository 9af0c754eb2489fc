// Signal generator
// Reference outputs for probing the oscilloscope inputs: a PWM square wave
// or an AD9833 DDS waveform, routed to the output jack by a select line
package core

import "errors"

const (
	// MaxPWMFrequency is the highest PWM frequency accepted, Hz
	MaxPWMFrequency = 62000000

	// ad9833 bus timing
	funcGenSPIRate = 2000000
	funcGenSPIMode = SPIMode(2)
)

var (
	ErrUnknownShape     = errors.New("unknown waveform shape")
	ErrUnknownOutput    = errors.New("unknown generator output")
	ErrInvalidFrequency = errors.New("frequency out of range")
)

// FuncGenConfig selects the generator pins
type FuncGenConfig struct {
	PWMPin    GPIOPin
	SelectPin GPIOPin // low routes PWM to the output, high routes the AD9833
	AD9833CS  GPIOPin
	SPI       SPIConfig // Mode and Rate are forced to the AD9833 timing
}

// FuncGen switches between the PWM and AD9833 sources
type FuncGen struct {
	cfg    FuncGenConfig
	dds    *AD9833
	pwmOn  bool
	period uint64 // last programmed PWM period, ns
}

// NewFuncGen returns an unconfigured generator; call Setup before use
func NewFuncGen() *FuncGen {
	return &FuncGen{}
}

// Setup claims the pins and the SPI bus and resets the AD9833
func (f *FuncGen) Setup(cfg FuncGenConfig) error {
	f.cfg = cfg
	gpio := MustGPIO()
	for _, pin := range []GPIOPin{cfg.SelectPin, cfg.AD9833CS, cfg.PWMPin} {
		if err := gpio.ConfigureOutput(pin); err != nil {
			return err
		}
	}
	if err := gpio.SetPin(cfg.AD9833CS, true); err != nil {
		return err
	}

	spiCfg := cfg.SPI
	spiCfg.Mode = funcGenSPIMode
	spiCfg.Rate = funcGenSPIRate
	bus, err := MustSPI().ConfigureBus(spiCfg)
	if err != nil {
		return err
	}
	f.dds = NewAD9833(bus, cfg.AD9833CS)
	return f.dds.Reset()
}

// PWMSet starts the PWM source at freqHz with dutyPercent high time and
// routes it to the output. Duty above 100 is clamped.
func (f *FuncGen) PWMSet(freqHz uint32, dutyPercent uint8) error {
	if freqHz == 0 || freqHz > MaxPWMFrequency {
		return ErrInvalidFrequency
	}
	if dutyPercent > 100 {
		dutyPercent = 100
	}

	pwm := MustPWM()
	pin := PWMPin(f.cfg.PWMPin)
	period := uint64(1000000000) / uint64(freqHz)
	if period == 0 {
		period = 1
	}
	if err := pwm.ConfigureHardwarePWM(pin, period); err != nil {
		return err
	}
	if err := pwm.SetDutyPercent(pin, dutyPercent); err != nil {
		return err
	}
	if err := pwm.EnablePWM(pin, true); err != nil {
		return err
	}
	f.pwmOn = true
	f.period = period

	return MustGPIO().SetPin(f.cfg.SelectPin, false)
}

// AD9833Set programs the DDS and routes it to the output
func (f *FuncGen) AD9833Set(freqHz uint32, shape WaveShape) error {
	if f.dds == nil {
		return errors.New("funcgen not set up")
	}
	if err := f.dds.Set(freqHz, shape); err != nil {
		return err
	}
	return MustGPIO().SetPin(f.cfg.SelectPin, true)
}

// Stop silences one source: "pwm" or "AD9833"
func (f *FuncGen) Stop(which string) error {
	switch which {
	case "pwm":
		if err := MustPWM().EnablePWM(PWMPin(f.cfg.PWMPin), false); err != nil {
			return err
		}
		f.pwmOn = false

		// A halted slice holds its last level; take the pin back as GPIO
		gpio := MustGPIO()
		if err := gpio.ConfigureOutput(f.cfg.PWMPin); err != nil {
			return err
		}
		return gpio.SetPin(f.cfg.PWMPin, false)
	case "AD9833":
		return f.AD9833Set(0, ShapeSine)
	}
	return ErrUnknownOutput
}

// PWMRunning reports whether the PWM source is enabled, with its period in ns
func (f *FuncGen) PWMRunning() (bool, uint64) {
	return f.pwmOn, f.period
}

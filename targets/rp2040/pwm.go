//go:build rp2040

package main

import (
	"errors"
	"machine"

	"picoscope/core"
)

// pwmPeripheral is an interface for PWM hardware peripherals
// This abstracts over TinyGo's unexported *pwmGroup type
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
	Enable(enable bool)
}

var errPWMNotConfigured = errors.New("PWM pin not configured")

// RP2040PWMDriver implements the PWMDriver interface for RP2040
// Leverages RP2040's 8 hardware PWM slices with 2 channels each
type RP2040PWMDriver struct {
	// Track pin to channel mapping
	// Key: pin number, Value: PWM channel
	channels map[uint32]uint8

	// Track PWM peripherals for each slice
	// Key: slice number (0-7), Value: PWM peripheral
	peripherals map[uint8]pwmPeripheral
}

// NewRP2040PWMDriver creates a new RP2040 PWM driver
func NewRP2040PWMDriver() *RP2040PWMDriver {
	return &RP2040PWMDriver{
		channels:    make(map[uint32]uint8),
		peripherals: make(map[uint8]pwmPeripheral),
	}
}

// sliceOf maps a GPIO to its PWM slice:
// Slice: (N >> 1) & 0x7, Channel: N & 1 (even=A, odd=B)
func sliceOf(pin core.PWMPin) uint8 {
	return uint8((uint32(pin) >> 1) & 0x7)
}

// ConfigureHardwarePWM routes pin to its slice and sets the period.
// Both channels of a slice share the period.
func (d *RP2040PWMDriver) ConfigureHardwarePWM(pin core.PWMPin, periodNs uint64) error {
	sliceNum := sliceOf(pin)

	// Get or create the PWM peripheral for this slice
	pwm, exists := d.peripherals[sliceNum]
	if !exists {
		pwm = d.getPWMPeripheral(sliceNum)
		d.peripherals[sliceNum] = pwm
	}

	err := pwm.Configure(machine.PWMConfig{
		Period: periodNs,
	})
	if err != nil {
		return err
	}

	channel, err := pwm.Channel(machine.Pin(pin))
	if err != nil {
		return err
	}
	d.channels[uint32(pin)] = channel
	return nil
}

// SetDutyPercent sets the high time as a percentage of the period
func (d *RP2040PWMDriver) SetDutyPercent(pin core.PWMPin, percent uint8) error {
	channel, exists := d.channels[uint32(pin)]
	if !exists {
		return errPWMNotConfigured
	}
	if percent > 100 {
		percent = 100
	}
	pwm := d.peripherals[sliceOf(pin)]

	// TinyGo PWM compares Set values against Top()
	top := pwm.Top()
	pwm.Set(channel, uint32(uint64(top)*uint64(percent)/100))
	return nil
}

// EnablePWM starts or stops the slice. The compare level only latches at
// wrap, so a stopped output may stay high until the pin is reclaimed.
func (d *RP2040PWMDriver) EnablePWM(pin core.PWMPin, enabled bool) error {
	channel, exists := d.channels[uint32(pin)]
	if !exists {
		if enabled {
			return errPWMNotConfigured
		}
		return nil
	}
	pwm := d.peripherals[sliceOf(pin)]
	if !enabled {
		pwm.Set(channel, 0)
	}
	pwm.Enable(enabled)
	return nil
}

// getPWMPeripheral returns the PWM peripheral for a given slice number
// RP2040 has 8 PWM slices: PWM0-PWM7
func (d *RP2040PWMDriver) getPWMPeripheral(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	case 7:
		return machine.PWM7
	default:
		// Should never happen with proper masking
		return machine.PWM0
	}
}

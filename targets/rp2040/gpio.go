//go:build rp2040

package main

import (
	"device/rp"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"picoscope/core"
)

// RPGPIODriver implements the GPIODriver interface for RP2040
type RPGPIODriver struct {
	// Track configured pins to prevent conflicts
	configuredPins map[core.GPIOPin]machine.Pin
}

// NewRPGPIODriver creates a new RP2040 GPIO driver
func NewRPGPIODriver() *RPGPIODriver {
	return &RPGPIODriver{
		configuredPins: make(map[core.GPIOPin]machine.Pin),
	}
}

// ConfigureOutput configures a pin as a digital output
func (d *RPGPIODriver) ConfigureOutput(pin core.GPIOPin) error {
	machinePin := machine.Pin(pin)
	machinePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	d.configuredPins[pin] = machinePin
	return nil
}

// ConfigureInput configures a pin as a floating input (the trigger
// comparators drive their pins push-pull)
func (d *RPGPIODriver) ConfigureInput(pin core.GPIOPin) error {
	machinePin := machine.Pin(pin)
	machinePin.Configure(machine.PinConfig{Mode: machine.PinInput})
	d.configuredPins[pin] = machinePin
	return nil
}

// SetPin sets the pin to high (true) or low (false)
func (d *RPGPIODriver) SetPin(pin core.GPIOPin, value bool) error {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		// Pin isn't configured - configure it first
		if err := d.ConfigureOutput(pin); err != nil {
			return err
		}
		machinePin = d.configuredPins[pin]
	}

	machinePin.Set(value)
	return nil
}

// ReadPin reads the current pin state
func (d *RPGPIODriver) ReadPin(pin core.GPIOPin) bool {
	machinePin, exists := d.configuredPins[pin]
	if !exists {
		return false
	}
	return machinePin.Get()
}

// IO_BANK0 interrupt registers. Each register covers eight pins with a
// four bit nibble per pin: level low, level high, edge low, edge high.
const (
	ioBank0Base    = 0x40014000
	ioBank0INTR0   = ioBank0Base + 0x0f0 // raw edge latches, write 1 to clear
	ioBank0INTE0   = ioBank0Base + 0x100 // proc0 enable
	ioBank0INTS0   = ioBank0Base + 0x120 // proc0 masked status
	numGPIO        = 30
	edgeEventsMask = uint32(core.EdgeBoth)
)

func bankReg(base uintptr, pin core.GPIOPin) (*volatile.Register32, uint32) {
	reg := (*volatile.Register32)(unsafe.Pointer(base + uintptr(pin/8)*4))
	return reg, 4 * (uint32(pin) % 8)
}

// RPTriggerDriver delivers IO_BANK0 edge interrupts to core handlers.
// It owns the bank interrupt, so machine.Pin.SetInterrupt must not be used.
type RPTriggerDriver struct {
	handlers [numGPIO]core.EdgeHandler
}

var triggers = &RPTriggerDriver{}

// NewRPTriggerDriver installs the IO_BANK0 interrupt and returns the driver
func NewRPTriggerDriver() *RPTriggerDriver {
	intr := interrupt.New(rp.IRQ_IO_IRQ_BANK0, gpioIRQ)
	intr.SetPriority(0x00)
	intr.Enable()
	return triggers
}

// ConfigureTrigger installs handler for both edges on pin, left disabled
func (d *RPTriggerDriver) ConfigureTrigger(pin core.GPIOPin, handler core.EdgeHandler) error {
	if pin >= numGPIO {
		return machine.ErrInvalidInputPin
	}
	d.SetTriggerEnabled(pin, false)
	state := interrupt.Disable()
	d.handlers[pin] = handler
	interrupt.Restore(state)
	return nil
}

// SetTriggerEnabled enables or disables both edge interrupts on pin.
// Edges latched while disabled are discarded on enable.
func (d *RPTriggerDriver) SetTriggerEnabled(pin core.GPIOPin, enabled bool) {
	if pin >= numGPIO {
		return
	}
	inte, shift := bankReg(ioBank0INTE0, pin)
	intr, _ := bankReg(ioBank0INTR0, pin)

	state := interrupt.Disable()
	if enabled {
		intr.Set(edgeEventsMask << shift)
		inte.SetBits(edgeEventsMask << shift)
	} else {
		inte.ClearBits(edgeEventsMask << shift)
	}
	interrupt.Restore(state)
}

// gpioIRQ acknowledges each pending pin and reports which edges latched
func gpioIRQ(interrupt.Interrupt) {
	for bank := uintptr(0); bank < 4; bank++ {
		ints := (*volatile.Register32)(unsafe.Pointer(ioBank0INTS0 + bank*4)).Get()
		if ints == 0 {
			continue
		}
		intr := (*volatile.Register32)(unsafe.Pointer(ioBank0INTR0 + bank*4))
		for i := uint32(0); i < 8; i++ {
			events := (ints >> (4 * i)) & edgeEventsMask
			if events == 0 {
				continue
			}
			intr.Set(events << (4 * i))
			pin := core.GPIOPin(uint32(bank)*8 + i)
			if h := triggers.handlers[pin]; h != nil {
				h(pin, core.EdgeMask(events))
			}
		}
	}
}

//go:build rp2040

package main

// WS2812 status pixel driven by a PIO state machine

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// Bit timing in PIO cycles of 100ns: a 1 is 800ns high / 300ns low,
// a 0 is 400ns high / 700ns low (1.1µs per bit)
//
// buildWS2812Program creates the pixel program using AssemblerV0
func buildWS2812Program() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Set(rp2pio.SetDestPins, 1).Delay(1).Encode(), // 0: set pins, 1 [1]
		asm.Out(rp2pio.OutDestX, 1).Encode(),             // 1: out x, 1
		asm.Jmp(6, rp2pio.JmpXZero).Encode(),             // 2: jmp !x, 6
		asm.Jmp(4, rp2pio.JmpAlways).Delay(3).Encode(),   // 3: jmp 4 [3]
		asm.Set(rp2pio.SetDestPins, 0).Delay(1).Encode(), // 4: set pins, 0 [1]
		asm.Jmp(0, rp2pio.JmpAlways).Encode(),            // 5: jmp 0
		asm.Set(rp2pio.SetDestPins, 0).Delay(6).Encode(), // 6: set pins, 0 [6]
		// .wrap
	}
}

const (
	ws2812Origin   = 0   // Load at offset 0 for correct jump addresses
	ws2812CycleNs  = 100 // PIO clock period
	ws2812BitCount = 24
)

// PixelOrder is the colour byte order on the wire
type PixelOrder uint8

const (
	OrderGRB PixelOrder = iota
	OrderRGB
)

// WS2812Driver implements core.PixelDriver for one pixel
type WS2812Driver struct {
	pio   *rp2pio.PIO
	sm    rp2pio.StateMachine
	pin   machine.Pin
	order PixelOrder
}

// NewWS2812Driver loads the program into PIO0 and claims state machine smNum
func NewWS2812Driver(smNum uint8, pin machine.Pin, order PixelOrder) (*WS2812Driver, error) {
	pioHW := rp2pio.PIO0
	sm := pioHW.StateMachine(smNum)
	sm.TryClaim()
	d := &WS2812Driver{pio: pioHW, sm: sm, pin: pin, order: order}

	program := buildWS2812Program()
	offset, err := pioHW.AddProgram(program, ws2812Origin)
	if err != nil {
		return nil, err
	}

	pin.Configure(machine.PinConfig{Mode: pioHW.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(pin, 1)

	// Shift left, autopull at 24 bits: one TxPut per pixel
	cfg.SetOutShift(false, true, ws2812BitCount)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)

	whole, frac, err := rp2pio.ClkDivFromPeriod(ws2812CycleNs, uint32(machine.CPUFrequency()))
	if err != nil {
		return nil, err
	}
	cfg.SetClkDivIntFrac(whole, frac)

	// Initialize state machine FIRST, then set pin direction
	sm.Init(offset, cfg)
	sm.SetPindirsConsecutive(pin, 1, true)
	sm.SetPinsConsecutive(pin, 1, false)
	sm.SetEnabled(true)

	return d, nil
}

// SetColor sends one 24-bit colour
func (d *WS2812Driver) SetColor(red, green, blue uint8) error {
	var word uint32
	if d.order == OrderRGB {
		word = uint32(red)<<16 | uint32(green)<<8 | uint32(blue)
	} else {
		word = uint32(green)<<16 | uint32(red)<<8 | uint32(blue)
	}

	// Wait for FIFO space and write, MSB aligned for the left shift
	for d.sm.IsTxFIFOFull() {
	}
	d.sm.TxPut(word << 8)
	return nil
}

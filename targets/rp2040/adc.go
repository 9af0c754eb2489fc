//go:build rp2040

package main

import (
	"device/arm"
	"errors"
	"machine"
	"runtime/volatile"
	"unsafe"

	"picoscope/core"
)

// RP2040 ADC register map
const (
	adcBase = 0x4004c000
	adcCS   = adcBase + 0x00
	adcRES  = adcBase + 0x04
	adcFCS  = adcBase + 0x08
	adcFIFO = adcBase + 0x0c
	adcDIV  = adcBase + 0x10

	adcCSEn        = 1 << 0
	adcCSStartOnce = 1 << 2
	adcCSStartMany = 1 << 3
	adcCSReady     = 1 << 8
	adcCSAinselPos = 12
	adcCSAinselMsk = 0x7 << adcCSAinselPos
	adcCSRRobinPos = 16
	adcCSRRobinMsk = 0x1f << adcCSRRobinPos

	adcFCSEn        = 1 << 0
	adcFCSDreqEn    = 1 << 3
	adcFCSLevelPos  = 16
	adcFCSLevelMsk  = 0xf << adcFCSLevelPos
	adcFCSThreshPos = 24
)

// DMA channel 2 is reserved for the ADC FIFO
const (
	dmaBase    = 0x50000000
	dmaChannel = 2
	dmaChBase  = dmaBase + dmaChannel*0x40
	dmaRead    = dmaChBase + 0x00
	dmaWrite   = dmaChBase + 0x04
	dmaCount   = dmaChBase + 0x08
	dmaCtrl    = dmaChBase + 0x0c
	dmaAbort   = dmaBase + 0x444

	dmaCtrlEn        = 1 << 0
	dmaCtrlSizeHalf  = 1 << 2
	dmaCtrlIncrWrite = 1 << 5
	dmaCtrlChainPos  = 11
	dmaCtrlTreqPos   = 15
	dmaCtrlBusy      = 1 << 24
	dreqADC          = 36

	// slack on top of the nominal block duration before giving up
	captureSlackMicros = 1000
	adcFirstPin        = 26
)

func reg(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

// RpAdcDriver implements core.ADCDriver with direct ADC and DMA register
// access; machine.ADC has no FIFO or round-robin support.
type RpAdcDriver struct {
	configured uint8 // bit per input whose pin is in analog mode
}

// NewRPAdcDriver constructs the driver and powers the ADC up
func NewRPAdcDriver() *RpAdcDriver {
	machine.InitADC()
	return &RpAdcDriver{}
}

var errBadInput = errors.New("unsupported ADC channel")

func (d *RpAdcDriver) preparePin(ch core.ADCChannelID) error {
	if ch > 3 {
		return errBadInput
	}
	if d.configured&(1<<ch) == 0 {
		machine.Pin(adcFirstPin + uint8(ch)).Configure(machine.PinConfig{Mode: machine.PinAnalog})
		d.configured |= 1 << ch
	}
	return nil
}

// ConfigureChannel resets the ADC to one-shot mode on ch
func (d *RpAdcDriver) ConfigureChannel(ch core.ADCChannelID) error {
	if err := d.preparePin(ch); err != nil {
		return err
	}
	d.stop()
	reg(adcCS).Set(adcCSEn | uint32(ch)<<adcCSAinselPos)
	for !reg(adcCS).HasBits(adcCSReady) {
	}
	return nil
}

// ReadRaw returns a raw 12-bit ADC value (0-4095) from a channel
func (d *RpAdcDriver) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	if ch > 3 {
		return 0, errBadInput
	}
	cs := reg(adcCS)
	cs.ReplaceBits(uint32(ch)<<adcCSAinselPos, adcCSAinselMsk, 0)
	cs.SetBits(adcCSStartOnce)
	for !cs.HasBits(adcCSReady) {
	}
	return core.ADCValue(reg(adcRES).Get() & core.ADCMax), nil
}

// CaptureBlock runs a free-running conversion paced by DIV and lets DMA
// move req.Count results from the FIFO into dst
func (d *RpAdcDriver) CaptureBlock(req core.BlockCapture, dst []uint16) error {
	if req.Count == 0 {
		return nil
	}
	if req.Count > len(dst) {
		req.Count = len(dst)
	}
	if err := d.preparePin(req.First); err != nil {
		return err
	}
	cs := uint32(adcCSEn) | uint32(req.First)<<adcCSAinselPos
	if req.Dual {
		if err := d.preparePin(req.Second); err != nil {
			return err
		}
		mask := uint32(1)<<req.First | uint32(1)<<req.Second
		cs |= mask << adcCSRRobinPos
	}

	d.stop()
	reg(adcCS).Set(cs)
	reg(adcDIV).Set(req.ClockDiv)
	reg(adcFCS).Set(adcFCSEn | adcFCSDreqEn | 1<<adcFCSThreshPos)

	reg(dmaRead).Set(adcFIFO)
	reg(dmaWrite).Set(uint32(uintptr(unsafe.Pointer(&dst[0]))))
	reg(dmaCount).Set(uint32(req.Count))
	reg(dmaCtrl).Set(dmaCtrlEn | dmaCtrlSizeHalf | dmaCtrlIncrWrite |
		dmaChannel<<dmaCtrlChainPos | dreqADC<<dmaCtrlTreqPos)

	reg(adcCS).SetBits(adcCSStartMany)

	budget := req.DurationMicros() + captureSlackMicros
	start := core.GetTime()
	var err error
	for reg(dmaCtrl).HasBits(dmaCtrlBusy) {
		// Slow blocks outlast the watchdog period
		machine.Watchdog.Update()
		if core.GetTime()-start > budget {
			reg(dmaAbort).Set(1 << dmaChannel)
			for reg(dmaAbort).HasBits(1 << dmaChannel) {
			}
			err = core.ErrCaptureTimeout
			break
		}
	}

	d.stop()
	reg(adcCS).Set(adcCSEn | uint32(req.First)<<adcCSAinselPos)
	return err
}

// stop halts free-running conversion and drains the FIFO
func (d *RpAdcDriver) stop() {
	cs := reg(adcCS)
	cs.ClearBits(adcCSStartMany | adcCSRRobinMsk)
	for cs.HasBits(adcCSEn) && !cs.HasBits(adcCSReady) {
	}
	for reg(adcFCS).Get()&adcFCSLevelMsk != 0 {
		_ = reg(adcFIFO).Get()
	}
	reg(adcFCS).Set(0)
	reg(adcDIV).Set(0)
}

// SpinDelay stretches the ETS sampling point, about 100ns per iteration
// at the 125MHz system clock
func (d *RpAdcDriver) SpinDelay(iterations uint16) {
	for i := uint16(0); i < iterations; i++ {
		arm.Asm("nop")
		arm.Asm("nop")
		arm.Asm("nop")
		arm.Asm("nop")
		arm.Asm("nop")
		arm.Asm("nop")
		arm.Asm("nop")
		arm.Asm("nop")
		arm.Asm("nop")
	}
}

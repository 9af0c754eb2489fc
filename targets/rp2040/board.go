//go:build rp2040

package main

import (
	_ "embed"

	"picoscope/config"
	"picoscope/core"
)

//go:embed board.json
var boardJSON []byte

// loadBoard parses the embedded board file, falling back to the reference
// wiring if it is unusable
func loadBoard() *config.BoardConfig {
	cfg, err := config.LoadConfig(boardJSON)
	if err != nil {
		return config.DefaultBoardConfig()
	}
	return cfg
}

// pin resolves a validated "gpioN" name
func pin(name string) core.GPIOPin {
	n, _ := config.ParsePin(name)
	return core.GPIOPin(n)
}

func adcInput(name string) core.ADCChannelID {
	n, _ := config.ParseADC(name)
	return core.ADCChannelID(n)
}

func scopeConfig(c *config.BoardConfig) core.ScopeConfig {
	return core.ScopeConfig{
		Ch1ADC:     adcInput(c.Scope.Ch1ADC),
		Ch2ADC:     adcInput(c.Scope.Ch2ADC),
		Ch1Trigger: pin(c.Scope.Ch1Trigger),
		Ch2Trigger: pin(c.Scope.Ch2Trigger),
	}
}

func funcGenConfig(c *config.BoardConfig) core.FuncGenConfig {
	return core.FuncGenConfig{
		PWMPin:    pin(c.FuncGen.PWMPin),
		SelectPin: pin(c.FuncGen.SelectPin),
		AD9833CS:  pin(c.FuncGen.AD9833CS),
		SPI: core.SPIConfig{
			BusID: core.SPIBusID(c.FuncGen.SPIBus),
			SCK:   pin(c.FuncGen.SPISCK),
			SDO:   pin(c.FuncGen.SPISDO),
		},
	}
}

func ledConfig(c *config.BoardConfig) core.LEDConfig {
	return core.LEDConfig{
		Ch1:      pin(c.LEDs.Ch1),
		Ch2:      pin(c.LEDs.Ch2),
		FuncGen:  pin(c.LEDs.FuncGen),
		Activity: pin(c.LEDs.Activity),
	}
}

func pixelOrder(c *config.BoardConfig) PixelOrder {
	if c.LEDs.PixelOrder == "RGB" {
		return OrderRGB
	}
	return OrderGRB
}

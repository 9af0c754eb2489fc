package config

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrBadPin = errors.New("invalid pin name")
	ErrBadADC = errors.New("invalid ADC input name")
)

// LoadConfig parses a JSON configuration string and returns a BoardConfig
func LoadConfig(jsonData []byte) (*BoardConfig, error) {
	var config BoardConfig

	err := json.Unmarshal(jsonData, &config)
	if err != nil {
		return nil, err
	}

	// Apply defaults
	applyDefaults(&config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// applyDefaults fills in missing configuration values from the reference board
func applyDefaults(config *BoardConfig) {
	def := DefaultBoardConfig()

	if config.Board == "" {
		config.Board = def.Board
	}

	// Oscilloscope channels
	setDefault(&config.Scope.Ch1ADC, def.Scope.Ch1ADC)
	setDefault(&config.Scope.Ch2ADC, def.Scope.Ch2ADC)
	setDefault(&config.Scope.Ch1Trigger, def.Scope.Ch1Trigger)
	setDefault(&config.Scope.Ch2Trigger, def.Scope.Ch2Trigger)

	// Signal generator
	setDefault(&config.FuncGen.PWMPin, def.FuncGen.PWMPin)
	setDefault(&config.FuncGen.SelectPin, def.FuncGen.SelectPin)
	setDefault(&config.FuncGen.AD9833CS, def.FuncGen.AD9833CS)
	setDefault(&config.FuncGen.SPISCK, def.FuncGen.SPISCK)
	setDefault(&config.FuncGen.SPISDO, def.FuncGen.SPISDO)

	// Indicators
	setDefault(&config.LEDs.Ch1, def.LEDs.Ch1)
	setDefault(&config.LEDs.Ch2, def.LEDs.Ch2)
	setDefault(&config.LEDs.FuncGen, def.LEDs.FuncGen)
	setDefault(&config.LEDs.Activity, def.LEDs.Activity)
	setDefault(&config.LEDs.Pixel, def.LEDs.Pixel)
	setDefault(&config.LEDs.PixelOrder, def.LEDs.PixelOrder)

	// Debug UART
	setDefault(&config.Debug.TXPin, def.Debug.TXPin)
	setDefault(&config.Debug.RXPin, def.Debug.RXPin)
	if config.Debug.BaudRate == 0 {
		config.Debug.BaudRate = def.Debug.BaudRate
	}

	if config.WatchdogMillis == 0 {
		config.WatchdogMillis = def.WatchdogMillis
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

// Validate checks that every pin and ADC name resolves
func (c *BoardConfig) Validate() error {
	pins := []string{
		c.Scope.Ch1Trigger, c.Scope.Ch2Trigger,
		c.FuncGen.PWMPin, c.FuncGen.SelectPin, c.FuncGen.AD9833CS,
		c.FuncGen.SPISCK, c.FuncGen.SPISDO,
		c.LEDs.Ch1, c.LEDs.Ch2, c.LEDs.FuncGen, c.LEDs.Activity, c.LEDs.Pixel,
		c.Debug.TXPin, c.Debug.RXPin,
	}
	for _, p := range pins {
		if _, err := ParsePin(p); err != nil {
			return errors.New(err.Error() + ": " + p)
		}
	}
	for _, a := range []string{c.Scope.Ch1ADC, c.Scope.Ch2ADC} {
		if _, err := ParseADC(a); err != nil {
			return errors.New(err.Error() + ": " + a)
		}
	}
	if c.LEDs.PixelOrder != "GRB" && c.LEDs.PixelOrder != "RGB" {
		return errors.New("invalid pixel order: " + c.LEDs.PixelOrder)
	}
	return nil
}

// ParsePin converts "gpioN" (0-29) to the pin number
func ParsePin(name string) (uint32, error) {
	return parseIndexed(name, "gpio", 29, ErrBadPin)
}

// ParseADC converts "ADCn" (0-3) to the ADC input number
func ParseADC(name string) (uint8, error) {
	n, err := parseIndexed(name, "ADC", 3, ErrBadADC)
	return uint8(n), err
}

func parseIndexed(name, prefix string, max uint32, bad error) (uint32, error) {
	if !strings.HasPrefix(name, prefix) || len(name) == len(prefix) {
		return 0, bad
	}
	var n uint32
	for _, c := range name[len(prefix):] {
		if c < '0' || c > '9' {
			return 0, bad
		}
		n = n*10 + uint32(c-'0')
		if n > max {
			return 0, bad
		}
	}
	return n, nil
}

// DefaultBoardConfig returns the reference board wiring
func DefaultBoardConfig() *BoardConfig {
	return &BoardConfig{
		Board: "picoscope-rp2040",
		Scope: ScopeConfig{
			Ch1ADC:     "ADC1",
			Ch2ADC:     "ADC2",
			Ch1Trigger: "gpio29",
			Ch2Trigger: "gpio14",
		},
		FuncGen: FuncGenConfig{
			PWMPin:    "gpio8",
			SelectPin: "gpio7",
			AD9833CS:  "gpio1",
			SPIBus:    0,
			SPISCK:    "gpio2",
			SPISDO:    "gpio3",
		},
		LEDs: LEDConfig{
			Ch1:        "gpio4",
			Ch2:        "gpio6",
			FuncGen:    "gpio5",
			Activity:   "gpio15",
			Pixel:      "gpio16",
			PixelOrder: "RGB",
		},
		Debug: DebugConfig{
			Enabled:  false,
			UART:     0,
			TXPin:    "gpio12",
			RXPin:    "gpio13",
			BaudRate: 115200,
		},
		WatchdogMillis: 5000,
	}
}

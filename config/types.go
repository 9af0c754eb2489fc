package config

// ScopeConfig maps the oscilloscope channels to ADC inputs and trigger pins
type ScopeConfig struct {
	Ch1ADC     string // ADC input for channel 1 ("ADC0".."ADC3")
	Ch2ADC     string // ADC input for channel 2
	Ch1Trigger string // GPIO pin of the channel 1 trigger comparator
	Ch2Trigger string // GPIO pin of the channel 2 trigger comparator
}

// FuncGenConfig represents the signal generator wiring
type FuncGenConfig struct {
	PWMPin    string // PWM output pin
	SelectPin string // Output source select (low = PWM, high = AD9833)
	AD9833CS  string // AD9833 chip select (active low)
	SPIBus    uint8  // Hardware SPI bus ID
	SPISCK    string // SPI clock pin
	SPISDO    string // SPI data out pin
}

// LEDConfig represents the indicator wiring
type LEDConfig struct {
	Ch1        string // Channel 1 LED
	Ch2        string // Channel 2 LED
	FuncGen    string // Generator LED
	Activity   string // Lit while a command runs
	Pixel      string // WS2812 data pin
	PixelOrder string // "GRB" or "RGB" byte order on the wire
}

// DebugConfig represents the debug UART
type DebugConfig struct {
	Enabled  bool   // Route DebugPrintln output to the UART
	UART     uint8  // UART peripheral number
	TXPin    string // UART TX pin
	RXPin    string // UART RX pin
	BaudRate uint32 // Line rate
}

// BoardConfig represents the complete board configuration
type BoardConfig struct {
	Board   string // Board name, reported at boot
	Scope   ScopeConfig
	FuncGen FuncGenConfig
	LEDs    LEDConfig
	Debug   DebugConfig

	WatchdogMillis     uint32 // Watchdog timeout, milliseconds
	TriggerCalibration bool   // Run the trigger sweep instead of serving commands
}

package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// EdgeMask is the per-pin event nibble reported by the GPIO interrupt
// controller (RP2040 IO_BANK0 encoding).
type EdgeMask uint8

const (
	EdgeLevelLow  EdgeMask = 1 << 0
	EdgeLevelHigh EdgeMask = 1 << 1
	EdgeFall      EdgeMask = 1 << 2
	EdgeRise      EdgeMask = 1 << 3

	// EdgeBoth means a rising and a falling edge were latched before the
	// interrupt was serviced.
	EdgeBoth = EdgeFall | EdgeRise
)

// EdgeHandler runs in interrupt context for every latched edge.
type EdgeHandler func(pin GPIOPin, events EdgeMask)

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	ConfigureOutput(pin GPIOPin) error

	// ConfigureInput configures a pin as a floating digital input
	ConfigureInput(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// ReadPin reads the current pin state
	ReadPin(pin GPIOPin) bool
}

// TriggerDriver delivers edge interrupts from trigger inputs.
type TriggerDriver interface {
	// ConfigureTrigger installs handler for rising and falling edges on
	// pin, leaving the interrupt disabled.
	ConfigureTrigger(pin GPIOPin, handler EdgeHandler) error

	// SetTriggerEnabled enables or disables both edge interrupts on pin.
	// Once disable returns, no handler invocation for pin is in flight.
	SetTriggerEnabled(pin GPIOPin, enabled bool)
}

// Global singletons used by core code.
var (
	gpioDriver    GPIODriver
	triggerDriver TriggerDriver
)

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// SetTriggerDriver registers the edge interrupt driver.
func SetTriggerDriver(d TriggerDriver) {
	triggerDriver = d
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}

// MustTrigger returns the configured edge interrupt driver or panics if missing.
func MustTrigger() TriggerDriver {
	if triggerDriver == nil {
		panic("trigger driver not configured")
	}
	return triggerDriver
}

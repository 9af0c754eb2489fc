package core

// PWMPin identifies a hardware pin capable of PWM output
type PWMPin uint32

// PWMDriver is the abstract PWM interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type PWMDriver interface {
	// ConfigureHardwarePWM routes pin to its PWM slice and programs the
	// slice for periodNs. Output stays in its current enabled state.
	ConfigureHardwarePWM(pin PWMPin, periodNs uint64) error

	// SetDutyPercent sets the high time as a percentage (0-100) of the period
	SetDutyPercent(pin PWMPin, percent uint8) error

	// EnablePWM starts or stops the slice driving pin. A stopped slice
	// holds whatever level it last drove.
	EnablePWM(pin PWMPin, enabled bool) error
}

// Global singleton used by core code.
var pwmDriver PWMDriver

// SetPWMDriver is called by target-specific code to register its driver.
func SetPWMDriver(d PWMDriver) {
	pwmDriver = d
}

// MustPWM returns the configured driver or panics if missing.
func MustPWM() PWMDriver {
	if pwmDriver == nil {
		panic("PWM driver not configured")
	}
	return pwmDriver
}

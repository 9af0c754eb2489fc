package core

// AlarmDriver owns the single repeating hardware timer slot used to bound
// busy-waits. fn runs in interrupt context every period until Cancel.
type AlarmDriver interface {
	StartRepeating(periodMS uint32, fn func()) error
	Cancel()
}

var alarmDriver AlarmDriver

// SetAlarmDriver is called by target-specific code to register its driver.
func SetAlarmDriver(d AlarmDriver) {
	alarmDriver = d
}

// MustAlarm returns the configured driver or panics if missing.
func MustAlarm() AlarmDriver {
	if alarmDriver == nil {
		panic("alarm driver not configured")
	}
	return alarmDriver
}

package core

// Timer frequencies for common MCUs
const (
	TimerFreq = 1000000 // 1MHz microsecond timer (RP2040 TIMER)
)

// TimeSource returns the free-running microsecond counter.
type TimeSource func() uint32

var (
	bootTime uint32 // Time at boot for uptime calculation
)

// SetTimeSource registers the hardware (or simulated) microsecond counter.
// Must be called before any trigger interrupt is enabled.
func SetTimeSource(src TimeSource) {
	setTimeSource(src)
}

// GetTime returns the current system time in microseconds
func GetTime() uint32 {
	return getSystemTicks()
}

// GetMillis returns the current system time in milliseconds
func GetMillis() uint32 {
	return getSystemTicks() / 1000
}

// GetUptime returns microseconds elapsed since TimerInit
func GetUptime() uint32 {
	return GetTime() - bootTime
}

// TimerFromMS converts milliseconds to timer ticks
func TimerFromMS(ms uint32) uint32 {
	return ms * (TimerFreq / 1000)
}

// TimerToMS converts timer ticks to milliseconds
func TimerToMS(ticks uint32) uint32 {
	return ticks / (TimerFreq / 1000)
}

// TimerInit initializes the system timer
func TimerInit() {
	bootTime = GetTime()
}

// ProcessTimers processes scheduled timers
func ProcessTimers() {
	currentTime = GetTime()
	TimerDispatch()
}

// DelayMicros busy-waits for us microseconds on the system timer
func DelayMicros(us uint32) {
	start := GetTime()
	for GetTime()-start < us {
		cpuIdle()
	}
}

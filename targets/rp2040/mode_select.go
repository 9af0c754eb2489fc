//go:build rp2040

package main

import (
	"machine"
	"time"

	"picoscope/config"
	"picoscope/core"
)

// ModeConfig determines which mode to run
type ModeConfig struct {
	// Calibration sweeps the signal generator through the trigger
	// analyzer and logs the results instead of serving host commands
	Calibration bool
}

// GetMode returns the mode selected by the board file
func GetMode(c *config.BoardConfig) ModeConfig {
	return ModeConfig{
		Calibration: c.TriggerCalibration,
	}
}

// RunCalibrationMode drives the AD9833 into the channel 1 trigger at each
// sweep frequency and logs what the analyzer measures. Never returns.
func RunCalibrationMode(scope *core.Oscilloscope, gen *core.FuncGen) {
	cal := core.NewTriggerCalibration(scope, gen, scope.Config().Ch1Trigger)
	core.DebugPrintln("[CAL] trigger sweep started")

	for {
		machine.Watchdog.Update()
		cal.Poll()
		core.ProcessTimers()

		// Yield
		time.Sleep(10 * time.Millisecond)
	}
}

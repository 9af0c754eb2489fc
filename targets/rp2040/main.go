//go:build rp2040

package main

import (
	"machine"
	"time"

	"picoscope/core"
	"picoscope/protocol"
)

const bootBreatheMillis = 1

var (
	// Buffers for communication
	inputBuffer *protocol.FifoBuffer
	transport   *protocol.Transport

	registry = core.GetGlobalRegistry()
	device   *core.Device

	// Debug counters
	linesReceived uint32
	msgerrors     uint32
)

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	// This prevents issues with watchdog persisting across resets
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	board := loadBoard()

	// Initialize USB CDC immediately
	InitUSB()

	if board.Debug.Enabled {
		InitDebugUART(board.Debug.UART,
			machine.Pin(pin(board.Debug.TXPin)), machine.Pin(pin(board.Debug.RXPin)),
			board.Debug.BaudRate)
	}

	// Initialize clock before any interrupt can read it
	InitClock()

	// Register drivers
	core.SetAlarmDriver(NewRPAlarmDriver())
	core.SetGPIODriver(NewRPGPIODriver())
	core.SetTriggerDriver(NewRPTriggerDriver())
	core.SetADCDriver(NewRPAdcDriver())
	core.SetPWMDriver(NewRP2040PWMDriver())
	core.SetSPIDriver(NewRP2040SPIDriver())

	pixel, err := NewWS2812Driver(0, machine.Pin(pin(board.LEDs.Pixel)), pixelOrder(board))
	if err != nil {
		core.DebugPrintln("[BOOT] pixel: " + err.Error())
	} else {
		core.SetPixelDriver(pixel)
	}

	// Subsystems
	scope := core.NewOscilloscope(usbWriter{})
	if err := scope.Setup(scopeConfig(board)); err != nil {
		core.DebugPrintln("[BOOT] scope: " + err.Error())
	}
	gen := core.NewFuncGen()
	if err := gen.Setup(funcGenConfig(board)); err != nil {
		core.DebugPrintln("[BOOT] funcgen: " + err.Error())
	}
	leds := core.NewStatusLEDs()
	if err := leds.Setup(ledConfig(board)); err != nil {
		core.DebugPrintln("[BOOT] leds: " + err.Error())
	}

	device = &core.Device{Scope: scope, FuncGen: gen, LEDs: leds, Reply: usbWriter{}}
	core.InitDeviceCommands(registry, device)

	bootSequence(leds)

	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: board.WatchdogMillis})
	machine.Watchdog.Start()
	core.DebugPrintln("[BOOT] " + board.Board)

	if GetMode(board).Calibration {
		RunCalibrationMode(scope, gen)
	}

	// Create buffers
	inputBuffer = protocol.NewFifoBuffer(256)

	transport = protocol.NewTransport(handleCommand)
	transport.SetErrorHandler(func(line string, err error) {
		msgerrors++
	})
	transport.SetResetCallback(func() {
		inputBuffer.Reset()
	})

	// Start USB reader goroutine
	go usbReaderLoop()

	// Main loop
	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
					// Clear buffers and continue
					transport.Reset()
					core.DumpTimingRing()
				}
			}()

			machine.Watchdog.Update()

			// Process incoming lines
			if inputBuffer.Available() > 0 {
				transport.Receive(inputBuffer)
			}

			// Process scheduled timers
			core.ProcessTimers()
		}()

		// Yield to other goroutines
		time.Sleep(10 * time.Microsecond)
	}
}

// bootSequence lights every LED, breathes the pixel red, green and blue,
// then turns everything off
func bootSequence(leds *core.StatusLEDs) {
	leds.SetAll(true)
	for _, c := range []string{"red", "green", "blue"} {
		leds.Breathe(c, bootBreatheMillis)
	}
	for leds.Breathing() {
		core.ProcessTimers()
		time.Sleep(100 * time.Microsecond)
	}
	leds.SetAll(false)
}

// usbReaderLoop runs in a goroutine to continuously read USB data
func usbReaderLoop() {
	// Recover from panics to prevent a firmware crash
	defer func() {
		if r := recover(); r != nil {
			msgerrors++
			// Restart the reader loop
			time.Sleep(100 * time.Millisecond)
			go usbReaderLoop()
		}
	}()

	for {
		if USBAvailable() > 0 {
			data, err := USBRead()
			if err != nil {
				msgerrors++
				time.Sleep(1 * time.Millisecond)
				continue
			}

			written := inputBuffer.Write([]byte{data})
			if written == 0 {
				// Buffer full - error condition
				msgerrors++
				time.Sleep(10 * time.Millisecond)
			}
		}
		// Yield to avoid a busy loop
		time.Sleep(100 * time.Microsecond)
	}
}

// handleCommand runs one tokenized line against the command table
func handleCommand(tokens []string) error {
	linesReceived++
	return device.HandleLine(registry, tokens)
}

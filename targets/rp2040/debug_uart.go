//go:build rp2040

package main

import (
	"machine"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"picoscope/core"
)

var debugUART *uartx.UART

// InitDebugUART routes core debug output to a PL011 UART so log text
// never mixes with the USB capture stream
func InitDebugUART(bus uint8, tx, rx machine.Pin, baud uint32) {
	debugUART = uartx.UART0
	if bus == 1 {
		debugUART = uartx.UART1
	}

	err := debugUART.Configure(machine.UARTConfig{
		BaudRate: baud,
		TX:       tx,
		RX:       rx,
	})
	if err != nil {
		debugUART = nil
		return
	}

	core.SetDebugWriter(debugWrite)
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	core.DebugPrintln("=== picoscope debug UART ===")
}

// debugWrite writes a string to the debug UART with newline
func debugWrite(s string) {
	if debugUART == nil {
		return
	}
	debugUART.Write([]byte(s))
	debugUART.Write([]byte("\r\n"))
}

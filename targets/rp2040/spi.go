//go:build rp2040

package main

import (
	"errors"
	"machine"
	"sync"

	"picoscope/core"

	"tinygo.org/x/drivers"
)

// RP2040 SPI bus configurations
// Each bus specifies which SPI controller and GPIO pins to use
type spiBusConfig struct {
	spi  *machine.SPI // SPI controller (SPI0 or SPI1)
	sck  machine.Pin  // Clock pin
	mosi machine.Pin  // Master Out Slave In
	miso machine.Pin  // Master In Slave Out
	name string       // Human-readable name
}

var rp2040SPIBuses = map[core.SPIBusID]spiBusConfig{
	// SPI0 configurations
	0: {spi: machine.SPI0, sck: machine.GPIO2, mosi: machine.GPIO3, miso: machine.GPIO0, name: "spi0a"},
	1: {spi: machine.SPI0, sck: machine.GPIO6, mosi: machine.GPIO7, miso: machine.GPIO4, name: "spi0b"},
	2: {spi: machine.SPI0, sck: machine.GPIO18, mosi: machine.GPIO19, miso: machine.GPIO16, name: "spi0c"},

	// SPI1 configurations
	5: {spi: machine.SPI1, sck: machine.GPIO10, mosi: machine.GPIO11, miso: machine.GPIO8, name: "spi1a"},
	6: {spi: machine.SPI1, sck: machine.GPIO14, mosi: machine.GPIO15, miso: machine.GPIO12, name: "spi1b"},
	7: {spi: machine.SPI1, sck: machine.GPIO26, mosi: machine.GPIO27, miso: machine.GPIO24, name: "spi1c"},
}

var (
	errBadSPIBus  = errors.New("invalid SPI bus ID")
	errBadSPIPins = errors.New("SPI pins do not match bus")
	errBadSPIMode = errors.New("invalid SPI mode")
)

// RP2040SPIDriver implements core.SPIDriver using TinyGo's machine.SPI
type RP2040SPIDriver struct {
	mu sync.Mutex
}

// NewRP2040SPIDriver creates a new RP2040 SPI driver
func NewRP2040SPIDriver() *RP2040SPIDriver {
	return &RP2040SPIDriver{}
}

// ConfigureBus sets up a hardware SPI bus and hands it out as drivers.SPI
func (d *RP2040SPIDriver) ConfigureBus(config core.SPIConfig) (drivers.SPI, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	busConfig, exists := rp2040SPIBuses[config.BusID]
	if !exists {
		return nil, errBadSPIBus
	}
	if machine.Pin(config.SCK) != busConfig.sck || machine.Pin(config.SDO) != busConfig.mosi {
		return nil, errBadSPIPins
	}
	if config.Mode > 3 {
		return nil, errBadSPIMode
	}

	err := busConfig.spi.Configure(machine.SPIConfig{
		Frequency: config.Rate,
		SCK:       busConfig.sck,
		SDO:       busConfig.mosi, // SDO = Serial Data Out (MOSI)
		SDI:       busConfig.miso, // SDI = Serial Data In (MISO), unused by the AD9833
		Mode:      uint8(config.Mode),
	})
	if err != nil {
		return nil, err
	}
	return busConfig.spi, nil
}

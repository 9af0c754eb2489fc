package core

// PixelDriver drives the single addressable RGB status pixel.
type PixelDriver interface {
	SetColor(red, green, blue uint8) error
}

var pixelDriver PixelDriver

// SetPixelDriver is called by target-specific code to register its driver.
func SetPixelDriver(d PixelDriver) {
	pixelDriver = d
}

// MustPixel returns the configured driver or panics if missing.
func MustPixel() PixelDriver {
	if pixelDriver == nil {
		panic("pixel driver not configured")
	}
	return pixelDriver
}

// Package protocol implements the oscilloscope host link: text commands in,
// packed sample blocks and fixed-size replies out
package protocol

// Version represents the picoscope firmware version
const Version = "0.1.0"

// Protocol constants
const (
	LineMax = 99 // command line length that forces dispatch without '\n'

	SampleSize  = 2 // bytes per packed 12-bit sample
	TrailerSize = 4 // status + value, both big-endian
	ReplySize   = 2 // little-endian constant query reply
)

package protocol

import "encoding/binary"

// PutSample packs a 12-bit reading into dst: the top nibble in byte 0
// bits 0-3, the low byte in byte 1. Bits above 11 are dropped.
// Returns the number of bytes written.
func PutSample(dst []byte, v uint16) int {
	dst[0] = byte((v & 0x0F00) >> 8)
	dst[1] = byte(v & 0xFF)
	return SampleSize
}

// PackSamples packs every sample into dst, which must hold
// SampleSize*len(samples) bytes. Returns the number of bytes written.
func PackSamples(dst []byte, samples []uint16) int {
	n := 0
	for _, s := range samples {
		n += PutSample(dst[n:], s)
	}
	return n
}

// PutTrailer writes the capture trailer: status then value, big-endian
func PutTrailer(dst []byte, status, value uint16) int {
	binary.BigEndian.PutUint16(dst[0:], status)
	binary.BigEndian.PutUint16(dst[2:], value)
	return TrailerSize
}

// PutReply writes a constant query reply, little-endian
func PutReply(dst []byte, v uint16) int {
	binary.LittleEndian.PutUint16(dst, v)
	return ReplySize
}

package protocol

import "sync/atomic"

// InputBuffer provides an abstraction for reading incoming command bytes
type InputBuffer interface {
	// Data returns the available data slice
	Data() []byte

	// Available returns the number of bytes available
	Available() int

	// Pop removes n bytes from the front of the buffer
	Pop(n int)
}

// SliceInputBuffer implements InputBuffer over a fixed byte slice
type SliceInputBuffer struct {
	data []byte
}

// NewSliceInputBuffer creates a new SliceInputBuffer
func NewSliceInputBuffer(data []byte) *SliceInputBuffer {
	return &SliceInputBuffer{data: data}
}

func (s *SliceInputBuffer) Data() []byte {
	return s.data
}

func (s *SliceInputBuffer) Available() int {
	return len(s.data)
}

func (s *SliceInputBuffer) Pop(n int) {
	if n > len(s.data) {
		n = len(s.data)
	}
	s.data = s.data[n:]
}

// FifoBuffer carries host bytes from the USB reader goroutine to the main
// loop. One producer calls Write; one consumer calls everything else.
// head and tail are free-running counters; each has a single writer.
type FifoBuffer struct {
	buf     []byte
	scratch []byte // contiguous copy of a wrapped span
	head    uint32 // written by the producer
	tail    uint32 // written by the consumer
}

// NewFifoBuffer creates a FIFO holding up to capacity bytes
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{
		buf:     make([]byte, capacity),
		scratch: make([]byte, capacity),
	}
}

func (f *FifoBuffer) cap32() uint32 {
	return uint32(len(f.buf))
}

// Write appends as much of data as fits and returns the count taken
func (f *FifoBuffer) Write(data []byte) int {
	head := atomic.LoadUint32(&f.head)
	free := f.cap32() - (head - atomic.LoadUint32(&f.tail))
	n := uint32(len(data))
	if n > free {
		n = free
	}
	for i := uint32(0); i < n; i++ {
		f.buf[(head+i)%f.cap32()] = data[i]
	}
	// Publish after the bytes are stored
	atomic.StoreUint32(&f.head, head+n)
	return int(n)
}

// Read copies up to len(data) bytes out of the FIFO
func (f *FifoBuffer) Read(data []byte) int {
	avail := f.Data()
	n := copy(data, avail)
	f.Pop(n)
	return n
}

// Available returns the number of bytes waiting to be read
func (f *FifoBuffer) Available() int {
	return int(atomic.LoadUint32(&f.head) - atomic.LoadUint32(&f.tail))
}

// Free returns the number of bytes Write can still accept
func (f *FifoBuffer) Free() int {
	return len(f.buf) - f.Available()
}

// Data returns the waiting bytes as one slice. A wrapped span is copied
// into scratch, so the result is only valid until the next Data call.
func (f *FifoBuffer) Data() []byte {
	tail := atomic.LoadUint32(&f.tail)
	n := atomic.LoadUint32(&f.head) - tail
	start := tail % f.cap32()
	if start+n <= f.cap32() {
		return f.buf[start : start+n]
	}
	first := copy(f.scratch, f.buf[start:])
	copy(f.scratch[first:], f.buf[:n-uint32(first)])
	return f.scratch[:n]
}

// Pop drops n bytes from the front, or everything if fewer are waiting
func (f *FifoBuffer) Pop(n int) {
	tail := atomic.LoadUint32(&f.tail)
	avail := atomic.LoadUint32(&f.head) - tail
	if uint32(n) > avail {
		n = int(avail)
	}
	atomic.StoreUint32(&f.tail, tail+uint32(n))
}

// IsEmpty reports whether nothing is waiting
func (f *FifoBuffer) IsEmpty() bool {
	return f.Available() == 0
}

// Reset drops everything written so far. Consumer side only.
func (f *FifoBuffer) Reset() {
	atomic.StoreUint32(&f.tail, atomic.LoadUint32(&f.head))
}

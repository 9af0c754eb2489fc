package protocol

import (
	"bytes"
	"sync"
	"testing"
)

func TestSliceInputBuffer(t *testing.T) {
	buf := NewSliceInputBuffer([]byte("led ch1 on\n"))

	if buf.Available() != 11 {
		t.Errorf("Available() = %d, want 11", buf.Available())
	}

	buf.Pop(4)
	if got := string(buf.Data()); got != "ch1 on\n" {
		t.Errorf("after Pop(4) Data() = %q", got)
	}

	buf.Pop(100)
	if buf.Available() != 0 {
		t.Errorf("Pop past the end left %d bytes", buf.Available())
	}
}

func TestFifoBuffer(t *testing.T) {
	fifo := NewFifoBuffer(8)

	if !fifo.IsEmpty() || fifo.Free() != 8 {
		t.Fatalf("new FIFO: empty=%v free=%d", fifo.IsEmpty(), fifo.Free())
	}

	if n := fifo.Write([]byte("osc ")); n != 4 {
		t.Errorf("Write returned %d, want 4", n)
	}
	if n := fifo.Write([]byte("get_samples")); n != 4 {
		t.Errorf("Write into 4 free bytes returned %d", n)
	}
	if fifo.Free() != 0 {
		t.Errorf("full FIFO reports %d bytes free", fifo.Free())
	}
	if n := fifo.Write([]byte("x")); n != 0 {
		t.Errorf("Write into a full FIFO returned %d", n)
	}

	out := make([]byte, 3)
	if n := fifo.Read(out); n != 3 || string(out) != "osc" {
		t.Errorf("Read = %d %q, want 3 \"osc\"", n, out)
	}
	if got := string(fifo.Data()); got != " get_" {
		t.Errorf("Data() = %q, want \" get_\"", got)
	}

	fifo.Reset()
	if !fifo.IsEmpty() {
		t.Errorf("Reset left %d bytes", fifo.Available())
	}
}

func TestFifoBufferDataWrapped(t *testing.T) {
	fifo := NewFifoBuffer(6)

	fifo.Write([]byte("abcd"))
	fifo.Pop(3)
	fifo.Write([]byte("efgh"))

	// "d" sits at the end of the ring, "efgh" wraps to the front
	if got := string(fifo.Data()); got != "defgh" {
		t.Errorf("wrapped Data() = %q, want \"defgh\"", got)
	}

	fifo.Pop(2)
	if got := string(fifo.Data()); got != "fgh" {
		t.Errorf("after Pop(2) Data() = %q, want \"fgh\"", got)
	}
}

func TestFifoBufferProducerConsumer(t *testing.T) {
	fifo := NewFifoBuffer(16)
	var want bytes.Buffer
	for i := 0; i < 1000; i++ {
		want.WriteByte(byte(i))
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		src := want.Bytes()
		for len(src) > 0 {
			src = src[fifo.Write(src):]
		}
	}()

	var got []byte
	for len(got) < want.Len() {
		data := fifo.Data()
		got = append(got, data...)
		fifo.Pop(len(data))
	}
	wg.Wait()

	if !bytes.Equal(got, want.Bytes()) {
		t.Errorf("consumer saw %d bytes out of order", len(got))
	}
}

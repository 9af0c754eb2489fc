package core

import "sync/atomic"

// testClock is a manually advanced microsecond time source
type testClock struct {
	now uint32
}

func newTestClock(start uint32) *testClock {
	c := &testClock{now: start}
	SetTimeSource(c.read)
	return c
}

func (c *testClock) read() uint32 {
	return atomic.LoadUint32(&c.now)
}

func (c *testClock) set(us uint32) {
	atomic.StoreUint32(&c.now, us)
}

func (c *testClock) advance(us uint32) {
	atomic.AddUint32(&c.now, us)
}

// mockAlarm is a test implementation of AlarmDriver
type mockAlarm struct {
	starts  []uint32
	cancels int
	fn      func()
	err     error
}

func (m *mockAlarm) StartRepeating(periodMS uint32, fn func()) error {
	if m.err != nil {
		return m.err
	}
	m.starts = append(m.starts, periodMS)
	m.fn = fn
	return nil
}

func (m *mockAlarm) Cancel() {
	m.cancels++
	m.fn = nil
}

func (m *mockAlarm) fire() {
	if m.fn != nil {
		m.fn()
	}
}

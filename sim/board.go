//go:build !tinygo

// Package sim is a simulated board for host tests. It implements every
// core HAL interface against a virtual nanosecond clock. Busy-waits in
// core call the idle hook, which advances the clock to the next pending
// event (an enabled trigger edge or the alarm) and fires it, so a capture
// session runs deterministically and far faster than real time.
package sim

import (
	"errors"
	"sync"
	"sync/atomic"

	"picoscope/core"

	"tinygo.org/x/drivers"
)

const (
	// StartNs is the virtual boot time; non-zero so the first recorded
	// edge never reads as "no previous edge"
	StartNs = 1000000

	// DefaultIdleStepNs is the clock advance of an idle poll with nothing pending
	DefaultIdleStepNs = 1000

	// SpinDelayNs is the simulated cost of one ETS delay iteration
	SpinDelayNs = 100

	adcClockHz = 48000000
)

// ErrNoAlarm is returned for a zero alarm period
var ErrNoAlarm = errors.New("sim: alarm unavailable")

type trigger struct {
	handler core.EdgeHandler
	enabled bool
	source  EdgeSource
	after   uint64 // edges at or before this time are consumed
}

// PWMState is the last programmed state of a PWM output
type PWMState struct {
	PeriodNs uint64
	Duty     uint8
	Enabled  bool
}

// Color is one pixel update
type Color struct {
	R, G, B uint8
}

// Board is the simulated RP2040 board
type Board struct {
	nowNs atomic.Uint64

	mu       sync.Mutex
	idleStep uint64

	triggers map[core.GPIOPin]*trigger

	alarmOn     bool
	alarmPeriod uint64
	alarmNext   uint64
	alarmFn     func()
	AlarmErr    error // returned by StartRepeating when set

	waveforms map[core.ADCChannelID]Waveform
	readings  map[core.ADCChannelID][]uint16
	selected  core.ADCChannelID
	captures  []core.BlockCapture
	spins     []uint16
	CaptureErr error // returned by CaptureBlock when set

	outputs map[core.GPIOPin]bool
	levels  map[core.GPIOPin]bool
	history map[core.GPIOPin][]bool

	pwm map[core.PWMPin]PWMState

	spiConfigs []core.SPIConfig
	spiTx      []byte

	colors   []Color
	PixelErr error // returned by SetColor when set
}

// NewBoard returns a board at StartNs with no signals attached
func NewBoard() *Board {
	b := &Board{
		idleStep:  DefaultIdleStepNs,
		triggers:  make(map[core.GPIOPin]*trigger),
		waveforms: make(map[core.ADCChannelID]Waveform),
		readings:  make(map[core.ADCChannelID][]uint16),
		outputs:   make(map[core.GPIOPin]bool),
		levels:    make(map[core.GPIOPin]bool),
		history:   make(map[core.GPIOPin][]bool),
		pwm:       make(map[core.PWMPin]PWMState),
	}
	b.nowNs.Store(StartNs)
	return b
}

// Install registers the board as every core driver, time source and idle hook
func (b *Board) Install() {
	core.SetTimeSource(b.Micros)
	core.SetIdleHook(b.Idle)
	core.SetADCDriver(b)
	core.SetGPIODriver(b)
	core.SetTriggerDriver(b)
	core.SetAlarmDriver(b)
	core.SetPWMDriver(b)
	core.SetSPIDriver(b)
	core.SetPixelDriver(b)
}

// Uninstall detaches the idle hook so later tests poll normally
func (b *Board) Uninstall() {
	core.SetIdleHook(core.IdleHook(nil))
}

// Now returns the virtual time in nanoseconds
func (b *Board) Now() uint64 {
	return b.nowNs.Load()
}

// Micros is the core time source: the 32-bit microsecond counter
func (b *Board) Micros() uint32 {
	return uint32(b.nowNs.Load() / 1000)
}

// SetIdleStep sets the clock advance of an idle poll with nothing pending
func (b *Board) SetIdleStep(ns uint64) {
	b.mu.Lock()
	b.idleStep = ns
	b.mu.Unlock()
}

// SetEdgeSource attaches a trigger signal to pin
func (b *Board) SetEdgeSource(pin core.GPIOPin, src EdgeSource) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tr := b.trigger(pin)
	tr.source = src
	tr.after = b.Now()
}

// SetWaveform attaches an analog signal to an ADC input
func (b *Board) SetWaveform(ch core.ADCChannelID, w Waveform) {
	b.mu.Lock()
	b.waveforms[ch] = w
	b.mu.Unlock()
}

// QueueReadings scripts the next one-shot conversions of an ADC input.
// Queued values take precedence over the waveform.
func (b *Board) QueueReadings(ch core.ADCChannelID, values ...uint16) {
	b.mu.Lock()
	b.readings[ch] = append(b.readings[ch], values...)
	b.mu.Unlock()
}

// Advance moves the clock forward without firing triggers; the alarm
// still fires if it falls due
func (b *Board) Advance(ns uint64) {
	target := b.Now() + ns
	for {
		b.mu.Lock()
		if !b.alarmOn || b.alarmNext > target {
			b.nowNs.Store(target)
			b.mu.Unlock()
			return
		}
		b.nowNs.Store(b.alarmNext)
		fn := b.alarmFn
		b.alarmNext += b.alarmPeriod
		b.mu.Unlock()
		fn()
	}
}

// Idle advances the clock to the next event and delivers it. While the
// alarm runs, the clock jumps straight to the earlier of the next enabled
// edge and the alarm expiry; otherwise it moves at most one idle step.
func (b *Board) Idle() {
	b.mu.Lock()
	now := b.Now()

	// Earliest enabled edge, lowest pin first on a tie
	var edgeAt uint64
	var edgePin core.GPIOPin
	var edgeMask core.EdgeMask
	var edgeTr *trigger
	for pin, tr := range b.triggers {
		if !tr.enabled || tr.source == nil {
			continue
		}
		after := tr.after
		if after < now {
			after = now
		}
		at, mask, ok := tr.source.Next(after)
		if !ok {
			continue
		}
		if edgeTr == nil || at < edgeAt || (at == edgeAt && pin < edgePin) {
			edgeAt, edgePin, edgeMask, edgeTr = at, pin, mask, tr
		}
	}

	limit := now + b.idleStep
	if b.alarmOn {
		limit = b.alarmNext
	}

	// The alarm wins a tie with an edge
	if edgeTr == nil || edgeAt > limit || (b.alarmOn && edgeAt == limit) {
		b.nowNs.Store(limit)
		var fn func()
		if b.alarmOn {
			fn = b.alarmFn
			b.alarmNext += b.alarmPeriod
		}
		b.mu.Unlock()
		if fn != nil {
			fn()
		}
		return
	}

	b.nowNs.Store(edgeAt)
	edgeTr.after = edgeAt
	handler := edgeTr.handler
	b.mu.Unlock()
	handler(edgePin, edgeMask)
}

func (b *Board) trigger(pin core.GPIOPin) *trigger {
	tr, ok := b.triggers[pin]
	if !ok {
		tr = &trigger{}
		b.triggers[pin] = tr
	}
	return tr
}

// --- core.TriggerDriver ---

func (b *Board) ConfigureTrigger(pin core.GPIOPin, handler core.EdgeHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	tr := b.trigger(pin)
	tr.handler = handler
	tr.enabled = false
	return nil
}

func (b *Board) SetTriggerEnabled(pin core.GPIOPin, enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tr, ok := b.triggers[pin]
	if !ok || tr.handler == nil {
		return
	}
	if enabled && !tr.enabled {
		// Edges while disabled are never latched
		tr.after = b.Now()
	}
	tr.enabled = enabled
}

// TriggerEnabled reports whether edges on pin are being delivered
func (b *Board) TriggerEnabled(pin core.GPIOPin) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	tr, ok := b.triggers[pin]
	return ok && tr.enabled
}

// --- core.AlarmDriver ---

func (b *Board) StartRepeating(periodMS uint32, fn func()) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.AlarmErr != nil {
		return b.AlarmErr
	}
	if periodMS == 0 {
		return ErrNoAlarm
	}
	b.alarmOn = true
	b.alarmPeriod = uint64(periodMS) * 1000000
	b.alarmNext = b.Now() + b.alarmPeriod
	b.alarmFn = fn
	return nil
}

func (b *Board) Cancel() {
	b.mu.Lock()
	b.alarmOn = false
	b.alarmFn = nil
	b.mu.Unlock()
}

// AlarmActive reports whether the repeating alarm is running
func (b *Board) AlarmActive() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.alarmOn
}

// --- core.ADCDriver ---

func (b *Board) ConfigureChannel(ch core.ADCChannelID) error {
	b.mu.Lock()
	b.selected = ch
	b.mu.Unlock()
	return nil
}

func (b *Board) ReadRaw(ch core.ADCChannelID) (core.ADCValue, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if q := b.readings[ch]; len(q) > 0 {
		b.readings[ch] = q[1:]
		return core.ADCValue(q[0]), nil
	}
	return core.ADCValue(b.sample(ch, b.Now())), nil
}

func (b *Board) sample(ch core.ADCChannelID, ns uint64) uint16 {
	if w, ok := b.waveforms[ch]; ok {
		return w(ns) & core.ADCMax
	}
	return 0
}

// conversionNs is the spacing of DMA-paced conversions for a request
func conversionNs(req core.BlockCapture) uint64 {
	return req.ConversionClocks() * 1000000000 / (adcClockHz * 256)
}

func (b *Board) CaptureBlock(req core.BlockCapture, dst []uint16) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.captures = append(b.captures, req)
	if b.CaptureErr != nil {
		return b.CaptureErr
	}

	step := conversionNs(req)
	t := b.Now()
	for i := 0; i < req.Count && i < len(dst); i++ {
		ch := req.First
		if req.Dual && i%2 == 1 {
			ch = req.Second
		}
		dst[i] = b.sample(ch, t)
		t += step
	}
	b.nowNs.Store(t)
	return nil
}

func (b *Board) SpinDelay(iterations uint16) {
	b.mu.Lock()
	b.spins = append(b.spins, iterations)
	b.mu.Unlock()
	b.nowNs.Add(uint64(iterations) * SpinDelayNs)
}

// Selected returns the input of the last ConfigureChannel
func (b *Board) Selected() core.ADCChannelID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.selected
}

// Captures returns every block capture request so far
func (b *Board) Captures() []core.BlockCapture {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]core.BlockCapture(nil), b.captures...)
}

// Spins returns the ETS delay of every conversion so far
func (b *Board) Spins() []uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]uint16(nil), b.spins...)
}

// --- core.GPIODriver ---

func (b *Board) ConfigureOutput(pin core.GPIOPin) error {
	b.mu.Lock()
	b.outputs[pin] = true
	b.mu.Unlock()
	return nil
}

func (b *Board) ConfigureInput(pin core.GPIOPin) error {
	b.mu.Lock()
	b.outputs[pin] = false
	b.mu.Unlock()
	return nil
}

func (b *Board) SetPin(pin core.GPIOPin, value bool) error {
	b.mu.Lock()
	b.levels[pin] = value
	b.history[pin] = append(b.history[pin], value)
	b.mu.Unlock()
	return nil
}

func (b *Board) ReadPin(pin core.GPIOPin) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.levels[pin]
}

// IsOutput reports whether pin was configured as an output
func (b *Board) IsOutput(pin core.GPIOPin) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outputs[pin]
}

// PinHistory returns every level written to pin, oldest first
func (b *Board) PinHistory(pin core.GPIOPin) []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bool(nil), b.history[pin]...)
}

// --- core.PWMDriver ---

func (b *Board) ConfigureHardwarePWM(pin core.PWMPin, periodNs uint64) error {
	b.mu.Lock()
	st := b.pwm[pin]
	st.PeriodNs = periodNs
	b.pwm[pin] = st
	b.mu.Unlock()
	return nil
}

func (b *Board) SetDutyPercent(pin core.PWMPin, percent uint8) error {
	b.mu.Lock()
	st := b.pwm[pin]
	st.Duty = percent
	b.pwm[pin] = st
	b.mu.Unlock()
	return nil
}

func (b *Board) EnablePWM(pin core.PWMPin, enabled bool) error {
	b.mu.Lock()
	st := b.pwm[pin]
	st.Enabled = enabled
	b.pwm[pin] = st
	// A running slice with any duty drives the pin high at some point;
	// a stopped one holds its level
	if enabled && st.Duty > 0 {
		b.levels[core.GPIOPin(pin)] = true
	}
	b.mu.Unlock()
	return nil
}

// PWM returns the state of a PWM output
func (b *Board) PWM(pin core.PWMPin) PWMState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pwm[pin]
}

// --- core.SPIDriver ---

func (b *Board) ConfigureBus(config core.SPIConfig) (drivers.SPI, error) {
	b.mu.Lock()
	b.spiConfigs = append(b.spiConfigs, config)
	b.mu.Unlock()
	return &spiBus{board: b}, nil
}

// SPIConfigs returns every bus configuration requested
func (b *Board) SPIConfigs() []core.SPIConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]core.SPIConfig(nil), b.spiConfigs...)
}

// SPIWords returns the transmitted bytes as big-endian 16-bit words
func (b *Board) SPIWords() []uint16 {
	b.mu.Lock()
	defer b.mu.Unlock()
	words := make([]uint16, 0, len(b.spiTx)/2)
	for i := 0; i+1 < len(b.spiTx); i += 2 {
		words = append(words, uint16(b.spiTx[i])<<8|uint16(b.spiTx[i+1]))
	}
	return words
}

// ResetSPI forgets transmitted SPI data
func (b *Board) ResetSPI() {
	b.mu.Lock()
	b.spiTx = nil
	b.mu.Unlock()
}

// spiBus is the drivers.SPI handed to peripheral code
type spiBus struct {
	board *Board
}

func (s *spiBus) Tx(w, r []byte) error {
	s.board.mu.Lock()
	s.board.spiTx = append(s.board.spiTx, w...)
	s.board.mu.Unlock()
	for i := range r {
		r[i] = 0
	}
	return nil
}

func (s *spiBus) Transfer(w byte) (byte, error) {
	return 0, s.Tx([]byte{w}, nil)
}

// --- core.PixelDriver ---

func (b *Board) SetColor(red, green, blue uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.PixelErr != nil {
		return b.PixelErr
	}
	b.colors = append(b.colors, Color{red, green, blue})
	return nil
}

// Colors returns every pixel update so far
func (b *Board) Colors() []Color {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Color(nil), b.colors...)
}

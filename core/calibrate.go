package core

// CalibrationFrequencies is the AD9833 sweep used to check the trigger
// analyzer across its range, Hz
var CalibrationFrequencies = []uint32{
	1000000, 200000, 100000, 50000, 20000, 10000, 5000,
	2000, 1000, 500, 200, 100, 50, 20, 10,
}

const (
	calibrationIntervalMicros = 2000000
	calibrationSettleMicros   = 100000
)

// TriggerCalibration feeds the generator into the trigger and logs what
// the analyzer makes of each sweep frequency
type TriggerCalibration struct {
	scope *Oscilloscope
	gen   *FuncGen
	pin   GPIOPin
	ix    int
	last  uint32
}

// NewTriggerCalibration sweeps gen while analyzing pin. The first step
// runs one interval after creation.
func NewTriggerCalibration(scope *Oscilloscope, gen *FuncGen, pin GPIOPin) *TriggerCalibration {
	return &TriggerCalibration{scope: scope, gen: gen, pin: pin, last: GetTime()}
}

// Poll runs the next sweep step once the interval has elapsed.
// Returns true if a step ran.
func (c *TriggerCalibration) Poll() bool {
	now := GetTime()
	if now-c.last < calibrationIntervalMicros {
		return false
	}
	c.last = now

	f := CalibrationFrequencies[c.ix]
	c.ix = (c.ix + 1) % len(CalibrationFrequencies)
	if _, _, err := c.Measure(f); err != nil {
		DebugPrintln("[CAL] F=" + utoa(f) + ": " + err.Error())
	}
	return true
}

// Measure drives freqHz, lets the comparator settle and runs the analyzer
func (c *TriggerCalibration) Measure(freqHz uint32) (TriggerResult, Analysis, error) {
	if err := c.gen.AD9833Set(freqHz, ShapeSine); err != nil {
		return TriggerResult{}, Analysis{}, err
	}
	defer c.gen.Stop("AD9833")
	DelayMicros(calibrationSettleMicros)

	if !c.scope.acquire() {
		return TriggerResult{}, Analysis{}, ErrScopeBusy
	}
	res, a := c.scope.waitForTrigger(c.pin)
	c.scope.release()

	var measured uint32
	if res.PeriodMicros > 0 {
		measured = 1000000 / uint32(res.PeriodMicros)
	}
	DebugPrintln("[CAL] F=" + utoa(freqHz) +
		" max:" + utoa(a.Max) +
		" min:" + utoa(a.Min) +
		" avg:" + utoa(a.Mean) +
		" q:" + utoa(a.Quality) +
		" evts12:" + itoa(a.BothEdges) +
		" f:" + utoa(measured) +
		" pStat:" + utoa(uint32(res.Status)) +
		" pValue:" + utoa(uint32(res.PeriodMicros)))
	return res, a, nil
}

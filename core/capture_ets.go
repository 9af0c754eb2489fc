package core

import "picoscope/protocol"

const (
	ETSTimeoutMillis        = 4000
	ETSTriggerTimeoutMillis = 50

	// SpikeThreshold is the largest accepted step, in counts, between
	// consecutive ETS samples
	SpikeThreshold = 10

	ETSStatusOK      = 100
	ETSStatusTimeout = 101

	noSample = -1
)

// CaptureETS builds an equivalent-time record of a periodic signal: one
// conversion per rising trigger edge, each taken a little later after the
// edge than the previous one. channel is 1 or 2 and selects both the ADC
// input and its trigger; triggerChannel is accepted for command symmetry.
//
// On success the payload is followed by {ETSStatusOK, period ns}. If the
// record is not complete within ETSTimeoutMillis the payload is all zero
// and the trailer is {ETSStatusTimeout, 0}.
func (o *Oscilloscope) CaptureETS(channel uint8, numSamples, nanosBetweenSamples uint16, triggerChannel uint8) error {
	if channel != 1 && channel != 2 {
		return ErrInvalidChannel
	}
	total := int(numSamples)
	if total > MaxSamples {
		return ErrTooManySamples
	}

	if !o.acquire() {
		return ErrScopeBusy
	}
	defer o.release()

	adc := MustADC()
	input := o.adcFor(channel)
	pin := o.triggerFor(channel)
	if err := adc.ConfigureChannel(input); err != nil {
		return err
	}

	count, bix := 0, 0
	last := noSample
	start := GetTime()
	for count != total && GetTime()-start < ETSTimeoutMillis*1000 {
		if o.collect(pin, ModeETS, 0, 1, ETSTriggerTimeoutMillis) {
			continue
		}

		// The sampling point slides later by one delay step per accepted sample
		adc.SpinDelay(uint16(count))
		v, err := adc.ReadRaw(input)
		if err != nil {
			continue
		}
		sample := int(v)
		if last != noSample && absDiff(sample, last) > SpikeThreshold {
			RecordTiming(EvtETSSpike, channel, GetTime(), uint32(sample), uint32(last))
			last = sample
			continue
		}
		last = sample

		o.samples[count] = uint16(sample)
		bix += protocol.PutSample(o.tx[bix:], uint16(sample))
		count++
	}

	if count != total {
		RecordTiming(EvtETSTimeout, channel, GetTime(), uint32(count), uint32(total))
		payload := o.tx[:total*protocol.SampleSize]
		for i := range payload {
			payload[i] = 0
		}
		if err := o.write(payload); err != nil {
			return err
		}
		n := protocol.PutTrailer(o.tx[:], ETSStatusTimeout, 0)
		return o.write(o.tx[:n])
	}

	if err := o.write(o.tx[:bix]); err != nil {
		return err
	}
	period := ETSPeriod(o.samples[:total], nanosBetweenSamples)
	n := protocol.PutTrailer(o.tx[:], ETSStatusOK, period)
	if err := o.write(o.tx[:n]); err != nil {
		return err
	}

	RecordTiming(EvtCaptureDone, channel, GetTime(), uint32(total), ETSStatusOK)
	return nil
}

// ETSPeriod estimates the signal period, in ns, from the distance between
// two upward crossings of the sample mean. The second crossing is searched
// from at least three samples past the first. Returns 0 when the record
// holds fewer than two crossings; saturates at 0xFFFF.
func ETSPeriod(samples []uint16, nanosBetweenSamples uint16) uint16 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	var sum uint32
	for _, s := range samples {
		sum += uint32(s)
	}
	avg := uint16(sum / uint32(n))

	s1 := risingCross(samples, 1, avg)
	if s1 >= n {
		return 0
	}
	s2 := risingCross(samples, s1+3, avg)
	if s2 >= n {
		return 0
	}
	return saturate16(uint64(s2-s1) * uint64(nanosBetweenSamples))
}

// risingCross returns the first index i >= from with samples[i-1] <= avg
// and samples[i] >= avg, or len(samples)
func risingCross(samples []uint16, from int, avg uint16) int {
	i := from
	for ; i < len(samples); i++ {
		if samples[i-1] <= avg && samples[i] >= avg {
			break
		}
	}
	return i
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

package core

import "picoscope/protocol"

const (
	// ChannelBoth captures channels 1 and 2 via the ADC round-robin
	ChannelBoth = 3

	adcClockMHz  = 48
	maxClockDiv  = 0xFFFF << 8 // 16-bit integer part, 8-bit fraction
	adcFracShift = 8
)

// ADCClockDivider converts the requested spacing of one sample (or of
// one sample pair in round-robin) into the 16.8 fixed-point ADC divider.
func ADCClockDivider(microsBetweenSamples uint16, roundRobin bool) uint32 {
	// 48 ADC clocks per µs, halved when two inputs share the period
	div := uint32(microsBetweenSamples) * adcClockMHz
	if roundRobin {
		div /= 2
	}
	div <<= adcFracShift
	if div > maxClockDiv {
		div = maxClockDiv
	}
	return div
}

// CaptureBasic phase-locks to the trigger, fills the sample buffer by DMA
// and transmits the packed samples followed by the trigger trailer.
// channel is 1, 2 or ChannelBoth; triggerChannel is only honoured for
// ChannelBoth. A trailer status of PeriodTimeout means the payload is
// stale.
func (o *Oscilloscope) CaptureBasic(channel uint8, numSamples, microsBetweenSamples uint16, triggerChannel uint8) error {
	var req BlockCapture
	var pin GPIOPin
	switch channel {
	case 1, 2:
		req.First = o.adcFor(channel)
		pin = o.triggerFor(channel)
	case ChannelBoth:
		req.First, req.Second, req.Dual = o.cfg.Ch1ADC, o.cfg.Ch2ADC, true
		pin = o.triggerFor(triggerChannel)
	default:
		return ErrInvalidChannel
	}

	total := int(numSamples) * req.Inputs()
	if total > MaxSamples {
		return ErrTooManySamples
	}
	req.Count = total
	req.ClockDiv = ADCClockDivider(microsBetweenSamples, req.RoundRobin())

	if !o.acquire() {
		return ErrScopeBusy
	}
	defer o.release()

	res, _ := o.waitForTrigger(pin)

	if err := MustADC().CaptureBlock(req, o.samples[:total]); err != nil {
		RecordTiming(EvtCaptureError, channel, GetTime(), uint32(total), 0)
		DebugPrintln("[OSC] block capture: " + err.Error())
	}

	n := protocol.PackSamples(o.tx[:], o.samples[:total])
	if err := o.write(o.tx[:n]); err != nil {
		return err
	}
	n = protocol.PutTrailer(o.tx[:], uint16(res.Status), res.PeriodMicros)
	if err := o.write(o.tx[:n]); err != nil {
		return err
	}

	RecordTiming(EvtCaptureDone, channel, GetTime(), uint32(total), uint32(res.Status))
	return nil
}

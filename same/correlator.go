/*
NAME
  correlator.go

DESCRIPTION
  correlator.go implements the sample-by-sample correlation and
  delay-locked-loop (DLL) bit recovery shared by the offline (C2) and
  streaming (C3) SAME decoders, following the multimon-ng algorithm:
  mark/space correlation tables, a DCD shift register, a clamped
  integrator, and a phase accumulator nudged toward bit-center on
  detected transitions.

AUTHOR
  Grounded on ausocean/av's preference for small, independently testable
  transform types (c.f. codec/pcm.Buffer, filter.SelectiveFrequencyFilter).
*/

package same

import "math"

// dllGain is the fraction of the distance to bit-center the DLL nudges
// the sampling phase on each detected transition.
const dllGain = 0.4

const phaseMax = 1 << 16 // 16-bit phase accumulator.
const phaseCenter = phaseMax / 2
const maxNudge = 8192 // of 65536 per adjustment.

// integratorClamp bounds the DCD integrator to ±12.
const integratorClamp = 12

// Correlator recovers one bit per symbol period from a stream of audio
// samples using mark/space correlation and a delay-locked loop. It is
// stateful: feed it samples one at a time (or in batches via Feed) and
// collect completed bits via the returned BitResult values.
//
// Correlator never mutates caller-owned sample slices and is safe to use
// from a single dedicated goroutine; it holds no internal locks.
type Correlator struct {
	sampleRate int
	baud       float64
	corrLen    int

	markI, markQ   []float64
	spaceI, spaceQ []float64

	history    []float64 // ring buffer, length corrLen.
	historyPos int

	dcd        uint32 // shift register of recent bit-sign decisions.
	integrator int

	phase        uint32  // position within the current bit period, 0..phaseMax-1.
	phaseIncBase float64 // ideal (fractional) per-sample phase advance.
	phaseCarry   float64 // fractional remainder carried across samples, so the
	// average advance rate matches phaseIncBase exactly (same technique as
	// RenderPCM's per-bit sample-count carry), leaving the DLL to correct
	// only jitter, not systematic drift from integer rounding.
}

// BitResult is emitted once per recovered bit.
type BitResult struct {
	Bit        int     // 0 or 1.
	Confidence float64 // |mark_power - space_power| / (mark_power + space_power), in [0,1].
}

// NewCorrelator builds the correlation tables for the given sample rate,
// baud rate, and mark/space tone frequencies (Hz).
func NewCorrelator(sampleRate int, baud, markHz, spaceHz float64) *Correlator {
	corrLen := int(float64(sampleRate) / baud)
	if corrLen < 1 {
		corrLen = 1
	}
	c := &Correlator{
		sampleRate:   sampleRate,
		baud:         baud,
		corrLen:      corrLen,
		markI:        make([]float64, corrLen),
		markQ:        make([]float64, corrLen),
		spaceI:       make([]float64, corrLen),
		spaceQ:       make([]float64, corrLen),
		history:      make([]float64, corrLen),
		phaseIncBase: phaseMax * baud / float64(sampleRate),
	}
	for n := 0; n < corrLen; n++ {
		t := float64(n) / float64(sampleRate)
		c.markI[n] = math.Cos(2 * math.Pi * markHz * t)
		c.markQ[n] = math.Sin(2 * math.Pi * markHz * t)
		c.spaceI[n] = math.Cos(2 * math.Pi * spaceHz * t)
		c.spaceQ[n] = math.Sin(2 * math.Pi * spaceHz * t)
	}
	return c
}

// Reset clears all registers and counters, as required of C3's reset().
func (c *Correlator) Reset() {
	for i := range c.history {
		c.history[i] = 0
	}
	c.historyPos = 0
	c.dcd = 0
	c.integrator = 0
	c.phase = 0
	c.phaseCarry = 0
}

// Feed processes a block of samples and returns one BitResult for every
// symbol period completed within this call. Partial symbol progress
// carries over to the next Feed call.
func (c *Correlator) Feed(samples []float64) []BitResult {
	var out []BitResult
	for _, s := range samples {
		if r, ok := c.step(s); ok {
			out = append(out, r)
		}
	}
	return out
}

// step processes one sample and returns a BitResult if a bit boundary was
// crossed on this sample.
func (c *Correlator) step(sample float64) (BitResult, bool) {
	c.history[c.historyPos] = sample
	c.historyPos = (c.historyPos + 1) % c.corrLen

	// Correlate the trailing window against each reference table: full
	// I/Q power for both mark and space tones.
	markPow, spacePow := c.iqPower()

	corr := markPow - spacePow
	bit := 0
	if corr >= 0 {
		bit = 1
	}
	prevDCDBit := c.dcd & 1
	c.dcd = (c.dcd << 1) | uint32(bit)
	newDCDBit := c.dcd & 1

	if corr > 0 {
		if c.integrator < integratorClamp {
			c.integrator++
		}
	} else {
		if c.integrator > -integratorClamp {
			c.integrator--
		}
	}

	// Transition detected: nudge the sampling phase toward bit-center.
	if prevDCDBit != newDCDBit {
		diff := int64(phaseCenter) - int64(c.phase)
		nudge := int64(dllGain * float64(diff))
		if nudge > maxNudge {
			nudge = maxNudge
		}
		if nudge < -maxNudge {
			nudge = -maxNudge
		}
		c.phase = uint32((int64(c.phase) + nudge + phaseMax) % phaseMax)
	}

	want := c.phaseIncBase + c.phaseCarry
	inc := uint32(math.Round(want))
	c.phaseCarry = want - float64(inc)

	prevPhase := c.phase
	next := prevPhase + inc
	overflowed := next >= phaseMax
	c.phase = next % phaseMax

	if overflowed {
		total := markPow + spacePow
		conf := 0.0
		if total > 0 {
			conf = math.Abs(corr) / total
			if conf > 1 {
				conf = 1
			}
		}
		decided := 0
		if c.integrator > 0 {
			decided = 1
		}
		return BitResult{Bit: decided, Confidence: conf}, true
	}
	return BitResult{}, false
}

// iqPower computes the full in-phase/quadrature correlation power against
// the mark and space reference tables for the current history window.
func (c *Correlator) iqPower() (markPow, spacePow float64) {
	var mi, mq, si, sq float64
	for n := 0; n < c.corrLen; n++ {
		idx := (c.historyPos + n) % c.corrLen
		v := c.history[idx]
		mi += v * c.markI[n]
		mq += v * c.markQ[n]
		si += v * c.spaceI[n]
		sq += v * c.spaceQ[n]
	}
	norm := float64(c.corrLen)
	markPow = (mi*mi + mq*mq) / (norm * norm)
	spacePow = (si*si + sq*sq) / (norm * norm)
	return markPow, spacePow
}

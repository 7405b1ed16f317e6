/*
NAME
  goertzel.go

DESCRIPTION
  goertzel.go implements the Goertzel bit-slicing fallback decoder, used
  when the correlation/DLL primary path (same.Correlator) detects no
  bursts: slice audio into bit-length windows, let Goertzel power at mark
  vs. space decide each bit, frame/score across a baud sweep, and keep
  the best-scoring candidate.

AUTHOR
  Goertzel's power formula is a compact recursive single-bin DFT with no
  natural library counterpart in the retrieval pack (go-dsp's fft package
  does not expose a single-bin kernel); implemented directly against
  math per DESIGN.md's stdlib-justification note.
*/

package samedecode

import (
	"math"

	"github.com/samestation/eas/same"
)

// baudSweepDeltas are the fractional baud offsets to try when the base
// baud rate fails to decode cleanly: ±0.5% to ±4% in eight steps.
var baudSweepDeltas = []float64{-0.04, -0.02, -0.01, -0.005, 0.005, 0.01, 0.02, 0.04}

// goertzelPower returns the Goertzel power of samples at targetHz, given
// sampleRate.
func goertzelPower(samples []float64, targetHz float64, sampleRate int) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	k := int(0.5 + float64(n)*targetHz/float64(sampleRate))
	w := 2 * math.Pi * float64(k) / float64(n)
	cosine := math.Cos(w)
	coeff := 2 * cosine

	var s0, s1, s2 float64
	for _, x := range samples {
		s0 = x + coeff*s1 - s2
		s2 = s1
		s1 = s0
	}
	power := s1*s1 + s2*s2 - coeff*s1*s2
	return power / float64(n*n)
}

// decodeAtBaud slices samples into windows of one bit each at the given
// baud and decides each bit by comparing Goertzel power at mark vs space,
// then feeds the resulting bit stream through an Assembler exactly as
// the primary path does.
func decodeAtBaud(samples []float64, sampleRate int, baud float64) (bursts []same.Message, frameCount, frameErrors int64) {
	windowLen := int(float64(sampleRate) / baud)
	if windowLen < 1 {
		return nil, 0, 0
	}
	asm := same.NewAssembler()
	for start := 0; start+windowLen <= len(samples); start += windowLen {
		win := samples[start : start+windowLen]
		markPow := goertzelPower(win, same.MarkFreq, sampleRate)
		spacePow := goertzelPower(win, same.SpaceFreq, sampleRate)
		bit := 0
		if markPow >= spacePow {
			bit = 1
		}
		total := markPow + spacePow
		conf := 0.0
		if total > 0 {
			conf = math.Abs(markPow-spacePow) / total
			if conf > 1 {
				conf = 1
			}
		}
		if msg, ok := asm.ProcessBit(bit, conf); ok {
			bursts = append(bursts, msg)
		}
	}
	return bursts, asm.FrameCount, asm.FrameErrors
}

// runGoertzelFallback tries the base baud and a sweep of candidate bauds,
// scoring each by frame_count - 2*frame_errors + 500*header_count, and
// returns the best-scoring candidate's bursts.
func runGoertzelFallback(samples []float64, sampleRate int) (bursts []same.Message, frameCount, frameErrors int64) {
	type candidate struct {
		baud           float64
		bursts         []same.Message
		frames, errors int64
		score          float64
	}

	try := func(baud float64) candidate {
		b, f, e := decodeAtBaud(samples, sampleRate, baud)
		headerCount := 0
		for _, m := range b {
			if m.Text != "NNNN" {
				headerCount++
			}
		}
		score := float64(f) - 2*float64(e) + 500*float64(headerCount)
		return candidate{baud: baud, bursts: b, frames: f, errors: e, score: score}
	}

	best := try(same.Baud)
	for _, delta := range baudSweepDeltas {
		c := try(same.Baud * (1 + delta))
		if c.score > best.score {
			best = c
		}
	}

	return best.bursts, best.frames, best.errors
}

/*
NAME
  resample.go

DESCRIPTION
  resample.go downmixes multi-channel WAV data to mono and resamples it
  to the decoder's target sample rate when FFmpeg was not used. This uses
  gonum's piecewise-linear interpolator as a pure-Go polyphase-resampling
  stand-in.

AUTHOR
  New: uses gonum.org/v1/gonum for piecewise-linear interpolation rather
  than hand-rolled arithmetic.
*/

package samedecode

import (
	"bytes"
	"io"

	"github.com/go-audio/audio"
	"gonum.org/v1/gonum/interp"
)

// downmixMono averages all channels of buf into a single mono slice of
// samples in [-1, 1].
func downmixMono(buf *audio.IntBuffer) []float64 {
	fb := buf.AsFloatBuffer()
	nc := fb.Format.NumChannels
	if nc <= 1 {
		return fb.Data
	}
	n := len(fb.Data) / nc
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < nc; c++ {
			sum += fb.Data[i*nc+c]
		}
		out[i] = sum / float64(nc)
	}
	return out
}

// resample converts samples from sourceRate to targetRate Hz using
// piecewise-linear interpolation. It is a pure-Go stand-in for polyphase
// resampling, used as the fallback when FFmpeg is unavailable.
func resample(samples []float64, sourceRate, targetRate int) []float64 {
	if sourceRate == targetRate || len(samples) < 2 {
		return samples
	}

	xs := make([]float64, len(samples))
	for i := range samples {
		xs[i] = float64(i) / float64(sourceRate)
	}
	duration := xs[len(xs)-1]

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, samples); err != nil {
		// Degenerate input (e.g. non-increasing xs, which cannot happen
		// here since xs is strictly increasing); return the original
		// samples rather than fail the whole decode.
		return samples
	}

	outN := int(duration*float64(targetRate)) + 1
	out := make([]float64, outN)
	for i := 0; i < outN; i++ {
		t := float64(i) / float64(targetRate)
		if t > duration {
			t = duration
		}
		out[i] = pl.Predict(t)
	}
	return out
}

// newByteReader wraps a byte slice (e.g. ffmpeg's stdout) as an io.Reader
// suitable for wav.NewDecoder.
func newByteReader(b []byte) io.Reader { return bytes.NewReader(b) }

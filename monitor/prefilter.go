/*
NAME
  prefilter.go

DESCRIPTION
  prefilter.go implements the scan worker's cheap pre-filter: FFT the
  first ~2s of a snapshot with a Hann window and sum the power around
  the NWS/EBS attention tones and the mark/space FSK tones. A snapshot
  that clears neither threshold is not worth the cost of a full decode.

AUTHOR
  Grounded on codec/pcm/filters.go's go-dsp fft/window usage
  (window.Hann, fft.FFTReal).
*/

package monitor

import (
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/samestation/eas/same"
)

const (
	prefilterWindowSeconds = 2.0
	attentionToneEBSLowHz  = 853.0
	attentionToneEBSHighHz = 960.0
)

// passesPrefilter reports whether snapshot carries enough energy near
// the attention tones or the SAME mark/space tones to justify a full
// decode, relative to threshold (a fraction of total bin energy).
func passesPrefilter(snapshot []float64, sampleRate int, threshold float64) bool {
	n := int(prefilterWindowSeconds * float64(sampleRate))
	if n > len(snapshot) {
		n = len(snapshot)
	}
	if n < 2 {
		return false
	}
	windowed := make([]float64, n)
	win := window.Hann(n)
	for i := 0; i < n; i++ {
		windowed[i] = snapshot[i] * win[i]
	}

	spectrum := fft.FFTReal(windowed)
	bins := len(spectrum)/2 + 1

	var total, attention, fsk float64
	for k := 0; k < bins; k++ {
		power := real(spectrum[k])*real(spectrum[k]) + imag(spectrum[k])*imag(spectrum[k])
		total += power
		hz := float64(k) * float64(sampleRate) / float64(n)
		if nearHz(hz, attentionToneEBSLowHz, sampleRate, n) || nearHz(hz, attentionToneEBSHighHz, sampleRate, n) {
			attention += power
		}
		if nearHz(hz, same.MarkFreq, sampleRate, n) || nearHz(hz, same.SpaceFreq, sampleRate, n) {
			fsk += power
		}
	}
	if total <= 0 {
		return false
	}
	return attention/total >= threshold || fsk/total >= threshold
}

// nearHz reports whether hz falls within one FFT bin's width of target.
func nearHz(hz, target float64, sampleRate, n int) bool {
	binWidth := float64(sampleRate) / float64(n)
	diff := hz - target
	if diff < 0 {
		diff = -diff
	}
	return diff <= binWidth
}

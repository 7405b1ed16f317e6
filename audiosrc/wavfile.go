/*
NAME
  wavfile.go

DESCRIPTION
  wavfile.go implements a Source that replays a WAV file, optionally
  looping, used for decoder testing and field replay without live
  hardware.

AUTHOR
  Grounded on ausocean/av's exp/flac/decode.go go-audio/wav read pattern.
*/

package audiosrc

import (
	"os"
	"sync"

	"github.com/go-audio/wav"
)

// WAVFile is a Source that replays a pre-loaded WAV file's samples,
// downmixed to mono, optionally looping back to the start when
// exhausted. WAVFile is safe for concurrent use.
type WAVFile struct {
	name string
	loop bool

	mu      sync.Mutex
	samples []float64
	pos     int
	done    bool
}

// OpenWAVFile loads path fully into memory as mono float samples. If
// loop is true, ReadAudio wraps around to the start instead of
// signalling exhaustion.
func OpenWAVFile(path string, loop bool) (*WAVFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}

	fb := buf.AsFloatBuffer()
	nc := fb.Format.NumChannels
	var mono []float64
	if nc <= 1 {
		mono = fb.Data
	} else {
		n := len(fb.Data) / nc
		mono = make([]float64, n)
		for i := 0; i < n; i++ {
			var sum float64
			for c := 0; c < nc; c++ {
				sum += fb.Data[i*nc+c]
			}
			mono[i] = sum / float64(nc)
		}
	}

	return &WAVFile{name: path, loop: loop, samples: mono}, nil
}

// ReadAudio implements Source.
func (w *WAVFile) ReadAudio(n int) ([]float64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.done || len(w.samples) == 0 {
		return nil, false
	}

	remaining := len(w.samples) - w.pos
	if remaining <= 0 {
		if w.loop {
			w.pos = 0
			remaining = len(w.samples)
		} else {
			w.done = true
			return nil, false
		}
	}

	count := n
	if count > remaining {
		count = remaining
	}
	out := make([]float64, count)
	copy(out, w.samples[w.pos:w.pos+count])
	w.pos += count
	if !w.loop && w.pos >= len(w.samples) {
		w.done = true
	}
	return out, true
}

// GetActiveSource implements Source.
func (w *WAVFile) GetActiveSource() (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done {
		return "", false
	}
	return w.name, true
}

// Reset rewinds playback to the start of the file.
func (w *WAVFile) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pos = 0
	w.done = false
}

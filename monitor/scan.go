/*
NAME
  scan.go

DESCRIPTION
  scan.go implements one scan worker: a cheap FFT pre-filter over the
  snapshot, and on a pass, a full window decode via samedecode, archiving
  and the alert pathway.

AUTHOR
  Grounded on codec/pcm/filters.go's go-dsp fft/window usage, adapted
  from filtering PCM in place to scoring a snapshot for attention-tone
  and FSK energy.
*/

package monitor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/samestation/eas/samedecode"
)

// runScan is one ephemeral scan worker: pre-filter, decode on a pass,
// hand off to the alert pathway, and always decrement activeScans on
// exit regardless of how the scan concluded.
func (m *Monitor) runScan(snapshot []float64) {
	defer m.wg.Done()
	start := time.Now()
	defer func() {
		dur := time.Since(start)
		m.mu.Lock()
		m.scansPerformed++
		m.lastScanAt = time.Now()
		m.activeScans--
		m.scanDurations = append(m.scanDurations, dur)
		if len(m.scanDurations) > 20 {
			m.scanDurations = m.scanDurations[len(m.scanDurations)-20:]
		}
		m.mu.Unlock()
		m.tune(dur)
	}()

	if !passesPrefilter(snapshot, m.cfg.SampleRate, m.cfg.PrefilterThreshold) {
		m.l.Debug("monitor: snapshot discarded by pre-filter")
		return
	}

	wavBytes, err := encodeSnapshotWAV(snapshot, m.cfg.SampleRate)
	if err != nil {
		m.l.Error("monitor: encoding snapshot WAV", "error", err)
		return
	}

	result, err := samedecode.Decode(bytes.NewReader(wavBytes), samedecode.Options{SampleRate: m.cfg.SampleRate})
	if err != nil {
		m.l.Error("monitor: decoding snapshot", "error", err)
		return
	}
	if len(result.Headers) == 0 {
		return
	}

	var archivePath *string
	if m.cfg.SaveAudio && m.cfg.ArchiveDir != "" {
		path, err := archiveSnapshot(m.cfg.ArchiveDir, wavBytes, start)
		if err != nil {
			m.l.Error("monitor: archiving snapshot", "error", err)
		} else {
			archivePath = &path
		}
	}

	for _, h := range result.Headers {
		m.handleDecodedHeader(h.RawText, result.MeanConfidence, time.Now(), archivePath)
	}
}

// encodeSnapshotWAV renders a mono float snapshot as 16-bit PCM WAV
// bytes via go-audio/wav.
func encodeSnapshotWAV(samples []float64, sampleRate int) ([]byte, error) {
	ws := &memWriteSeeker{}
	enc := wav.NewEncoder(ws, sampleRate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		v := s * 32767
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		data[i] = int(v)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return ws.buf, nil
}

// archiveSnapshot writes wavBytes to ArchiveDir under a deterministic
// timestamped filename and returns its path.
func archiveSnapshot(dir string, wavBytes []byte, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_scan.wav", at.UTC().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, wavBytes, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// memWriteSeeker is an in-memory io.WriteSeeker driving wav.Encoder,
// matching the pattern ausocean/av's exp/flac decoder uses.
type memWriteSeeker struct {
	buf []byte
	pos int
}

func (w *memWriteSeeker) Write(p []byte) (int, error) {
	end := w.pos + len(p)
	if end > len(w.buf) {
		grown := make([]byte, end)
		copy(grown, w.buf)
		w.buf = grown
	}
	copy(w.buf[w.pos:end], p)
	w.pos = end
	return len(p), nil
}

func (w *memWriteSeeker) Seek(offset int64, whence int) (int64, error) {
	var newPos int
	switch whence {
	case io.SeekStart:
		newPos = int(offset)
	case io.SeekCurrent:
		newPos = w.pos + int(offset)
	case io.SeekEnd:
		newPos = len(w.buf) + int(offset)
	}
	w.pos = newPos
	return int64(newPos), nil
}

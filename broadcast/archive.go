/*
NAME
  archive.go

DESCRIPTION
  archive.go writes a rendered broadcast to a WAV file under the station's
  archive directory using a deterministic, timestamped filename.

AUTHOR
  Grounded on ausocean/av's exp/flac/decode.go (go-audio/wav write
  pattern via an in-memory io.WriteSeeker, mirrored here).
*/

package broadcast

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/samestation/eas/easerr"
)

// ArchiveFilename returns the deterministic archive filename for a
// broadcast of event at originator, issued at t (UTC):
// YYYYMMDD_HHMMSS_<ORIG>-<EVENT>.wav.
func ArchiveFilename(originator, event string, t time.Time) string {
	return fmt.Sprintf("%s_%s-%s.wav", t.UTC().Format("20060102_150405"), originator, event)
}

// EncodeWAV renders r's samples as mono 16-bit PCM WAV bytes.
func EncodeWAV(r Result) ([]byte, error) {
	ws := &memWriteSeeker{}
	enc := wav.NewEncoder(ws, r.SampleRate, 16, 1, 1)
	data := make([]int, len(r.Samples))
	for i, s := range r.Samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: r.SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("broadcast: writing WAV: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("broadcast: closing WAV encoder: %w", err)
	}
	return ws.buf, nil
}

// Archive writes r to dir under its deterministic filename and returns
// the full path. originator and event name the broadcast for the
// filename; t is the issue time used to stamp it.
func Archive(dir string, r Result, originator, event string, t time.Time) (string, error) {
	wavBytes, err := EncodeWAV(r)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", easerr.New(easerr.StorageError, err)
	}
	path := filepath.Join(dir, ArchiveFilename(originator, event, t))
	if err := os.WriteFile(path, wavBytes, 0o644); err != nil {
		return "", easerr.New(easerr.StorageError, err)
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

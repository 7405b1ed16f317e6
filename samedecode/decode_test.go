package samedecode

import (
	"bytes"
	"io"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/samestation/eas/same"
)

// memWriteSeeker is an in-memory io.WriteSeeker, matching the pattern
// ausocean/av's exp/flac decoder uses to drive wav.Encoder without a real
// file.
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

// encodeMonoWAV16 encodes signed 16-bit PCM samples as a mono WAV file.
func encodeMonoWAV16(t *testing.T, samples []int16, sampleRate int) []byte {
	t.Helper()
	ws := &memWriteSeeker{}
	enc := wav.NewEncoder(ws, sampleRate, 16, 1, 1)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encoding test WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing test WAV encoder: %v", err)
	}
	return ws.buf
}

func TestDecodeRecoversEncodedHeader(t *testing.T) {
	h := same.Header{
		Originator:  "EAS",
		Event:       "RWT",
		Locations:   []same.Location{{Code: "039137"}},
		PurgeOffset: "+0015",
		IssueTime:   "1231200",
		Callsign:    "KLOL/FM",
	}
	pcm, err := same.Encode(h, PreferredSampleRate, 16000)
	if err != nil {
		t.Fatalf("same.Encode: %v", err)
	}
	wavBytes := encodeMonoWAV16(t, pcm, PreferredSampleRate)

	result, err := Decode(bytes.NewReader(wavBytes), Options{})
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if len(result.Headers) == 0 {
		t.Fatal("no headers decoded from synthesized WAV")
	}
	got := result.Headers[0]
	if got.Originator != "EAS" || got.Event != "RWT" {
		t.Errorf("decoded header = %+v, want Originator=EAS Event=RWT", got)
	}
	if len(got.Locations) != 1 || got.Locations[0].Code != "039137" {
		t.Errorf("decoded locations = %+v, want [039137]", got.Locations)
	}
	if got.Locations[0].Description == "" {
		t.Error("expected fips description to be filled in for a known county code")
	}
}

func TestDecodeNoSignalReturnsEmptyResult(t *testing.T) {
	silence := make([]int16, PreferredSampleRate) // 1s of silence.
	wavBytes := encodeMonoWAV16(t, silence, PreferredSampleRate)

	result, err := Decode(bytes.NewReader(wavBytes), Options{})
	if err != nil {
		t.Fatalf("Decode returned error on pure silence: %v", err)
	}
	if len(result.Headers) != 0 {
		t.Errorf("expected no headers from silence, got %+v", result.Headers)
	}
	if result.FrameCount != 0 && result.MeanConfidence != 0 {
		t.Errorf("expected zero confidence on a no-signal result, got %+v", result)
	}
}

func TestDecodeEmptyAudioReturnsError(t *testing.T) {
	wavBytes := encodeMonoWAV16(t, nil, PreferredSampleRate)
	_, err := Decode(bytes.NewReader(wavBytes), Options{})
	if err == nil {
		t.Fatal("expected error decoding empty audio, got nil")
	}
}

func TestByteWiseVotePicksMajority(t *testing.T) {
	candidates := []string{
		"ZCZC-EAS-RWT-039137+0015-1231200-KLOL/FM-",
		"ZCZC-EAS-RWT-039137+0015-1231200-KLOL/FM-",
		"ZCZC-EAS-RWX-039137+0015-1231200-KLOL/FM-", // one corrupted byte.
	}
	got := byteWiseVote(candidates)
	want := "ZCZC-EAS-RWT-039137+0015-1231200-KLOL/FM-"
	if got != want {
		t.Errorf("byteWiseVote = %q, want %q", got, want)
	}
}

package audiosrc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

func writeTestWAV(t *testing.T, samples []int, sampleRate int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating test WAV: %v", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("writing test WAV: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("closing test WAV: %v", err)
	}
	return path
}

func TestWAVFileReadAudioNoLoop(t *testing.T) {
	path := writeTestWAV(t, []int{100, 200, 300, 400, 500}, 8000)
	src, err := OpenWAVFile(path, false)
	if err != nil {
		t.Fatalf("OpenWAVFile: %v", err)
	}

	first, ok := src.ReadAudio(3)
	if !ok || len(first) != 3 {
		t.Fatalf("first ReadAudio(3) = %v, %v", first, ok)
	}
	second, ok := src.ReadAudio(3)
	if !ok || len(second) != 2 {
		t.Fatalf("second ReadAudio(3) = %v, %v, want 2 remaining samples", second, ok)
	}
	if _, ok := src.ReadAudio(3); ok {
		t.Error("expected exhausted non-looping source to return ok=false")
	}
}

func TestWAVFileReadAudioLoops(t *testing.T) {
	path := writeTestWAV(t, []int{1000, 2000, 3000}, 8000)
	src, err := OpenWAVFile(path, true)
	if err != nil {
		t.Fatalf("OpenWAVFile: %v", err)
	}

	var total int
	for i := 0; i < 5; i++ {
		samples, ok := src.ReadAudio(2)
		if !ok {
			t.Fatalf("looping source returned ok=false on iteration %d", i)
		}
		total += len(samples)
	}
	// A read stops at the end of the file and the next read starts over, so
	// the reads return 2, 1, 2, 1, 2 samples.
	if total != 8 {
		t.Errorf("total samples read = %d, want 8", total)
	}
}

func TestWAVFileGetActiveSource(t *testing.T) {
	path := writeTestWAV(t, []int{1, 2, 3}, 8000)
	src, err := OpenWAVFile(path, false)
	if err != nil {
		t.Fatalf("OpenWAVFile: %v", err)
	}
	name, ok := src.GetActiveSource()
	if !ok || name != path {
		t.Errorf("GetActiveSource = %q, %v, want %q, true", name, ok, path)
	}

	src.ReadAudio(100) // exhaust the 3-sample file in one read.
	if _, ok := src.GetActiveSource(); ok {
		t.Error("expected GetActiveSource to report inactive once exhausted")
	}
}

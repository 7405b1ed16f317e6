package selftest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/samestation/eas/same"
)

func writeHeaderWAV(t *testing.T, dir, name string, h same.Header, sampleRate int) string {
	t.Helper()
	pcm, err := same.Encode(h, sampleRate, 16000)
	if err != nil {
		t.Fatalf("same.Encode: %v", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	data := make([]int, len(pcm))
	for i, s := range pcm {
		data[i] = int(s)
	}
	buf := &audio.IntBuffer{Format: &audio.Format{NumChannels: 1, SampleRate: sampleRate}, Data: data, SourceBitDepth: 16}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encoder write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("encoder close: %v", err)
	}
	return path
}

func testHeader(locCode string) same.Header {
	return same.Header{
		Originator:  "EAS",
		Event:       "RWT",
		Locations:   []same.Location{{Code: locCode}},
		PurgeOffset: "+0015",
		IssueTime:   "1231200",
		Callsign:    "KLOL/FM",
	}
}

func TestRunForwardsMatchedAlert(t *testing.T) {
	dir := t.TempDir()
	path := writeHeaderWAV(t, dir, "a.wav", testHeader("039137"), 22050)

	reports := Run([]string{path}, Options{ConfiguredFIPSCodes: []string{"039137"}})
	if len(reports) != 1 {
		t.Fatalf("len(reports) = %d, want 1", len(reports))
	}
	r := reports[0]
	if r.Status != StatusForwarded {
		t.Errorf("Status = %q, want forwarded (reason: %s, error: %s)", r.Status, r.Reason, r.Error)
	}
	if r.EventCode != "RWT" {
		t.Errorf("EventCode = %q, want RWT", r.EventCode)
	}
}

func TestRunFiltersUnmatchedJurisdiction(t *testing.T) {
	dir := t.TempDir()
	path := writeHeaderWAV(t, dir, "a.wav", testHeader("039137"), 22050)

	reports := Run([]string{path}, Options{ConfiguredFIPSCodes: []string{"000001"}})
	if reports[0].Status != StatusFiltered {
		t.Errorf("Status = %q, want filtered", reports[0].Status)
	}
}

func TestRunSuppressesDuplicateWithinList(t *testing.T) {
	dir := t.TempDir()
	h := testHeader("039137")
	path1 := writeHeaderWAV(t, dir, "a.wav", h, 22050)
	path2 := writeHeaderWAV(t, dir, "b.wav", h, 22050)

	reports := Run([]string{path1, path2}, Options{ConfiguredFIPSCodes: []string{"039137"}})
	if reports[0].Status != StatusForwarded {
		t.Errorf("first report Status = %q, want forwarded", reports[0].Status)
	}
	if reports[1].Status != StatusDuplicateSuppressed {
		t.Errorf("second report Status = %q, want duplicate_suppressed", reports[1].Status)
	}
}

func TestRunReportsDecodeErrorForMissingFile(t *testing.T) {
	reports := Run([]string{"/nonexistent/path.wav"}, Options{})
	if reports[0].Status != StatusDecodeError {
		t.Errorf("Status = %q, want decode_error", reports[0].Status)
	}
	if reports[0].Error == "" {
		t.Error("expected a non-empty Error message")
	}
}

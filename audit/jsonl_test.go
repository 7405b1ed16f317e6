package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/samestation/eas/gpio"
)

func TestJSONLSinkRecordsAlertAndGPIOEvent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "audit.jsonl")
	sink := NewJSONLSink(path)
	defer sink.Close()

	id, err := sink.RecordAlert(AlertRecord{RawText: "ZCZC-EAS-RWT-039137+0015-1231200-KLOL/FM-", Event: "RWT"})
	if err != nil {
		t.Fatalf("RecordAlert: %v", err)
	}
	if id == "" {
		t.Error("RecordAlert returned an empty id")
	}

	if err := sink.RecordGPIOEvent(gpio.Event{Pin: 17, Success: true}); err != nil {
		t.Fatalf("RecordGPIOEvent: %v", err)
	}
	sink.Close()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening audit file: %v", err)
	}
	defer f.Close()

	var lines []record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("unmarshaling line %q: %v", sc.Text(), err)
		}
		lines = append(lines, r)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Kind != "alert" || lines[0].Alert == nil || lines[0].Alert.Event != "RWT" {
		t.Errorf("first record = %+v, want an alert record with Event=RWT", lines[0])
	}
	if lines[1].Kind != "gpio_event" || lines[1].GPIOEvent == nil || lines[1].GPIOEvent.Pin != 17 {
		t.Errorf("second record = %+v, want a gpio_event record for pin 17", lines[1])
	}
}

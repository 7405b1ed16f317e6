/*
NAME
  jsonl.go

DESCRIPTION
  jsonl.go implements a default Sink that appends one JSON object per
  line to a rotated log file, for stations with no external persistence
  collaborator.

AUTHOR
  Grounded on cmd/speaker/main.go's lumberjack.Logger construction
  (Filename/MaxSize/MaxBackups/MaxAge), repurposed from free-text log
  lines to structured JSON audit records.
*/

package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"github.com/samestation/eas/gpio"
)

// JSONLSink defaults.
const (
	defaultMaxSizeMB  = 50
	defaultMaxBackups = 10
	defaultMaxAgeDays = 90
)

// record is the on-disk envelope: a Kind discriminator plus whichever
// payload applies.
type record struct {
	Kind      string       `json:"kind"` // "alert" or "gpio_event".
	Timestamp time.Time    `json:"timestamp"`
	Alert     *AlertRecord `json:"alert,omitempty"`
	GPIOEvent *gpio.Event  `json:"gpio_event,omitempty"`
}

// JSONLSink is a file-backed Sink: one JSON record per line, rotated via
// lumberjack.
type JSONLSink struct {
	mu     sync.Mutex
	out    *lumberjack.Logger
	nextID int64
}

// NewJSONLSink opens (or creates) path as a rotated JSON-lines audit log.
func NewJSONLSink(path string) *JSONLSink {
	return &JSONLSink{
		out: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    defaultMaxSizeMB,
			MaxBackups: defaultMaxBackups,
			MaxAge:     defaultMaxAgeDays,
		},
	}
}

// RecordAlert appends rec as a JSON line and returns a locally-unique
// identifier the caller may attach to a related GPIO or broadcast record.
func (s *JSONLSink) RecordAlert(rec AlertRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := fmt.Sprintf("alert-%d", s.nextID)
	return id, s.writeLocked(record{Kind: "alert", Timestamp: time.Now(), Alert: &rec})
}

// RecordGPIOEvent appends ev as a JSON line, satisfying gpio.AuditSink.
func (s *JSONLSink) RecordGPIOEvent(ev gpio.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(record{Kind: "gpio_event", Timestamp: time.Now(), GPIOEvent: &ev})
}

// writeLocked marshals rec and appends it plus a newline. Caller must
// hold s.mu.
func (s *JSONLSink) writeLocked(rec record) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("audit: marshaling record: %w", err)
	}
	line = append(line, '\n')
	_, err = s.out.Write(line)
	return err
}

// Close flushes and closes the underlying log file.
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Close()
}

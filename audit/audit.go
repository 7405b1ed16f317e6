/*
NAME
  audit.go

DESCRIPTION
  audit.go defines the persistence interface for alert and GPIO
  activation records. The core pipeline only requires insert-append
  semantics and an optional update to stamp deactivation time; the exact
  storage schema belongs to whatever sink is injected.

AUTHOR
  New: interface grounded in the small-interface style used elsewhere in
  this module for injected collaborators (e.g. audiosrc.Source, gpio's
  digitalPin), rather than constructing storage internally.
*/

// Package audit defines the persisted-state interface for forwarded
// alerts and GPIO activation events, plus a default JSON-lines sink.
package audit

import (
	"time"

	"github.com/samestation/eas/gpio"
)

// AlertRecord is one forwarded, jurisdiction-matched alert, as persisted
// by a Sink.
type AlertRecord struct {
	RawText       string
	Originator    string
	Event         string
	AlertFIPS     []string
	MatchedFIPS   []string
	Confidence    float64
	DecodedAt     time.Time
	Archived      bool
	ArchivePath   string
	BroadcastPath string
}

// Sink persists alert and GPIO activation records. It embeds
// gpio.AuditSink so a Controller can be handed a Sink directly.
type Sink interface {
	gpio.AuditSink
	// RecordAlert persists rec and returns an identifier the caller may
	// attach to subsequent related records (e.g. the broadcast or GPIO
	// activation it triggered). An empty identifier is valid.
	RecordAlert(rec AlertRecord) (id string, err error)
}

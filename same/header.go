/*
NAME
  header.go

DESCRIPTION
  header.go defines the SAME header value type and the grammar parser
  described by the FCC SAME header format:

    ZCZC-ORG-EEE-PSSCCC(-PSSCCC){0,30}+TTTT-JJJHHMM-LLLLLLLL-

AUTHOR
  Derived from the ausocean/av codec packages' struct-with-Validate style.
*/

// Package same provides the SAME header value type, its on-air grammar,
// and the AFSK/bit-framing codec (C1) used to both render and recognise
// SAME bursts.
package same

import (
	"fmt"
	"strconv"
	"strings"
)

// Framing identifies which character framing a header was transmitted
// with. Certified encoders emit 8N1; some legacy equipment emits 7E1.
// See DESIGN.md's "7E1 vs 8N1" decision.
type Framing int

const (
	FramingUnknown Framing = iota
	Framing8N1
	Framing7E1
)

func (f Framing) String() string {
	switch f {
	case Framing8N1:
		return "8N1"
	case Framing7E1:
		return "7E1"
	default:
		return "unknown"
	}
}

// Location is one decoded SAME FIPS location code, PSSCCC, with an
// optional human-readable description filled in from a lookup table.
type Location struct {
	Code        string // six ASCII digits, PSSCCC.
	Description string // empty if the code is unknown.
}

// Header is the immutable, decoded representation of one SAME burst.
// RawText always starts with "ZCZC-" for a message header, or is exactly
// "NNNN" for an end-of-message marker.
type Header struct {
	RawText     string
	Originator  string // 3 chars: WXR, EAS, CIV, PEP, EAN, ...
	Event       string // 3 chars, e.g. TOR, RWT, CAE.
	Locations   []Location
	PurgeOffset string // +TTTT, HHMM.
	IssueTime   string // JJJHHMM.
	Callsign    string // 8 chars, space-padded.
	Framing     Framing
	Confidence  float64 // 0..1.
}

// IsEOM reports whether RawText is the end-of-message marker rather than
// a full header.
func (h Header) IsEOM() bool { return strings.HasPrefix(h.RawText, "NNNN") }

// Recognized SAME originator codes.
var validOriginators = map[string]bool{
	"WXR": true, "EAS": true, "CIV": true, "PEP": true, "EAN": true,
}

// Parse decodes raw SAME header text (without surrounding preamble bytes,
// but including the "ZCZC-" lead-in and trailing CR if present) into a
// Header. It returns an error if the text does not match the SAME header
// grammar.
//
// EOM bursts ("NNNN") parse into a bare Header with RawText set and all
// other fields empty.
func Parse(text string) (Header, error) {
	text = strings.TrimRight(text, "\r\n")

	if strings.HasPrefix(text, "NNNN") {
		return Header{RawText: "NNNN"}, nil
	}

	if !strings.HasPrefix(text, "ZCZC-") {
		return Header{}, fmt.Errorf("same: header does not start with ZCZC-: %q", text)
	}

	body := strings.TrimPrefix(text, "ZCZC-")
	body = strings.TrimSuffix(body, "-")

	plusIdx := strings.Index(body, "+")
	if plusIdx < 0 {
		return Header{}, fmt.Errorf("same: header missing '+' purge-offset separator")
	}
	if strings.Count(body, "+") != 1 {
		return Header{}, fmt.Errorf("same: header must contain exactly one '+'")
	}

	head := body[:plusIdx]  // ORG-EEE-PSSCCC(-PSSCCC)*
	tail := body[plusIdx+1:] // TTTT-JJJHHMM-LLLLLLLL

	headParts := strings.Split(head, "-")
	if len(headParts) < 3 {
		return Header{}, fmt.Errorf("same: header missing originator/event/location fields")
	}
	org := headParts[0]
	event := headParts[1]
	locParts := headParts[2:]
	if len(locParts) == 0 || len(locParts) > 31 {
		return Header{}, fmt.Errorf("same: must have 1..31 location codes, got %d", len(locParts))
	}

	if len(org) != 3 {
		return Header{}, fmt.Errorf("same: originator must be 3 chars, got %q", org)
	}
	if len(event) != 3 {
		return Header{}, fmt.Errorf("same: event code must be 3 chars, got %q", event)
	}

	locs := make([]Location, 0, len(locParts))
	for _, lp := range locParts {
		if !isSixDigits(lp) {
			return Header{}, fmt.Errorf("same: location code must be six digits, got %q", lp)
		}
		locs = append(locs, Location{Code: lp})
	}

	tailParts := strings.Split(tail, "-")
	if len(tailParts) != 3 {
		return Header{}, fmt.Errorf("same: expected TTTT-JJJHHMM-LLLLLLLL after '+', got %q", tail)
	}
	purge, issue, call := tailParts[0], tailParts[1], tailParts[2]
	if len(purge) != 4 {
		return Header{}, fmt.Errorf("same: purge offset must be HHMM, got %q", purge)
	}
	if len(issue) != 7 {
		return Header{}, fmt.Errorf("same: issue time must be JJJHHMM, got %q", issue)
	}
	if len(call) == 0 || len(call) > 8 {
		return Header{}, fmt.Errorf("same: callsign must be 1..8 chars, got %q", call)
	}

	// A non-EOM header contains exactly one '+' and at least 6 '-'
	// separators in the original text.
	if strings.Count(text, "-") < 6 {
		return Header{}, fmt.Errorf("same: header must contain at least 6 '-' separators")
	}

	return Header{
		RawText:     text,
		Originator:  org,
		Event:       event,
		Locations:   locs,
		PurgeOffset: "+" + purge,
		IssueTime:   issue,
		Callsign:    call,
	}, nil
}

func isSixDigits(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// EncodeText renders h back into canonical SAME header text, ignoring any
// Description fields (they are never transmitted on-air). EncodeText does
// not validate the semantic content of h's fields beyond length; use
// Parse(EncodeText(h)) to round-trip validate.
func EncodeText(h Header) (string, error) {
	if h.IsEOM() {
		return "NNNN", nil
	}
	if !validOriginators[h.Originator] {
		return "", fmt.Errorf("same: unknown originator %q", h.Originator)
	}
	if len(h.Event) != 3 {
		return "", fmt.Errorf("same: event code must be 3 chars")
	}
	if len(h.Locations) == 0 {
		return "", fmt.Errorf("same: at least one location code required")
	}
	var b strings.Builder
	b.WriteString("ZCZC-")
	b.WriteString(h.Originator)
	b.WriteString("-")
	b.WriteString(h.Event)
	for _, l := range h.Locations {
		if !isSixDigits(l.Code) {
			return "", fmt.Errorf("same: invalid location code %q", l.Code)
		}
		b.WriteString("-")
		b.WriteString(l.Code)
	}
	purge := strings.TrimPrefix(h.PurgeOffset, "+")
	if len(purge) != 4 {
		return "", fmt.Errorf("same: purge offset must be HHMM")
	}
	if len(h.IssueTime) != 7 {
		return "", fmt.Errorf("same: issue time must be JJJHHMM")
	}
	call := h.Callsign
	if len(call) > 8 {
		return "", fmt.Errorf("same: callsign must be <= 8 chars")
	}
	for len(call) < 8 {
		call += " "
	}
	b.WriteString("+")
	b.WriteString(purge)
	b.WriteString("-")
	b.WriteString(h.IssueTime)
	b.WriteString("-")
	b.WriteString(call)
	b.WriteString("-")
	return b.String(), nil
}

// StateOf returns the two-digit state portion (positions 1..2) of a
// six-digit SAME FIPS code, or an error if code is not six digits.
func StateOf(code string) (string, error) {
	if !isSixDigits(code) {
		return "", fmt.Errorf("same: invalid fips code %q", code)
	}
	return code[1:3], nil
}

// ParseOrdinalDay extracts the ordinal day-of-year (1..366) from a
// JJJHHMM issue time string.
func ParseOrdinalDay(issueTime string) (int, error) {
	if len(issueTime) != 7 {
		return 0, fmt.Errorf("same: issue time must be JJJHHMM, got %q", issueTime)
	}
	return strconv.Atoi(issueTime[:3])
}

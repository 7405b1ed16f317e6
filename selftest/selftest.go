/*
NAME
  selftest.go

DESCRIPTION
  selftest.go implements the self-test harness (component C10): it
  replays a list of canonical audio files through the offline decoder,
  the duplicate-suppression cache, and the jurisdiction filter, with no
  hardware involved, and reports a per-file status.

AUTHOR
  Grounded on ausocean/av's revid_test.go harness style: construct
  collaborators, run them against fixed inputs, assert on the resulting
  fields.
*/

// Package selftest exercises the decode-through-filter path (C2, C6, C9)
// against canonical audio files with no hardware, for use by the station
// binary's selftest subcommand and by an operator-facing verification UI.
package selftest

import (
	"time"

	"github.com/samestation/eas/dedup"
	"github.com/samestation/eas/fips"
	"github.com/samestation/eas/samedecode"
)

// Status is the outcome of replaying one audio file.
type Status string

const (
	StatusForwarded           Status = "forwarded"
	StatusFiltered            Status = "filtered"
	StatusDuplicateSuppressed Status = "duplicate_suppressed"
	StatusDecodeError         Status = "decode_error"
)

// Report is one file's self-test result.
type Report struct {
	Path             string
	Status           Status
	Reason           string
	EventCode        string
	Originator       string
	AlertFIPSCodes   []string
	MatchedFIPSCodes []string
	Confidence       float64
	DurationSeconds  float64
	RawText          string
	Duplicate        bool
	Error            string
}

// Options configures a self-test run.
type Options struct {
	ConfiguredFIPSCodes []string
	DedupCooldown       time.Duration // default dedup.DefaultCooldown.
	SampleRate          int           // default samedecode.PreferredSampleRate.
}

// Run replays each path in paths through DecodeFile, the dedup cache, and
// the jurisdiction filter, returning one Report per file in input order.
// A fresh dedup cache is used per Run so test-to-test state never leaks,
// but duplicate files within one Run's list will suppress each other.
func Run(paths []string, opts Options) []Report {
	cooldown := opts.DedupCooldown
	if cooldown <= 0 {
		cooldown = dedup.DefaultCooldown
	}
	cache := dedup.New(cooldown)

	reports := make([]Report, 0, len(paths))
	for _, path := range paths {
		reports = append(reports, runOne(path, opts, cache))
	}
	return reports
}

func runOne(path string, opts Options, cache *dedup.Cache) Report {
	decodeOpts := samedecode.Options{SampleRate: opts.SampleRate}
	result, err := samedecode.DecodeFile(path, decodeOpts)
	if err != nil {
		return Report{Path: path, Status: StatusDecodeError, Error: err.Error()}
	}
	if len(result.Headers) == 0 {
		return Report{
			Path:            path,
			Status:          StatusDecodeError,
			Reason:          "no SAME header recovered from audio",
			DurationSeconds: result.DurationSeconds,
		}
	}

	h := result.Headers[0]
	rep := Report{
		Path:            path,
		EventCode:       h.Event,
		Originator:      h.Originator,
		Confidence:      result.MeanConfidence,
		DurationSeconds: result.DurationSeconds,
		RawText:         h.RawText,
	}
	for _, loc := range h.Locations {
		rep.AlertFIPSCodes = append(rep.AlertFIPSCodes, loc.Code)
	}

	sig := dedup.Signature(h.RawText)
	if !cache.CheckAndInsert(sig) {
		rep.Status = StatusDuplicateSuppressed
		rep.Duplicate = true
		rep.Reason = "signature already seen within cooldown"
		return rep
	}

	matched := fips.Match(rep.AlertFIPSCodes, opts.ConfiguredFIPSCodes)
	rep.MatchedFIPSCodes = matched
	if len(matched) == 0 {
		rep.Status = StatusFiltered
		rep.Reason = "no configured FIPS code matched"
		return rep
	}

	rep.Status = StatusForwarded
	return rep
}

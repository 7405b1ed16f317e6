/*
NAME
  decode.go

DESCRIPTION
  decode.go implements the "decode" subcommand: a one-shot offline decode
  of a single audio file, for field debugging without standing up the
  continuous monitor.
*/

package main

import (
	"fmt"
	"os"

	"github.com/samestation/eas/samedecode"
	"github.com/samestation/eas/station/config"
)

// runDecode decodes path and prints every recovered header to stdout.
func runDecode(path string, cfg config.Config) {
	result, err := samedecode.DecodeFile(path, samedecode.Options{SampleRate: cfg.SampleRate})
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode: %v\n", err)
		os.Exit(1)
	}

	if len(result.Headers) == 0 {
		fmt.Println("no SAME header recovered")
		return
	}

	for _, h := range result.Headers {
		fmt.Printf("originator=%s event=%s callsign=%s issue=%s purge=%s text=%q\n",
			h.Originator, h.Event, h.Callsign, h.IssueTime, h.PurgeOffset, h.RawText)
		for _, loc := range h.Locations {
			fmt.Printf("  location code=%s description=%s\n", loc.Code, loc.Description)
		}
	}
	fmt.Printf("mean_confidence=%.3f duration_seconds=%.2f\n", result.MeanConfidence, result.DurationSeconds)
}

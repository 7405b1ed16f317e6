/*
NAME
  selftest_cmd.go

DESCRIPTION
  selftest_cmd.go implements the "selftest" subcommand: it replays a list
  of audio files through the selftest package and prints a one-line
  report per file, exiting non-zero if any file fails to decode.
*/

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/samestation/eas/selftest"
	"github.com/samestation/eas/station/config"
)

// runSelftest replays files through the decode/dedup/jurisdiction
// pipeline and prints a report for each.
func runSelftest(cfg config.Config, l logging.Logger, files []string) {
	if len(files) == 0 {
		l.Fatal("selftest requires at least one audio file path")
	}

	reports := selftest.Run(files, selftest.Options{
		ConfiguredFIPSCodes: cfg.ConfiguredFIPSCodes,
		DedupCooldown:       time.Duration(cfg.DuplicateCooldownSeconds * float64(time.Second)),
		SampleRate:          cfg.SampleRate,
	})

	failed := false
	for _, r := range reports {
		fmt.Printf("%s\tstatus=%s\tevent=%s\toriginator=%s\tmatched=%v\treason=%s\n",
			r.Path, r.Status, r.EventCode, r.Originator, r.MatchedFIPSCodes, r.Reason)
		if r.Status == selftest.StatusDecodeError {
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

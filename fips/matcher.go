/*
NAME
  matcher.go

DESCRIPTION
  matcher.go implements the FIPS/jurisdiction matcher (component C6): a
  pure function deciding which of an operator's configured SAME location
  codes are covered by a decoded alert's location codes, honoring the
  nationwide and statewide wildcards.

AUTHOR
  Table format follows the small constant-map style of ausocean/av's
  codec/codecutil package.
*/

// Package fips implements SAME FIPS code normalization, the jurisdiction
// matcher, and a small code-to-description lookup table.
package fips

import (
	"sort"
	"strings"
)

const (
	nationwide = "000000"
	codeLen    = 6
)

// Normalize strips non-digit characters from code, keeps the trailing
// six digits if longer, and zero-pads on the left to six digits. It
// returns ("", false) if the result would be empty.
func Normalize(code string) (string, bool) {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return "", false
	}
	if len(digits) > codeLen {
		digits = digits[len(digits)-codeLen:]
	}
	for len(digits) < codeLen {
		digits = "0" + digits
	}
	return digits, true
}

// state returns the two-digit state portion (positions 1..2) of a
// normalized six-digit code.
func state(code string) string { return code[1:3] }

// isStatewideWildcard reports whether code is of the form 0SS000: part
// digit 0, county 000, with any state SS.
func isStatewideWildcard(code string) bool {
	return code[0] == '0' && code[3:6] == "000"
}

// Match returns the sorted set of configured codes covered by alertCodes:
//   - a direct match covers the equal configured code;
//   - an alert code of 000000 covers every configured code;
//   - an alert code 0SS000 covers every configured code in state SS;
//   - the part-code digit (position 0) is otherwise ignored.
//
// Both inputs are normalized before matching; empty/unnormalizable codes
// are skipped. Match is invariant under reordering of either argument.
func Match(alertCodes, configuredCodes []string) []string {
	configured := make([]string, 0, len(configuredCodes))
	for _, c := range configuredCodes {
		if n, ok := Normalize(c); ok {
			configured = append(configured, n)
		}
	}

	matched := make(map[string]bool)
	for _, a := range alertCodes {
		n, ok := Normalize(a)
		if !ok {
			continue
		}
		switch {
		case n == nationwide:
			for _, c := range configured {
				matched[c] = true
			}
		case isStatewideWildcard(n):
			st := state(n)
			for _, c := range configured {
				if state(c) == st {
					matched[c] = true
				}
			}
		default:
			for _, c := range configured {
				if c[1:] == n[1:] {
					matched[c] = true
				}
			}
		}
	}

	out := make([]string, 0, len(matched))
	for c := range matched {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

package fips

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pgregory.net/rapid"
)

func TestMatchDirect(t *testing.T) {
	got := Match([]string{"039137"}, []string{"039137"})
	want := []string{"039137"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Match mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchMultiCountyNoMatch(t *testing.T) {
	got := Match([]string{"039003", "039051", "039069"}, []string{"039137"})
	if len(got) != 0 {
		t.Errorf("Match = %v, want empty", got)
	}
}

func TestMatchStatewideWildcard(t *testing.T) {
	got := Match([]string{"039000"}, []string{"039137", "018001"})
	want := []string{"039137"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Match mismatch (-want +got):\n%s", diff)
	}
}

func TestMatchNationwideWildcard(t *testing.T) {
	got := Match([]string{"000000"}, []string{"039137", "018001"})
	want := []string{"018001", "039137"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Match mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"39137", "039137", true},
		{"039137", "039137", true},
		{"PSS-CCC:039137", "039137", true},
		{"0391370", "391370", true}, // over-length: keep the trailing six digits
		{"", "", false},
		{"abc", "", false},
	}
	for _, c := range cases {
		got, ok := Normalize(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("Normalize(%q) = (%q,%v), want (%q,%v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

// TestMatchSubsetInvariant checks match(A, C) ⊆ C for arbitrary codes.
func TestMatchSubsetInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		configured := rapid.SliceOfN(rapid.StringMatching(`[0-9]{6}`), 0, 6).Draw(rt, "configured")
		alert := rapid.SliceOfN(rapid.StringMatching(`[0-9]{6}`), 0, 6).Draw(rt, "alert")
		got := Match(alert, configured)
		cset := make(map[string]bool)
		for _, c := range configured {
			n, ok := Normalize(c)
			if ok {
				cset[n] = true
			}
		}
		for _, g := range got {
			if !cset[g] {
				rt.Fatalf("Match returned %q not in configured set %v", g, configured)
			}
		}
	})
}

// TestMatchOrderInvariant checks match is invariant under reordering of
// either argument.
func TestMatchOrderInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		configured := rapid.SliceOfN(rapid.StringMatching(`[0-9]{6}`), 0, 6).Draw(rt, "configured")
		alert := rapid.SliceOfN(rapid.StringMatching(`[0-9]{6}`), 0, 6).Draw(rt, "alert")

		base := Match(alert, configured)
		sort.Strings(base)

		shuffledC := append([]string(nil), configured...)
		if len(shuffledC) > 1 {
			shuffledC[0], shuffledC[len(shuffledC)-1] = shuffledC[len(shuffledC)-1], shuffledC[0]
		}
		shuffledA := append([]string(nil), alert...)
		if len(shuffledA) > 1 {
			shuffledA[0], shuffledA[len(shuffledA)-1] = shuffledA[len(shuffledA)-1], shuffledA[0]
		}

		got := Match(shuffledA, shuffledC)
		sort.Strings(got)
		if diff := cmp.Diff(base, got); diff != "" {
			rt.Fatalf("reordering changed result (-want +got):\n%s", diff)
		}
	})
}

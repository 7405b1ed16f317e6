package same

import "testing"

func TestParseValid(t *testing.T) {
	text := "ZCZC-EAS-RWT-039137+0015-1231200-KLOL/FM -"
	h, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", text, err)
	}
	if h.Originator != "EAS" {
		t.Errorf("Originator = %q, want EAS", h.Originator)
	}
	if h.Event != "RWT" {
		t.Errorf("Event = %q, want RWT", h.Event)
	}
	if len(h.Locations) != 1 || h.Locations[0].Code != "039137" {
		t.Errorf("Locations = %+v, want [039137]", h.Locations)
	}
	if h.PurgeOffset != "+0015" {
		t.Errorf("PurgeOffset = %q, want +0015", h.PurgeOffset)
	}
}

func TestParseMultiCounty(t *testing.T) {
	text := "ZCZC-WXR-TOR-039003-039051-039069+0030-1231205-KXYZ    -"
	h, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(h.Locations) != 3 {
		t.Fatalf("got %d locations, want 3", len(h.Locations))
	}
}

func TestParseEOM(t *testing.T) {
	h, err := Parse("NNNN")
	if err != nil {
		t.Fatalf("Parse(NNNN) returned error: %v", err)
	}
	if !h.IsEOM() {
		t.Error("expected IsEOM() true")
	}
}

func TestParseInvalid(t *testing.T) {
	cases := []string{
		"",
		"garbage",
		"ZCZC-EAS-RWT-039137-1231200-KLOL/FM -", // missing '+'
		"ZCZC-EAS-RWT-03913+0015-1231200-KLOL-", // bad location length
	}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", c)
		}
	}
}

func TestEncodeParseRoundTrip(t *testing.T) {
	h := Header{
		Originator:  "EAS",
		Event:       "RWT",
		Locations:   []Location{{Code: "039137"}},
		PurgeOffset: "+0015",
		IssueTime:   "1231200",
		Callsign:    "KLOL/FM",
	}
	text, err := EncodeText(h)
	if err != nil {
		t.Fatalf("EncodeText returned error: %v", err)
	}
	got, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse(EncodeText(h)) returned error: %v", err)
	}
	if got.Originator != h.Originator || got.Event != h.Event || got.PurgeOffset != h.PurgeOffset {
		t.Errorf("round trip mismatch: got %+v, want fields from %+v", got, h)
	}
	if len(got.Locations) != 1 || got.Locations[0].Code != "039137" {
		t.Errorf("round trip location mismatch: %+v", got.Locations)
	}
}

func TestStateOf(t *testing.T) {
	s, err := StateOf("039137")
	if err != nil {
		t.Fatalf("StateOf returned error: %v", err)
	}
	if s != "39" {
		t.Errorf("StateOf(039137) = %q, want 39", s)
	}
}

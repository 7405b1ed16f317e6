package same

import "testing"

func TestAssemblerDecodesFramedHeader(t *testing.T) {
	text := "ZCZC-EAS-RWT-039137+0015-1231200-KLOL    -\r"
	bits := EncodeBits(text, Framing8N1)

	a := NewAssembler()
	var got []Message
	for _, b := range bits {
		if msg, ok := a.ProcessBit(b, 1.0); ok {
			got = append(got, msg)
		}
	}
	if len(got) != 1 {
		t.Fatalf("got %d messages, want 1: %+v", len(got), got)
	}
	h, err := Parse(got[0].Text)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", got[0].Text, err)
	}
	if h.Event != "RWT" || h.Originator != "EAS" {
		t.Errorf("decoded header = %+v, want Event=RWT Originator=EAS", h)
	}
}

func TestAssemblerDecodesEOM(t *testing.T) {
	bits := EncodeBits("NNNN", Framing8N1)
	a := NewAssembler()
	var got []Message
	for _, b := range bits {
		if msg, ok := a.ProcessBit(b, 1.0); ok {
			got = append(got, msg)
		}
	}
	if len(got) != 1 || got[0].Text != "NNNN" {
		t.Fatalf("got %+v, want one NNNN message", got)
	}
}

func TestAssemblerLosesSyncOnInvalidByte(t *testing.T) {
	bits := EncodeBits("ZCZC-EAS-RWT-039137+0015-1231200-KLOL    -\r", Framing8N1)
	// Corrupt a bit in the middle of the payload (well after preamble)
	// to force an invalid frame and confirm FrameErrors increments
	// without panicking.
	mid := len(bits) / 2
	bits[mid] ^= 1

	a := NewAssembler()
	for _, b := range bits {
		a.ProcessBit(b, 1.0)
	}
	if a.FrameErrors == 0 {
		t.Error("expected at least one frame error from corrupted bit")
	}
}

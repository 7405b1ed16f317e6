/*
NAME
  broadcast.go

DESCRIPTION
  broadcast.go implements the SAME/attention-tone broadcast generator
  (component C7): given a decoded header and a station identity, it
  renders a complete EAS broadcast as PCM samples — header burst ×3,
  attention tone, optional narration, and an EOM burst ×3 — with a
  segment map recording each span's sample offsets.

AUTHOR
  Grounded on ausocean/av's exp/flac/decode.go (go-audio/wav encode
  pattern, reused here for the WAV sink) and the same package's own
  RenderPCM/Encode (tone synthesis, burst repetition with silence).
*/

// Package broadcast renders and delivers complete EAS broadcasts: SAME
// header, attention tone, narration, and end-of-message, as a WAV file
// played locally and/or streamed to an Icecast sink.
package broadcast

import (
	"fmt"
	"math"

	"github.com/samestation/eas/same"
	"github.com/samestation/eas/samedecode"
)

// ToneKind selects which attention tone a broadcast uses.
type ToneKind int

const (
	// ToneEBS is the classic two-tone (853Hz + 960Hz summed) Emergency
	// Broadcast System attention signal.
	ToneEBS ToneKind = iota
	// ToneNWS is the single 1050Hz NOAA Weather Radio attention tone.
	ToneNWS
)

func (k ToneKind) String() string {
	if k == ToneNWS {
		return "NWS"
	}
	return "EBS"
}

// Attention tone frequencies.
const (
	ebsToneLowHz  = 853.0
	ebsToneHighHz = 960.0
	nwsToneHz     = 1050.0
)

// ToneTable maps a SAME event code to the attention tone it should carry.
// Codes absent from the table default to ToneEBS. See DESIGN.md's "EBS
// vs NWS attention tone mapping" decision.
var ToneTable = map[string]ToneKind{
	"EAN": ToneNWS,
	"NPT": ToneNWS,
	"RWT": ToneNWS,
	"RMT": ToneNWS,
}

// ToneFor returns the configured tone for event, falling back to
// overrides then ToneTable then ToneEBS.
func ToneFor(event string, overrides map[string]ToneKind) ToneKind {
	if overrides != nil {
		if k, ok := overrides[event]; ok {
			return k
		}
	}
	if k, ok := ToneTable[event]; ok {
		return k
	}
	return ToneEBS
}

// Config holds the station identity and rendering parameters for a
// broadcast.
type Config struct {
	OriginatorCode       string // 3 chars, used only for archive naming; the header itself carries its own originator.
	StationCallsign      string // up to 8 chars, space-padded on emit.
	SampleRate           int
	Amplitude            int16 // peak sample magnitude, default 24000.
	AttentionToneSeconds float64
	ToneOverrides        map[string]ToneKind
}

func (c *Config) setDefaults() {
	if c.SampleRate <= 0 {
		c.SampleRate = samedecode.PreferredSampleRate
	}
	if c.Amplitude <= 0 {
		c.Amplitude = 24000
	}
	if c.AttentionToneSeconds <= 0 {
		c.AttentionToneSeconds = 8.0
	}
}

// Result is a rendered broadcast: PCM samples plus the segment map
// recording each component's sample span.
type Result struct {
	Samples    []int16
	SampleRate int
	Segments   []samedecode.Segment
	Tone       ToneKind
}

// Build renders a complete broadcast for h: the framed header repeated
// three times, a one-second silence gap, the attention tone selected by
// event code, another one-second gap, narration (may be nil/empty,
// followed by its own one-second gap when present), and an EOM burst
// repeated three times.
func Build(h same.Header, narration []int16, cfg Config) (Result, error) {
	cfg.setDefaults()

	h.Callsign = padCallsign(cfg.StationCallsign, h.Callsign)

	headerBurst, err := same.Encode(h, cfg.SampleRate, cfg.Amplitude)
	if err != nil {
		return Result{}, fmt.Errorf("broadcast: encoding header burst: %w", err)
	}

	tone := ToneFor(h.Event, cfg.ToneOverrides)
	toneSamples := renderAttentionTone(tone, cfg.AttentionToneSeconds, cfg.SampleRate, cfg.Amplitude)

	eom := same.Header{RawText: "NNNN"}
	eomBurst, err := same.Encode(eom, cfg.SampleRate, cfg.Amplitude)
	if err != nil {
		return Result{}, fmt.Errorf("broadcast: encoding EOM burst: %w", err)
	}

	silence := make([]int16, cfg.SampleRate) // one second, per the inter-segment gap requirement.

	var out []int16
	var segs []samedecode.Segment

	start := len(out)
	out = append(out, headerBurst...)
	segs = append(segs, samedecode.Segment{Name: samedecode.SegmentHeader, StartSample: start, EndSample: len(out)})

	out = append(out, silence...)

	start = len(out)
	out = append(out, toneSamples...)
	segs = append(segs, samedecode.Segment{Name: samedecode.SegmentAttentionTone, StartSample: start, EndSample: len(out)})

	out = append(out, silence...)

	if len(narration) > 0 {
		start = len(out)
		out = append(out, narration...)
		segs = append(segs, samedecode.Segment{Name: samedecode.SegmentNarration, StartSample: start, EndSample: len(out)})

		out = append(out, silence...)
	}

	start = len(out)
	out = append(out, eomBurst...)
	segs = append(segs, samedecode.Segment{Name: samedecode.SegmentEOM, StartSample: start, EndSample: len(out)})

	return Result{Samples: out, SampleRate: cfg.SampleRate, Segments: segs, Tone: tone}, nil
}

// renderAttentionTone synthesizes seconds of the EBS two-tone signal
// (853Hz + 960Hz summed and normalized) or the NWS single 1050Hz tone.
func renderAttentionTone(kind ToneKind, seconds float64, sampleRate int, amplitude int16) []int16 {
	n := int(seconds * float64(sampleRate))
	out := make([]int16, n)
	twoPi := 2 * math.Pi
	switch kind {
	case ToneNWS:
		stepHi := twoPi * nwsToneHz / float64(sampleRate)
		phase := 0.0
		for i := 0; i < n; i++ {
			out[i] = int16(math.Sin(phase) * float64(amplitude))
			phase += stepHi
		}
	default: // ToneEBS.
		stepLo := twoPi * ebsToneLowHz / float64(sampleRate)
		stepHi := twoPi * ebsToneHighHz / float64(sampleRate)
		phaseLo, phaseHi := 0.0, 0.0
		for i := 0; i < n; i++ {
			s := (math.Sin(phaseLo) + math.Sin(phaseHi)) / 2
			out[i] = int16(s * float64(amplitude))
			phaseLo += stepLo
			phaseHi += stepHi
		}
	}
	return out
}

// padCallsign returns configured, right-padded to 8 chars, falling back
// to fromHeader if configured is empty.
func padCallsign(configured, fromHeader string) string {
	call := configured
	if call == "" {
		call = fromHeader
	}
	if len(call) > 8 {
		call = call[:8]
	}
	for len(call) < 8 {
		call += " "
	}
	return call
}

/*
NAME
  fsk.go

DESCRIPTION
  fsk.go implements the SAME on-air bit framing and AFSK tone rendering
  (component C1): start/data/parity/stop framing in both 7E1 and 8N1
  variants, the 0xAB preamble, and continuous-phase mark/space tone
  synthesis at 520 5/6 baud.

AUTHOR
  Derived from the ausocean/av codec packages' style (small pure
  transform functions, sentinel errors, explicit Buffer-like types).
*/

package same

import (
	"fmt"
	"math"
)

// On-air constants for SAME's AFSK tone pair and preamble.
const (
	Baud         = 3125.0 / 6.0   // ≈ 520.8333 bps.
	MarkFreq     = 6250.0 / 3.0   // ≈ 2083.333 Hz, bit 1.
	SpaceFreq    = 3125.0 / 2.0   // 1562.5 Hz, bit 0.
	PreambleByte = 0xAB
	PreambleReps = 16
)

// ErrBadStopBit indicates a framed byte's stop bit was not 1 under the
// attempted framing.
var ErrBadStopBit = fmt.Errorf("same: bad stop bit")

// ErrBadParity indicates a 7E1-framed byte failed its even-parity check.
var ErrBadParity = fmt.Errorf("same: bad parity")

// FrameByte returns the bit sequence (LSB of data first) for one framed
// character under the given framing: start bit 0, then either 7 data
// bits + even parity (7E1) or 8 data bits (8N1), then stop bit 1.
func FrameByte(b byte, f Framing) []int {
	switch f {
	case Framing7E1:
		bits := make([]int, 0, 10)
		bits = append(bits, 0) // start
		data := b & 0x7F
		ones := 0
		for i := 0; i < 7; i++ {
			bit := int((data >> i) & 1)
			bits = append(bits, bit)
			ones += bit
		}
		parity := ones % 2 // even parity: parity bit makes total ones even.
		bits = append(bits, parity)
		bits = append(bits, 1) // stop
		return bits
	default: // 8N1.
		bits := make([]int, 0, 10)
		bits = append(bits, 0) // start
		for i := 0; i < 8; i++ {
			bits = append(bits, int((b>>i)&1))
		}
		bits = append(bits, 1) // stop
		return bits
	}
}

// UnframeBits attempts to decode one framed character starting at bits[0]
// (the start bit) under framing f. It returns the decoded byte, the
// number of bits consumed, and an error if start/parity/stop checks fail.
func UnframeBits(bits []int, f Framing) (b byte, n int, err error) {
	switch f {
	case Framing7E1:
		if len(bits) < 10 {
			return 0, 0, fmt.Errorf("same: need 10 bits for 7E1 frame, got %d", len(bits))
		}
		if bits[0] != 0 {
			return 0, 0, fmt.Errorf("same: bad start bit")
		}
		var data byte
		ones := 0
		for i := 0; i < 7; i++ {
			bit := bits[1+i]
			data |= byte(bit) << i
			ones += bit
		}
		parityBit := bits[8]
		if parityBit != ones%2 {
			return 0, 0, ErrBadParity
		}
		if bits[9] != 1 {
			return 0, 0, ErrBadStopBit
		}
		return data, 10, nil
	default: // 8N1.
		if len(bits) < 10 {
			return 0, 0, fmt.Errorf("same: need 10 bits for 8N1 frame, got %d", len(bits))
		}
		if bits[0] != 0 {
			return 0, 0, fmt.Errorf("same: bad start bit")
		}
		var data byte
		for i := 0; i < 8; i++ {
			data |= byte(bits[1+i]) << i
		}
		if bits[9] != 1 {
			return 0, 0, ErrBadStopBit
		}
		return data, 10, nil
	}
}

// UnframeByte tries 8N1 first, then 7E1, and returns whichever framing
// yields a valid stop bit (and, for 7E1, valid parity). It returns the
// detected framing alongside the byte.
func UnframeByte(bits []int) (b byte, framing Framing, n int, err error) {
	if b8, n8, err8 := UnframeBits(bits, Framing8N1); err8 == nil {
		return b8, Framing8N1, n8, nil
	}
	if b7, n7, err7 := UnframeBits(bits, Framing7E1); err7 == nil {
		return b7, Framing7E1, n7, nil
	}
	return 0, FramingUnknown, 0, ErrBadStopBit
}

// EncodeBits renders the full framed bit sequence for a preamble plus an
// ASCII payload terminated by CR, i.e. one burst's worth of bits, using
// framing f for every character including the preamble bytes.
func EncodeBits(payload string, f Framing) []int {
	var bits []int
	for i := 0; i < PreambleReps; i++ {
		bits = append(bits, FrameByte(PreambleByte, f)...)
	}
	for i := 0; i < len(payload); i++ {
		bits = append(bits, FrameByte(payload[i], f)...)
	}
	bits = append(bits, FrameByte('\r', f)...)
	return bits
}

// RenderPCM synthesizes signed 16-bit PCM samples for the given bit
// sequence at sampleRate Hz, baud bps, mark/space tone frequencies in Hz,
// and amplitude (0..32767). Phase is continuous across bit boundaries and
// the cumulative sample-count slip per bit is zero: each bit's sample
// count is rounded to the nearest integer and the fractional remainder is
// carried to the next bit.
func RenderPCM(bits []int, sampleRate int, baud, markHz, spaceHz float64, amplitude int16) []int16 {
	samplesPerBit := float64(sampleRate) / baud
	var out []int16
	phase := 0.0
	carry := 0.0
	twoPi := 2 * math.Pi
	for _, bit := range bits {
		freq := spaceHz
		if bit == 1 {
			freq = markHz
		}
		want := samplesPerBit + carry
		n := int(math.Round(want))
		if n < 0 {
			n = 0
		}
		carry = want - float64(n)
		step := twoPi * freq / float64(sampleRate)
		for i := 0; i < n; i++ {
			s := math.Sin(phase)
			out = append(out, int16(s*float64(amplitude)))
			phase += step
			if phase > twoPi {
				phase -= twoPi
			}
		}
	}
	return out
}

// Encode renders h as one complete burst structure: the framed header (or
// EOM) repeated three times with ~1s of silence between repeats, as PCM
// samples at sampleRate Hz using 8N1 framing by default. amplitude sets
// the peak sample magnitude.
func Encode(h Header, sampleRate int, amplitude int16) ([]int16, error) {
	text, err := EncodeText(h)
	if err != nil {
		return nil, err
	}
	bits := EncodeBits(text, Framing8N1)
	burst := RenderPCM(bits, sampleRate, Baud, MarkFreq, SpaceFreq, amplitude)
	silence := make([]int16, sampleRate) // 1s.
	var out []int16
	for i := 0; i < 3; i++ {
		out = append(out, burst...)
		if i < 2 {
			out = append(out, silence...)
		}
	}
	return out, nil
}

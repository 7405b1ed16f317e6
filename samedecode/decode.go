/*
NAME
  decode.go

DESCRIPTION
  decode.go implements the offline SAME decoder (component C2): it takes
  a captured WAV buffer, runs the correlation/DLL primary path (shared
  with the streaming decoder via package same), falls back to a Goertzel
  bit-slicer with a baud sweep if the primary path finds nothing, and
  majority-votes 2-of-3 matching bursts into a single decoded header.

AUTHOR
  Grounded on ausocean/av's exp/flac/decode.go (go-audio/wav read/write
  pattern) and device/alsa/alsa.go (Setup/Config validation style).
*/

// Package samedecode implements the offline SAME decoder (C2): given a
// WAV audio buffer, it locates SAME bursts and returns a DecodeResult.
package samedecode

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"

	"github.com/samestation/eas/easerr"
	"github.com/samestation/eas/fips"
	"github.com/samestation/eas/same"
)

// PreferredSampleRate is the rate the decoder resamples to when no
// explicit rate is requested.
const PreferredSampleRate = 22050

// Segment names for the optional segment map.
const (
	SegmentPreamble      = "preamble"
	SegmentHeader        = "header"
	SegmentAttentionTone = "attention_tone"
	SegmentNarration     = "narration"
	SegmentEOM           = "eom"
)

// Segment is one labeled span of a decoded result, in samples.
type Segment struct {
	Name        string
	StartSample int
	EndSample   int
}

// Result is the offline decoder's output.
type Result struct {
	RawText         string
	Headers         []same.Header
	BitCount        int64
	FrameCount      int64
	FrameErrorCount int64
	DurationSeconds float64
	SampleRate      int
	MeanConfidence  float64
	MinConfidence   float64
	Segments        []Segment
}

// Options configures a Decode call.
type Options struct {
	// SampleRate, if non-zero, is used instead of PreferredSampleRate.
	SampleRate int
}

// DecodeFile decodes the WAV or MP3 file at path. MP3 files are
// transcoded to WAV via an external ffmpeg invocation; if ffmpeg is
// unavailable for a non-WAV file, the result is easerr.AudioUnavailable.
func DecodeFile(path string, opts Options) (Result, error) {
	if _, err := os.Stat(path); err != nil {
		return Result{}, easerr.New(easerr.InputMissing, err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".wav" {
		f, err := os.Open(path)
		if err != nil {
			return Result{}, easerr.New(easerr.InputMissing, err)
		}
		defer f.Close()
		return Decode(f, opts)
	}

	r, err := transcodeToWAV(path)
	if err != nil {
		return Result{}, easerr.New(easerr.AudioUnavailable, err)
	}
	return Decode(r, opts)
}

// transcodeToWAV shells out to ffmpeg to convert an arbitrary audio file
// (e.g. MP3) to a mono WAV stream on stdout, mirroring the os/exec usage
// in ausocean/av's cmd/speaker (aplay invocation).
func transcodeToWAV(path string) (io.Reader, error) {
	ffmpeg, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not available to transcode %s: %w", path, err)
	}
	cmd := exec.Command(ffmpeg, "-v", "error", "-i", path, "-f", "wav", "-ac", "1", "-ar",
		fmt.Sprintf("%d", PreferredSampleRate), "pipe:1")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg transcode failed: %w", err)
	}
	return newByteReader(out), nil
}

// Decode decodes WAV audio read from r.
func Decode(r io.Reader, opts Options) (Result, error) {
	targetRate := opts.SampleRate
	if targetRate == 0 {
		targetRate = PreferredSampleRate
	}

	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Result{}, easerr.New(easerr.InputMissing, fmt.Errorf("not a valid WAV file"))
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Result{}, easerr.New(easerr.AudioUnavailable, fmt.Errorf("reading PCM buffer: %w", err))
	}
	if buf == nil || len(buf.Data) == 0 {
		return Result{}, easerr.New(easerr.NoSignal, fmt.Errorf("empty audio"))
	}

	samples := downmixMono(buf)
	sourceRate := buf.Format.SampleRate
	if sourceRate != targetRate {
		samples = resample(samples, sourceRate, targetRate)
	}

	return decodeSamples(samples, targetRate)
}

// decodeSamples runs the primary correlation/DLL path over samples, and
// if it captures no bursts at all, falls back to the Goertzel slicer with
// a baud sweep.
func decodeSamples(samples []float64, sampleRate int) (Result, error) {
	if len(samples) == 0 {
		return Result{}, easerr.New(easerr.NoSignal, nil)
	}

	bursts, bitCount, frameCount, frameErrors := runPrimaryPath(samples, sampleRate)
	if len(bursts) == 0 {
		gbursts, gframes, gerrors := runGoertzelFallback(samples, sampleRate)
		bursts = gbursts
		frameCount += gframes
		frameErrors += gerrors
	}

	headerBursts, confN, confSum, confMin := voteBursts(bursts)

	var headers []same.Header
	var rawTexts []string
	for _, text := range headerBursts {
		h, err := same.Parse(text)
		if err != nil {
			continue
		}
		for i, loc := range h.Locations {
			h.Locations[i].Description = fips.Describe(loc.Code)
		}
		for _, b := range bursts {
			if b.Text == text {
				h.Framing = b.Framing
				break
			}
		}
		headers = append(headers, h)
		rawTexts = append(rawTexts, text)
	}

	meanConf := 0.0
	if confN > 0 {
		meanConf = confSum / float64(confN)
	}
	if confMin == 1e9 {
		confMin = 0
	}

	if len(headers) == 0 && len(bursts) == 0 {
		return Result{
			BitCount:        bitCount,
			FrameCount:      frameCount,
			FrameErrorCount: frameErrors,
			DurationSeconds: float64(len(samples)) / float64(sampleRate),
			SampleRate:      sampleRate,
		}, nil
	}

	for i := range headers {
		headers[i].Confidence = meanConf
	}

	return Result{
		RawText:         strings.Join(rawTexts, "\n"),
		Headers:         headers,
		BitCount:        bitCount,
		FrameCount:      frameCount,
		FrameErrorCount: frameErrors,
		DurationSeconds: float64(len(samples)) / float64(sampleRate),
		SampleRate:      sampleRate,
		MeanConfidence:  meanConf,
		MinConfidence:   confMin,
	}, nil
}

// runPrimaryPath feeds samples through a Correlator+Assembler pair and
// collects every captured burst of text (ZCZC headers and NNNN markers).
func runPrimaryPath(samples []float64, sampleRate int) (bursts []same.Message, bitCount, frameCount, frameErrors int64) {
	corr := same.NewCorrelator(sampleRate, same.Baud, same.MarkFreq, same.SpaceFreq)
	asm := same.NewAssembler()
	for _, r := range corr.Feed(samples) {
		if msg, ok := asm.ProcessBit(r.Bit, r.Confidence); ok {
			bursts = append(bursts, msg)
		}
	}
	return bursts, asm.BitCount, asm.FrameCount, asm.FrameErrors
}

// voteBursts majority-votes (2-of-3) matching ZCZC bursts and returns the
// winning header text(s) plus aggregate confidence stats across all
// recovered bursts' per-bit confidences.
func voteBursts(bursts []same.Message) (headerTexts []string, confN int, confSum, confMin float64) {
	confMin = 1e9
	groups := make(map[string][]same.Message)
	var order []string
	for _, b := range bursts {
		if b.Text == "NNNN" {
			continue
		}
		groups[b.Text] = append(groups[b.Text], b)
		seen := false
		for _, o := range order {
			if o == b.Text {
				seen = true
				break
			}
		}
		if !seen {
			order = append(order, b.Text)
		}
		for _, c := range b.Confidences {
			confSum += c
			confN++
			if c < confMin {
				confMin = c
			}
		}
	}

	// If any raw text occurs at least twice among the (up to 3) bursts,
	// that's our 2-of-3 vote winner; otherwise fall back to majority of
	// byte-wise voting across whatever bursts we have.
	best := ""
	bestCount := 0
	for _, text := range order {
		if len(groups[text]) > bestCount {
			best = text
			bestCount = len(groups[text])
		}
	}
	if best == "" {
		return nil, confN, confSum, confMin
	}
	if bestCount >= 2 || len(order) == 1 {
		return []string{best}, confN, confSum, confMin
	}

	// No exact 2-of-3 match: byte-wise vote across all distinct candidates
	// of the same (most common) length.
	voted := byteWiseVote(order)
	if voted != "" {
		return []string{voted}, confN, confSum, confMin
	}
	return []string{best}, confN, confSum, confMin
}

// byteWiseVote picks, for each byte position, the most common byte across
// candidates of the modal length.
func byteWiseVote(candidates []string) string {
	lengthCounts := make(map[int]int)
	for _, c := range candidates {
		lengthCounts[len(c)]++
	}
	modalLen, modalCount := 0, 0
	for l, n := range lengthCounts {
		if n > modalCount {
			modalLen, modalCount = l, n
		}
	}
	filtered := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if len(c) == modalLen {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		return ""
	}
	out := make([]byte, modalLen)
	for i := 0; i < modalLen; i++ {
		counts := make(map[byte]int)
		for _, c := range filtered {
			counts[c[i]]++
		}
		var bestByte byte
		bestN := -1
		for b, n := range counts {
			if n > bestN {
				bestByte, bestN = b, n
			}
		}
		out[i] = bestByte
	}
	return string(out)
}


/*
NAME
  alsa.go

DESCRIPTION
  alsa.go implements a live-capture Source backed by ALSA, adapted from
  ausocean/av's device/alsa package: the same ring-buffer capture
  goroutine and device-negotiation approach, repurposed to satisfy
  audiosrc.Source (float samples) instead of device.AVDevice (raw PCM
  bytes for a video-pipeline sender).

AUTHOR
  Adapted from device/alsa/alsa.go.
*/

package audiosrc

import (
	"errors"
	"fmt"
	"sync"
	"time"

	yalsa "github.com/yobert/alsa"

	"github.com/ausocean/utils/logging"
	"github.com/ausocean/utils/pool"
)

const (
	rbTimeout     = 100 * time.Millisecond
	rbNextTimeout = 100 * time.Millisecond
	rbLen         = 50

	defaultSampleRate = 16000
	defaultChannels   = 1
	defaultBitDepth   = 16
	defaultRecPeriod  = 0.1 // seconds; matches the monitor's ~100ms audio loop reads.
)

const (
	running = iota + 1
	paused
	stopped
)

// rates are common ALSA sample rates tried during negotiation, in
// ascending order, matching device/alsa's approach of preferring a rate
// cleanly divisible by the requested one.
var rates = [8]int{8000, 16000, 32000, 44100, 48000, 88200, 96000, 192000}

// ALSAConfig configures an ALSASource.
type ALSAConfig struct {
	Title      string // device title; empty selects the first recording device.
	SampleRate uint
	Channels   uint
	BitDepth   uint
	RecPeriod  float64 // seconds per captured chunk.
}

// ALSASource is a live-capture audiosrc.Source backed by ALSA. It runs a
// capture goroutine that reads from the device and writes raw PCM bytes
// into a ring buffer (pool.Buffer); ReadAudio drains that buffer and
// converts to normalized float samples.
type ALSASource struct {
	l   logging.Logger
	cfg ALSAConfig
	dev *yalsa.Device
	buf *pool.Buffer

	mu       sync.Mutex
	mode     uint8
	leftover []float64
}

// OpenALSA opens and configures the named ALSA recording device (or the
// first one found, if cfg.Title is empty) and starts its capture
// goroutine.
func OpenALSA(l logging.Logger, cfg ALSAConfig) (*ALSASource, error) {
	if cfg.SampleRate == 0 {
		cfg.SampleRate = defaultSampleRate
	}
	if cfg.Channels == 0 {
		cfg.Channels = defaultChannels
	}
	if cfg.BitDepth == 0 {
		cfg.BitDepth = defaultBitDepth
	}
	if cfg.RecPeriod <= 0 {
		cfg.RecPeriod = defaultRecPeriod
	}

	a := &ALSASource{l: l, cfg: cfg}
	if err := a.open(); err != nil {
		return nil, fmt.Errorf("audiosrc: opening ALSA device: %w", err)
	}

	chunkBytes := int(float64(cfg.SampleRate)*cfg.RecPeriod) * int(cfg.BitDepth/8) * int(cfg.Channels)
	a.buf = pool.NewBuffer(rbLen, chunkBytes, rbTimeout)
	a.mode = running
	go a.input()
	return a, nil
}

// open finds and negotiates the ALSA device's channels, rate, and
// format, following device/alsa.ALSA.open's approach.
func (a *ALSASource) open() error {
	cards, err := yalsa.OpenCards()
	if err != nil {
		return err
	}
	defer yalsa.CloseCards(cards)

	for _, card := range cards {
		devices, err := card.Devices()
		if err != nil {
			continue
		}
		for _, dev := range devices {
			if dev.Type != yalsa.PCM || !dev.Record {
				continue
			}
			if dev.Title == a.cfg.Title || a.cfg.Title == "" {
				a.dev = dev
				break
			}
		}
		if a.dev != nil {
			break
		}
	}
	if a.dev == nil {
		return errors.New("audiosrc: no ALSA recording device found")
	}

	if err := a.dev.Open(); err != nil {
		return err
	}

	channels, err := a.dev.NegotiateChannels(int(a.cfg.Channels))
	if err != nil && a.cfg.Channels == 1 {
		channels, err = a.dev.NegotiateChannels(2)
	}
	if err != nil {
		return fmt.Errorf("negotiating channels: %w", err)
	}
	a.cfg.Channels = uint(channels)

	var rate int
	found := false
	for _, r := range rates {
		if r < int(a.cfg.SampleRate) || r%int(a.cfg.SampleRate) != 0 {
			continue
		}
		if rate, err = a.dev.NegotiateRate(r); err == nil {
			found = true
			break
		}
	}
	if !found {
		if rate, err = a.dev.NegotiateRate(defaultSampleRate); err != nil {
			return fmt.Errorf("negotiating rate: %w", err)
		}
	}
	a.cfg.SampleRate = uint(rate)

	var fmtWant yalsa.FormatType
	switch a.cfg.BitDepth {
	case 16:
		fmtWant = yalsa.S16_LE
	case 32:
		fmtWant = yalsa.S32_LE
	default:
		return fmt.Errorf("unsupported bit depth %d", a.cfg.BitDepth)
	}
	if _, err := a.dev.NegotiateFormat(fmtWant); err != nil {
		return fmt.Errorf("negotiating format: %w", err)
	}

	periodSize, err := a.dev.NegotiatePeriodSize(int(float64(rate) * a.cfg.RecPeriod))
	if err != nil {
		return fmt.Errorf("negotiating period size: %w", err)
	}
	if _, err := a.dev.NegotiateBufferSize(periodSize * 4); err != nil {
		return fmt.Errorf("negotiating buffer size: %w", err)
	}

	return a.dev.Prepare()
}

// input continuously records audio in RecPeriod-sized chunks and writes
// the raw bytes into the ring buffer, re-opening the device on a read
// error as device/alsa's input loop does.
func (a *ALSASource) input() {
	period := time.Duration(a.cfg.RecPeriod * float64(time.Second))
	chunkBytes := int(float64(a.cfg.SampleRate)*a.cfg.RecPeriod) * int(a.cfg.BitDepth/8) * int(a.cfg.Channels)

	for {
		a.mu.Lock()
		mode := a.mode
		a.mu.Unlock()
		switch mode {
		case paused:
			time.Sleep(period)
			continue
		case stopped:
			if a.dev != nil {
				a.dev.Close()
				a.dev = nil
			}
			if err := a.buf.Close(); err != nil {
				a.l.Error("audiosrc: closing ring buffer", "error", err)
			}
			return
		}

		chunk := make([]byte, chunkBytes)
		if err := a.dev.Read(chunk); err != nil {
			a.l.Warning("audiosrc: ALSA read failed, reopening", "error", err)
			if err := a.open(); err != nil {
				a.l.Error("audiosrc: reopening ALSA device failed", "error", err)
				time.Sleep(period)
			}
			continue
		}

		if _, err := a.buf.Write(chunk); err != nil && !errors.Is(err, pool.ErrDropped) {
			a.l.Error("audiosrc: ring buffer write error", "error", err)
		}
	}
}

// ReadAudio implements audiosrc.Source, converting buffered S16_LE PCM
// to normalized mono float samples.
func (a *ALSASource) ReadAudio(n int) ([]float64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for len(a.leftover) < n {
		next, err := a.buf.Next(rbNextTimeout)
		if err != nil {
			break
		}
		samples := decodeS16LEMono(next.Bytes(), int(a.cfg.Channels))
		next.Close()
		a.leftover = append(a.leftover, samples...)
	}

	if len(a.leftover) == 0 {
		return nil, false
	}
	count := n
	if count > len(a.leftover) {
		count = len(a.leftover)
	}
	out := a.leftover[:count]
	a.leftover = a.leftover[count:]
	return out, true
}

// GetActiveSource implements audiosrc.Source.
func (a *ALSASource) GetActiveSource() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != running {
		return "", false
	}
	if a.cfg.Title != "" {
		return a.cfg.Title, true
	}
	return "alsa", true
}

// Stop stops the capture goroutine and closes the device.
func (a *ALSASource) Stop() {
	a.mu.Lock()
	a.mode = stopped
	a.mu.Unlock()
}

// decodeS16LEMono converts little-endian signed 16-bit PCM bytes (with
// the given channel count) into normalized mono float64 samples.
func decodeS16LEMono(b []byte, channels int) []float64 {
	if channels < 1 {
		channels = 1
	}
	frameBytes := 2 * channels
	n := len(b) / frameBytes
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			off := i*frameBytes + c*2
			v := int16(uint16(b[off]) | uint16(b[off+1])<<8)
			sum += float64(v) / 32768.0
		}
		out[i] = sum / float64(channels)
	}
	return out
}

/*
NAME
  monitor.go

DESCRIPTION
  monitor.go implements the continuous EAS monitor (component C5): a
  ring-buffered audio loop that runs the streaming decoder in-place,
  periodically snapshots the buffer for a window scan, self-tunes its
  scan cadence and concurrency, and recovers from stalls via a watchdog.

AUTHOR
  Grounded on ausocean/av/revid.Revid's Start/Stop/Running lifecycle and
  revid/pipeline.go's goroutine/waitgroup/stop-channel shape, generalized
  from "transcode and send video" to "ring-buffer audio, scan, dedupe,
  activate."
*/

// Package monitor implements the continuous EAS monitor (C5): it owns
// the audio ring buffer, the streaming and window-scan decode paths, the
// duplicate-suppression and jurisdiction-filtering alert pathway, and
// the watchdog that recovers from a stalled audio loop.
package monitor

import (
	"sync"
	"time"

	"github.com/ausocean/utils/logging"

	"github.com/samestation/eas/audiosrc"
	"github.com/samestation/eas/dedup"
	"github.com/samestation/eas/fips"
	"github.com/samestation/eas/samestream"
)

const (
	audioLoopPeriod   = 20 * time.Millisecond
	audioReadChunkSec = 0.1 // ~100ms chunks, per the continuous monitor's audio loop.
	watchdogPeriod    = 10 * time.Second
	watchdogTimeout   = 60 * time.Second
)

// Config holds the continuous monitor's construction parameters.
type Config struct {
	BufferSeconds       int     // default 12.
	ScanIntervalSeconds float64 // default 3 (75% overlap with a 12s buffer).
	SampleRate          int
	SaveAudio           bool
	ArchiveDir          string
	MaxConcurrentScans  int     // default 2.
	PrefilterThreshold  float64 // fraction of total energy, default 0.001.
	ConfiguredFIPSCodes []string
	DedupCooldown       time.Duration // default dedup.DefaultCooldown.
}

func (c *Config) setDefaults() {
	if c.BufferSeconds <= 0 {
		c.BufferSeconds = 12
	}
	if c.ScanIntervalSeconds <= 0 {
		c.ScanIntervalSeconds = 3
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.MaxConcurrentScans <= 0 {
		c.MaxConcurrentScans = 2
	}
	if c.PrefilterThreshold <= 0 {
		c.PrefilterThreshold = 0.001
	}
	if c.DedupCooldown <= 0 {
		c.DedupCooldown = dedup.DefaultCooldown
	}
}

// AlertRecord is handed to the alert callback for every non-duplicate
// decoded and jurisdiction-matched header.
type AlertRecord struct {
	RawText     string
	Originator  string
	Event       string
	AlertFIPS   []string
	MatchedFIPS []string
	Confidence  float64
	DecodedAt   time.Time
	Archived    bool
	ArchivePath string
}

// AlertCallback is invoked once per forwarded alert.
type AlertCallback func(AlertRecord)

// Status is an exported snapshot of the monitor's running state, for an
// operator UI.
type Status struct {
	Running             bool
	BufferUtilization   float64
	ScansPerformed      int64
	ScansSkipped        int64
	AlertsDetected      int64
	LastScanAt          time.Time
	LastAlertAt         time.Time
	ActiveScans         int
	MaxConcurrentScans  int
	LastActivity        time.Time
	RestartCount        int64
	MeanScanDuration    time.Duration
	CurrentScanInterval time.Duration
}

// Monitor is the continuous EAS monitor. Construct with New.
type Monitor struct {
	cfg    Config
	src    audiosrc.Source
	l      logging.Logger
	cache  *dedup.Cache
	stream *samestream.Decoder
	cb     AlertCallback

	ringMu      sync.Mutex
	ring        []float64
	writeCursor int
	wrapped     bool

	mu                 sync.Mutex
	running            bool
	stopCh             chan struct{}
	wg                 sync.WaitGroup
	activeScans        int
	maxConcurrentScans int
	scanInterval       time.Duration

	scansPerformed int64
	scansSkipped   int64
	alertsDetected int64
	lastScanAt     time.Time
	lastAlertAt    time.Time
	lastActivity   time.Time
	restartCount   int64
	scanDurations  []time.Duration
	lastTune       time.Time
}

// New constructs a Monitor reading from src and invoking cb on every
// forwarded alert. l must not be nil.
func New(cfg Config, src audiosrc.Source, cb AlertCallback, l logging.Logger) *Monitor {
	cfg.setDefaults()
	m := &Monitor{
		cfg:                cfg,
		src:                src,
		l:                  l,
		cb:                 cb,
		cache:              dedup.New(cfg.DedupCooldown),
		ring:               make([]float64, cfg.BufferSeconds*cfg.SampleRate),
		maxConcurrentScans: cfg.MaxConcurrentScans,
		scanInterval:       time.Duration(cfg.ScanIntervalSeconds * float64(time.Second)),
	}
	m.stream = samestream.New(cfg.SampleRate, m.onStreamMessage)
	return m
}

// Start launches the audio/scan loop and the watchdog. It is a no-op if
// already running.
func (m *Monitor) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.lastActivity = time.Now()
	m.mu.Unlock()

	m.l.Info("monitor: starting")
	m.wg.Add(2)
	go m.runAudioLoop(m.stopCh)
	go m.runWatchdog(m.stopCh)
}

// Stop signals the audio loop and watchdog to exit and waits for them.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stopCh)
	m.mu.Unlock()

	m.wg.Wait()
	m.l.Info("monitor: stopped")
}

// Running reports whether the monitor is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// GetStatus returns a snapshot of the monitor's running state.
func (m *Monitor) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ringMu.Lock()
	util := 0.0
	if m.wrapped {
		util = 1.0
	} else if len(m.ring) > 0 {
		util = float64(m.writeCursor) / float64(len(m.ring))
	}
	m.ringMu.Unlock()

	var meanDur time.Duration
	if len(m.scanDurations) > 0 {
		var sum time.Duration
		for _, d := range m.scanDurations {
			sum += d
		}
		meanDur = sum / time.Duration(len(m.scanDurations))
	}

	return Status{
		Running:             m.running,
		BufferUtilization:   util,
		ScansPerformed:      m.scansPerformed,
		ScansSkipped:        m.scansSkipped,
		AlertsDetected:      m.alertsDetected,
		LastScanAt:          m.lastScanAt,
		LastAlertAt:         m.lastAlertAt,
		ActiveScans:         m.activeScans,
		MaxConcurrentScans:  m.maxConcurrentScans,
		LastActivity:        m.lastActivity,
		RestartCount:        m.restartCount,
		MeanScanDuration:    meanDur,
		CurrentScanInterval: m.scanInterval,
	}
}

// writeRing appends chunk to the ring buffer, wrapping on overflow.
func (m *Monitor) writeRing(chunk []float64) {
	m.ringMu.Lock()
	defer m.ringMu.Unlock()
	n := len(m.ring)
	if n == 0 {
		return
	}
	for _, s := range chunk {
		m.ring[m.writeCursor] = s
		m.writeCursor++
		if m.writeCursor >= n {
			m.writeCursor = 0
			m.wrapped = true
		}
	}
}

// snapshotRing copies the ring buffer out in chronological order: cursor
// to end, then start to cursor.
func (m *Monitor) snapshotRing() []float64 {
	m.ringMu.Lock()
	defer m.ringMu.Unlock()
	n := len(m.ring)
	if !m.wrapped {
		out := make([]float64, m.writeCursor)
		copy(out, m.ring[:m.writeCursor])
		return out
	}
	out := make([]float64, n)
	copy(out, m.ring[m.writeCursor:])
	copy(out[n-m.writeCursor:], m.ring[:m.writeCursor])
	return out
}

// onStreamMessage is the streaming decoder's callback, feeding C3-path
// completions into the same alert pathway as window scans.
func (m *Monitor) onStreamMessage(rawText string, confidence float64, at time.Time, _ []float64) {
	if rawText == "" || rawText == "NNNN" {
		return
	}
	m.handleDecodedHeader(rawText, confidence, at, nil)
}

// handleDecodedHeader runs the alert pathway: signature, dedup check,
// jurisdiction match, callback.
func (m *Monitor) handleDecodedHeader(rawText string, confidence float64, at time.Time, archivePath *string) {
	sig := dedup.Signature(rawText)
	if !m.cache.CheckAndInsert(sig) {
		m.l.Debug("monitor: duplicate suppressed", "text", rawText)
		return
	}

	h, err := parseHeaderFields(rawText)
	if err != nil {
		m.l.Warning("monitor: decoded header failed to parse", "error", err, "text", rawText)
		return
	}

	matched := fips.Match(h.alertFIPS, m.cfg.ConfiguredFIPSCodes)
	if len(matched) == 0 {
		m.l.Debug("monitor: no jurisdiction match", "text", rawText)
		return
	}

	rec := AlertRecord{
		RawText:     rawText,
		Originator:  h.originator,
		Event:       h.event,
		AlertFIPS:   h.alertFIPS,
		MatchedFIPS: matched,
		Confidence:  confidence,
		DecodedAt:   at,
	}
	if archivePath != nil {
		rec.Archived = true
		rec.ArchivePath = *archivePath
	}

	m.mu.Lock()
	m.alertsDetected++
	m.lastAlertAt = at
	m.mu.Unlock()

	if m.cb != nil {
		m.cb(rec)
	}
}

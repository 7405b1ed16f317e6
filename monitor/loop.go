/*
NAME
  loop.go

DESCRIPTION
  loop.go implements the monitor's three long-running goroutines: the
  audio/scan loop that reads audio into the ring buffer and runs the
  streaming decoder in-place, the ephemeral scan workers it queues, and
  the watchdog that restarts a stalled audio loop.

AUTHOR
  Grounded on revid/pipeline.go's goroutine/waitgroup/stop-channel shape.
*/

package monitor

import (
	"time"
)

// runAudioLoop wakes every ~20ms, reads a chunk from the source into the
// ring buffer, runs the streaming decoder on it in place, and every
// scanInterval queues a window scan unless the concurrency limit is
// reached.
func (m *Monitor) runAudioLoop(stop chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(audioLoopPeriod)
	defer ticker.Stop()

	chunkSize := int(audioReadChunkSec * float64(m.cfg.SampleRate))
	var sinceLastScan time.Duration

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		samples, ok := m.src.ReadAudio(chunkSize)
		m.mu.Lock()
		m.lastActivity = time.Now()
		interval := m.scanInterval
		m.mu.Unlock()

		if ok && len(samples) > 0 {
			m.writeRing(samples)
			m.stream.ProcessSamples(samples)
		}

		sinceLastScan += audioLoopPeriod
		if sinceLastScan < interval {
			continue
		}
		sinceLastScan = 0
		m.maybeQueueScan()
	}
}

// maybeQueueScan snapshots the ring buffer and starts a scan worker,
// unless the monitor is already at its concurrency limit, in which case
// the scan is skipped and counted.
func (m *Monitor) maybeQueueScan() {
	m.mu.Lock()
	if m.activeScans >= m.maxConcurrentScans {
		m.scansSkipped++
		m.mu.Unlock()
		m.l.Debug("monitor: scan skipped, at concurrency limit")
		return
	}
	m.activeScans++
	m.mu.Unlock()

	snapshot := m.snapshotRing()
	m.wg.Add(1)
	go m.runScan(snapshot)
}

// runWatchdog checks the audio loop's activity heartbeat every 10s and
// restarts it if more than 60s have passed without one, surviving
// decoder hangs, source exceptions, and stalls of any other kind.
func (m *Monitor) runWatchdog(stop chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(watchdogPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		stalled := time.Since(m.lastActivity) > watchdogTimeout
		m.mu.Unlock()
		if !stalled {
			continue
		}

		m.l.Warning("monitor: audio loop stalled, restarting")
		m.mu.Lock()
		m.restartCount++
		m.lastActivity = time.Now()
		m.mu.Unlock()

		m.wg.Add(1)
		go m.runAudioLoop(stop)
	}
}

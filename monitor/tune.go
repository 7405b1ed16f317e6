/*
NAME
  tune.go

DESCRIPTION
  tune.go implements the monitor's self-tuning control law: after at
  least 10 scans, it recomputes the scan interval from the rolling mean
  scan duration and adjusts max_concurrent_scans from the skip rate since
  the monitor started, gated by a cooldown to prevent oscillation.

AUTHOR
  Grounded on revid/pipeline.go's bitrate-feedback style (adjust a
  runtime parameter from a rolling measurement, not a fixed schedule).
*/

package monitor

import "time"

const (
	minScansBeforeTuning = 10
	scanIntervalFactor   = 1.15
	minScanInterval      = 1500 * time.Millisecond
	maxScanInterval      = 8 * time.Second
	maxDynamicScans      = 8
	minDynamicScans      = 1
	tuneCooldown         = 30 * time.Second
	highSkipRateThresh   = 0.05
	fastScanFraction     = 0.60
)

// tune re-evaluates the scan interval and concurrency limit after a scan
// completes, per the self-tuning control law. durLastScan is the
// duration of the scan that just finished.
func (m *Monitor) tune(durLastScan time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.scansPerformed < minScansBeforeTuning {
		return
	}
	if time.Since(m.lastTune) < tuneCooldown {
		return
	}

	var sum time.Duration
	for _, d := range m.scanDurations {
		sum += d
	}
	mean := sum / time.Duration(len(m.scanDurations))

	optimal := time.Duration(float64(mean) * scanIntervalFactor)
	if optimal < minScanInterval {
		optimal = minScanInterval
	}
	if optimal > maxScanInterval {
		optimal = maxScanInterval
	}

	total := m.scansPerformed + m.scansSkipped
	skipRate := 0.0
	if total > 0 {
		skipRate = float64(m.scansSkipped) / float64(total)
	}

	adjusted := false
	if skipRate > highSkipRateThresh && m.maxConcurrentScans < maxDynamicScans {
		m.maxConcurrentScans++
		adjusted = true
	} else if float64(durLastScan) < fastScanFraction*float64(m.scanInterval) && m.maxConcurrentScans > minDynamicScans {
		m.maxConcurrentScans--
		adjusted = true
	}

	if m.scanInterval != optimal || adjusted {
		m.scanInterval = optimal
		m.lastTune = time.Now()
	}
}

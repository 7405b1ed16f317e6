/*
NAME
  watchdog.go

DESCRIPTION
  watchdog.go implements the per-pin watchdog goroutine: one is started on
  every Activate call and force-deactivates the pin if it is still active
  after watchdog_seconds, marking it StateWatchdogTimeout first so the
  forced deactivation is visible to a status reader.

AUTHOR
  Grounded on monitor's watchdog (loop.go's runWatchdog): a single ticker
  wakeup compared against a deadline, generalized from "one shared audio
  loop" to "one goroutine per active pin, exits on deactivation."
*/

package gpio

import "time"

// runWatchdog waits until either stop is closed (the pin was deactivated
// normally) or timeout elapses, in which case it marks the pin
// StateWatchdogTimeout and force-deactivates it.
func (c *Controller) runWatchdog(pin int, stop chan struct{}, timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-stop:
		return
	case <-timer.C:
	}

	ps, err := c.pinState(pin)
	if err != nil {
		return
	}
	ps.mu.Lock()
	if ps.state != StateActive {
		ps.mu.Unlock()
		return
	}
	ps.state = StateWatchdogTimeout
	ps.mu.Unlock()

	c.l.Warning("gpio: pin watchdog timeout, forcing deactivation", "pin", pin)
	if err := c.deactivateNow(pin, true); err != nil {
		c.l.Error("gpio: forced deactivation after watchdog timeout failed", "error", err, "pin", pin)
	}
}

/*
NAME
  activate.go

DESCRIPTION
  activate.go implements the per-pin activate/deactivate lifecycle:
  refusal rules, debounce, hold-time enforcement, and audit persistence.

AUTHOR
  New: state-machine logic specific to the activation subsystem, in the
  small mutex-protected-struct style used throughout this module (no
  global state).
*/

package gpio

import (
	"fmt"
	"time"

	"github.com/samestation/eas/easerr"
)

// Activate drives pin to its active level, recording an activation
// event. It refuses if the pin is not configured, disabled, or already
// active. The pin is held active until Deactivate is called or the
// per-pin watchdog forces a timeout deactivation.
func (c *Controller) Activate(pin int, kind ActivationKind, operator, alertID, reason string) error {
	ps, err := c.pinState(pin)
	if err != nil {
		return err
	}

	ps.mu.Lock()
	if !ps.cfg.Enabled {
		ps.mu.Unlock()
		return easerr.New(easerr.ConfigError, fmt.Errorf("gpio: pin %d is disabled", pin))
	}
	if ps.state == StateActive {
		ps.mu.Unlock()
		return easerr.New(easerr.ConfigError, fmt.Errorf("gpio: pin %d already active", pin))
	}
	ps.mu.Unlock()

	if ps.cfg.DebounceMS > 0 {
		time.Sleep(time.Duration(ps.cfg.DebounceMS) * time.Millisecond)
	}

	ps.mu.Lock()
	now := time.Now()
	if err := ps.backend.Write(activeLevel(ps.cfg.ActiveHigh)); err != nil {
		ps.state = StateError
		ps.mu.Unlock()
		c.audit(Event{Pin: pin, Kind: kind, ActivatedAt: now, Operator: operator, AlertID: alertID, Reason: reason, Success: false})
		return easerr.New(easerr.HardwareError, fmt.Errorf("gpio: driving pin %d active: %w", pin, err))
	}

	ev := &Event{Pin: pin, Kind: kind, ActivatedAt: now, Operator: operator, AlertID: alertID, Reason: reason}
	ps.state = StateActive
	ps.current = ev
	watchdogStop := make(chan struct{})
	ps.watchdog = watchdogStop
	ps.mu.Unlock()

	go c.runWatchdog(pin, watchdogStop, time.Duration(ps.cfg.WatchdogSeconds*float64(time.Second)))

	return nil
}

// Deactivate drives pin back to its resting level. If the pin is not
// active, Deactivate succeeds silently. If force is false, Deactivate
// blocks until at least HoldSeconds have elapsed since activation.
func (c *Controller) Deactivate(pin int, force bool) error {
	ps, err := c.pinState(pin)
	if err != nil {
		return err
	}

	ps.mu.Lock()
	if ps.state != StateActive && ps.state != StateWatchdogTimeout {
		ps.mu.Unlock()
		return nil
	}
	cur := ps.current
	holdSeconds := ps.cfg.HoldSeconds
	activatedAt := cur.ActivatedAt
	ps.mu.Unlock()

	if !force {
		elapsed := time.Since(activatedAt)
		remaining := time.Duration(holdSeconds*float64(time.Second)) - elapsed
		if remaining > 0 {
			time.Sleep(remaining)
		}
	}

	return c.deactivateNow(pin, force)
}

// deactivateNow performs the physical deactivation and persists the
// audit record, regardless of why it was triggered (explicit call,
// force, or watchdog timeout).
func (c *Controller) deactivateNow(pin int, forced bool) error {
	ps, err := c.pinState(pin)
	if err != nil {
		return err
	}

	ps.mu.Lock()
	if ps.state != StateActive && ps.state != StateWatchdogTimeout {
		ps.mu.Unlock()
		return nil
	}
	cur := ps.current
	if ps.watchdog != nil {
		select {
		case <-ps.watchdog:
		default:
			close(ps.watchdog)
		}
		ps.watchdog = nil
	}
	writeErr := ps.backend.Write(restingLevel(ps.cfg.ActiveHigh))
	now := time.Now()
	if writeErr != nil {
		ps.state = StateError
	} else {
		ps.state = StateInactive
	}
	ps.current = nil
	ps.mu.Unlock()

	ev := Event{
		Pin:           pin,
		Kind:          cur.Kind,
		ActivatedAt:   cur.ActivatedAt,
		DeactivatedAt: now,
		Operator:      cur.Operator,
		AlertID:       cur.AlertID,
		Reason:        cur.Reason,
		Forced:        forced,
		Success:       writeErr == nil,
	}
	c.audit(ev)

	if writeErr != nil {
		return easerr.New(easerr.HardwareError, fmt.Errorf("gpio: driving pin %d inactive: %w", pin, writeErr))
	}
	return nil
}

// audit persists ev via the configured sink, logging (but not
// propagating) a sink failure — an audit write failure must never abort
// an activation.
func (c *Controller) audit(ev Event) {
	if c.sink == nil {
		return
	}
	if err := c.sink.RecordGPIOEvent(ev); err != nil {
		c.l.Error("gpio: failed to persist audit event", "error", err, "pin", ev.Pin)
	}
}

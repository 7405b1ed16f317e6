/*
NAME
  gpio.go

DESCRIPTION
  gpio.go implements the GPIO activation subsystem (component C8): a
  per-pin state machine (inactive/active/error/watchdog_timeout) with
  debounce, minimum hold time, a force-deactivate watchdog, and a full
  audit trail of every activation event.

AUTHOR
  Grounded on cmd/speaker/main.go's embd.NewI2CBus construction and
  digital-pin write pattern, generalized from one ad hoc amplifier write
  to a full per-pin activation lifecycle.
*/

// Package gpio implements the per-pin relay activation subsystem: each
// configured pin is driven active/inactive under debounce, hold-time, and
// watchdog-timeout rules, with every event audited.
package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/kidoman/embd"
	_ "github.com/kidoman/embd/host/rpi" // registers the Raspberry Pi host driver with embd.

	"github.com/ausocean/utils/logging"

	"github.com/samestation/eas/easerr"
)

// PinState is one GPIO pin's current lifecycle state.
type PinState int

const (
	StateInactive PinState = iota
	StateActive
	StateError
	StateWatchdogTimeout
)

func (s PinState) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateError:
		return "error"
	case StateWatchdogTimeout:
		return "watchdog_timeout"
	default:
		return "inactive"
	}
}

// ActivationKind identifies why a pin was activated.
type ActivationKind int

const (
	KindManual ActivationKind = iota
	KindAutomatic
	KindTest
	KindOverride
)

func (k ActivationKind) String() string {
	switch k {
	case KindManual:
		return "manual"
	case KindTest:
		return "test"
	case KindOverride:
		return "override"
	default:
		return "automatic"
	}
}

// PinConfig is one pin's static configuration.
type PinConfig struct {
	Pin             int
	Name            string
	ActiveHigh      bool
	DebounceMS      int     // default 50.
	HoldSeconds     float64 // default 5.
	WatchdogSeconds float64 // default 300.
	Enabled         bool
}

func (c *PinConfig) setDefaults() {
	if c.DebounceMS <= 0 {
		c.DebounceMS = 50
	}
	if c.HoldSeconds <= 0 {
		c.HoldSeconds = 5
	}
	if c.WatchdogSeconds <= 0 {
		c.WatchdogSeconds = 300
	}
}

// Event is one persisted GPIO activation record.
type Event struct {
	Pin           int
	Kind          ActivationKind
	ActivatedAt   time.Time
	DeactivatedAt time.Time
	Operator      string // set for KindManual.
	AlertID       string // set for KindAutomatic.
	Reason        string
	Forced        bool
	Success       bool
}

func (e Event) durationSeconds() float64 {
	if e.DeactivatedAt.IsZero() {
		return 0
	}
	return e.DeactivatedAt.Sub(e.ActivatedAt).Seconds()
}

// AuditSink persists GPIO events. Implementations must be safe for
// concurrent use, since pin events may be recorded from several per-pin
// goroutines at once.
type AuditSink interface {
	RecordGPIOEvent(Event) error
}

// digitalPin is the subset of embd.DigitalPin the controller drives;
// extracted as an interface so tests can substitute a fake backend.
type digitalPin interface {
	SetDirection(embd.Direction) error
	Write(val int) error
	Close() error
}

// newDigitalPin constructs the backend for a pin number. Overridable in
// tests to avoid touching real hardware.
var newDigitalPin = func(pin int) (digitalPin, error) {
	return embd.NewDigitalPin(pin)
}

type pinState struct {
	mu       sync.Mutex
	cfg      PinConfig
	state    PinState
	current  *Event
	backend  digitalPin
	watchdog chan struct{} // closed to cancel the running watchdog.
}

// Controller owns every configured pin's state machine and audit trail.
type Controller struct {
	sink AuditSink
	l    logging.Logger

	mu   sync.Mutex
	pins map[int]*pinState
}

// New constructs a Controller. sink must not be nil.
func New(sink AuditSink, l logging.Logger) *Controller {
	return &Controller{sink: sink, l: l, pins: make(map[int]*pinState)}
}

// Configure registers the given pins, opening each one's hardware
// backend. It does not drive any pin; pins start inactive.
func (c *Controller) Configure(pins []PinConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cfg := range pins {
		cfg.setDefaults()
		backend, err := newDigitalPin(cfg.Pin)
		if err != nil {
			return easerr.New(easerr.HardwareError, fmt.Errorf("opening pin %d: %w", cfg.Pin, err))
		}
		if err := backend.SetDirection(embd.Out); err != nil {
			return easerr.New(easerr.HardwareError, fmt.Errorf("setting pin %d direction: %w", cfg.Pin, err))
		}
		if err := backend.Write(restingLevel(cfg.ActiveHigh)); err != nil {
			return easerr.New(easerr.HardwareError, fmt.Errorf("resetting pin %d: %w", cfg.Pin, err))
		}
		c.pins[cfg.Pin] = &pinState{cfg: cfg, state: StateInactive, backend: backend}
	}
	return nil
}

// GetPinState reports pin's current lifecycle state.
func (c *Controller) GetPinState(pin int) (PinState, error) {
	ps, err := c.pinState(pin)
	if err != nil {
		return StateInactive, err
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.state, nil
}

func (c *Controller) pinState(pin int) (*pinState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ps, ok := c.pins[pin]
	if !ok {
		return nil, easerr.New(easerr.ConfigError, fmt.Errorf("gpio: pin %d not configured", pin))
	}
	return ps, nil
}

// restingLevel is the physical level a pin is driven to when inactive:
// low for active-high pins, high for active-low pins.
func restingLevel(activeHigh bool) int {
	if activeHigh {
		return 0
	}
	return 1
}

// activeLevel is the physical level a pin is driven to when active.
func activeLevel(activeHigh bool) int {
	if activeHigh {
		return 1
	}
	return 0
}

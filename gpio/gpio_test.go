package gpio

import (
	"sync"
	"testing"
	"time"

	"github.com/kidoman/embd"
)

// fakeBackend records writes and direction changes in place of real
// hardware.
type fakeBackend struct {
	mu     sync.Mutex
	writes []int
	dir    embd.Direction
	closed bool
}

func (f *fakeBackend) SetDirection(d embd.Direction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dir = d
	return nil
}

func (f *fakeBackend) Write(v int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, v)
	return nil
}

func (f *fakeBackend) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeBackend) lastWrite() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return -1
	}
	return f.writes[len(f.writes)-1]
}

// fakeSink records every audited event.
type fakeSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *fakeSink) RecordGPIOEvent(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return nil
}

func (s *fakeSink) last() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return Event{}, false
	}
	return s.events[len(s.events)-1], true
}

type discardLogger struct{}

func (discardLogger) SetLevel(int8)                                     {}
func (discardLogger) Log(level int8, msg string, params ...interface{}) {}
func (discardLogger) Debug(msg string, params ...interface{})           {}
func (discardLogger) Info(msg string, params ...interface{})            {}
func (discardLogger) Warning(msg string, params ...interface{})         {}
func (discardLogger) Error(msg string, params ...interface{})           {}
func (discardLogger) Fatal(msg string, params ...interface{})           {}

func withFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	orig := newDigitalPin
	newDigitalPin = func(pin int) (digitalPin, error) { return fb, nil }
	t.Cleanup(func() { newDigitalPin = orig })
	return fb
}

func TestActivateDrivesActiveLevelAndAudits(t *testing.T) {
	fb := withFakeBackend(t)
	sink := &fakeSink{}
	c := New(sink, discardLogger{})
	if err := c.Configure([]PinConfig{{Pin: 17, Name: "siren", ActiveHigh: true, Enabled: true, DebounceMS: 1, HoldSeconds: 0.01, WatchdogSeconds: 60}}); err != nil {
		t.Fatalf("Configure: %v", err)
	}

	if err := c.Activate(17, KindAutomatic, "", "alert-1", "RWT test"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if fb.lastWrite() != 1 {
		t.Errorf("last write = %d, want 1 (active-high active)", fb.lastWrite())
	}
	state, err := c.GetPinState(17)
	if err != nil {
		t.Fatalf("GetPinState: %v", err)
	}
	if state != StateActive {
		t.Errorf("state = %v, want active", state)
	}

	if err := c.Deactivate(17, true); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if fb.lastWrite() != 0 {
		t.Errorf("last write = %d, want 0 (resting)", fb.lastWrite())
	}

	ev, ok := sink.last()
	if !ok {
		t.Fatal("no audit event recorded")
	}
	if !ev.Success || ev.AlertID != "alert-1" {
		t.Errorf("audit event = %+v, want Success=true AlertID=alert-1", ev)
	}
}

func TestActivateRefusesWhenAlreadyActive(t *testing.T) {
	withFakeBackend(t)
	c := New(&fakeSink{}, discardLogger{})
	c.Configure([]PinConfig{{Pin: 17, ActiveHigh: true, Enabled: true, DebounceMS: 0}})

	if err := c.Activate(17, KindManual, "op", "", ""); err != nil {
		t.Fatalf("first Activate: %v", err)
	}
	if err := c.Activate(17, KindManual, "op", "", ""); err == nil {
		t.Error("second Activate on an already-active pin should fail")
	}
}

func TestActivateRefusesDisabledPin(t *testing.T) {
	withFakeBackend(t)
	c := New(&fakeSink{}, discardLogger{})
	c.Configure([]PinConfig{{Pin: 17, ActiveHigh: true, Enabled: false}})

	if err := c.Activate(17, KindManual, "op", "", ""); err == nil {
		t.Error("Activate on a disabled pin should fail")
	}
}

func TestDeactivateWithoutForceWaitsForHoldTime(t *testing.T) {
	withFakeBackend(t)
	c := New(&fakeSink{}, discardLogger{})
	c.Configure([]PinConfig{{Pin: 17, ActiveHigh: true, Enabled: true, DebounceMS: 0, HoldSeconds: 0.2, WatchdogSeconds: 60}})

	if err := c.Activate(17, KindTest, "", "", "hold test"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	start := time.Now()
	if err := c.Deactivate(17, false); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if time.Since(start) < 150*time.Millisecond {
		t.Errorf("Deactivate returned after %v, want to honor ~0.2s hold", time.Since(start))
	}
}

func TestWatchdogForcesDeactivationOnTimeout(t *testing.T) {
	fb := withFakeBackend(t)
	sink := &fakeSink{}
	c := New(sink, discardLogger{})
	c.Configure([]PinConfig{{Pin: 5, ActiveHigh: true, Enabled: true, DebounceMS: 0, HoldSeconds: 0, WatchdogSeconds: 0.1}})

	if err := c.Activate(5, KindAutomatic, "", "alert-2", ""); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if st, _ := c.GetPinState(5); st == StateInactive {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	state, _ := c.GetPinState(5)
	if state != StateInactive {
		t.Fatalf("state after watchdog timeout = %v, want inactive (forced off)", state)
	}
	if fb.lastWrite() != 0 {
		t.Errorf("last write = %d, want 0 (forced resting)", fb.lastWrite())
	}
	ev, ok := sink.last()
	if !ok || !ev.Forced {
		t.Errorf("audit event = %+v, want Forced=true", ev)
	}
}

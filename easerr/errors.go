// Package easerr defines the error taxonomy shared by the SAME monitoring
// and activation pipeline, so that callers can distinguish recoverable
// conditions (no signal, bad framing) from operator-visible misconfiguration
// without parsing error strings.
package easerr

import "errors"

// Kind classifies an error into one of the recovery paths described for
// the station: some kinds are silently counted, some are logged and
// retried, and some must be surfaced to an operator.
type Kind int

const (
	_ Kind = iota
	InputMissing
	AudioUnavailable
	NoSignal
	BadFraming
	ConfigError
	StorageError
	HardwareError
	WatchdogTimeout
	DuplicateSuppressed
)

func (k Kind) String() string {
	switch k {
	case InputMissing:
		return "InputMissing"
	case AudioUnavailable:
		return "AudioUnavailable"
	case NoSignal:
		return "NoSignal"
	case BadFraming:
		return "BadFraming"
	case ConfigError:
		return "ConfigError"
	case StorageError:
		return "StorageError"
	case HardwareError:
		return "HardwareError"
	case WatchdogTimeout:
		return "WatchdogTimeout"
	case DuplicateSuppressed:
		return "DuplicateSuppressed"
	default:
		return "Unknown"
	}
}

// Error wraps an underlying cause with a Kind so callers can type-switch
// on recovery policy via errors.As.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error { return e.Cause }

// New wraps cause with kind. If cause is nil, the returned error's message
// is just the kind's name.
func New(kind Kind, cause error) error { return &Error{Kind: kind, Cause: cause} }

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

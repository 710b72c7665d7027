package poller

import (
	"fmt"
	"time"
)

// FailureKind classifies why a poll cycle failed.
type FailureKind string

const (
	// FailureTransport covers connection errors, timeouts and unreadable bodies.
	FailureTransport FailureKind = "transport"

	// FailureStatus is a response with a non-2xx status code.
	FailureStatus FailureKind = "status"

	// FailureDecode is a body that does not have the expected shape.
	FailureDecode FailureKind = "decode"

	// FailureRender is a panic recovered while building or writing rows.
	FailureRender FailureKind = "render"
)

// Failure is the single error type produced by a poll cycle.
//
// A Failure never escapes a poller: it is reported to diagnostics and the
// table that poller owns is left as it was.
type Failure struct {
	// Poller is the name of the poller that failed ("devices", "files").
	Poller string

	// URL is the endpoint that was polled.
	URL string

	// Kind says which stage of the cycle failed.
	Kind FailureKind

	// StatusCode is the HTTP status, zero if no response was received.
	StatusCode int

	// At is when the failure was detected.
	At time.Time

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.StatusCode != 0 && f.Kind == FailureStatus {
		return fmt.Sprintf("poll %s: %s failure (HTTP %d): %v", f.Poller, f.Kind, f.StatusCode, f.Err)
	}
	return fmt.Sprintf("poll %s: %s failure: %v", f.Poller, f.Kind, f.Err)
}

// Unwrap returns the underlying cause so callers can use errors.Is/As.
func (f *Failure) Unwrap() error {
	return f.Err
}

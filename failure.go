package syncboard

import (
	"log/slog"

	"github.com/jpalmerr/syncboard/internal/poller"
)

// PollFailure describes a poll cycle that did not re-render its table.
//
// It is the single error kind for transport errors, non-2xx statuses, bodies
// of the wrong shape and recovered render panics. Use Kind to tell them apart
// and [errors.Unwrap] to reach the cause.
type PollFailure = poller.Failure

// FailureKind classifies a [PollFailure].
type FailureKind = poller.FailureKind

const (
	// FailureTransport means the request never produced a response.
	FailureTransport = poller.FailureTransport

	// FailureStatus means the node answered with a non-2xx status.
	FailureStatus = poller.FailureStatus

	// FailureDecode means the body was not of the expected shape.
	FailureDecode = poller.FailureDecode

	// FailureRender means building or writing rows panicked.
	FailureRender = poller.FailureRender
)

// Diagnostics receives every [PollFailure], exactly once per failed cycle.
//
// Implementations are called from poller goroutines and must be safe for
// concurrent use. Panics are recovered and logged.
type Diagnostics interface {
	PollFailed(f *PollFailure)
}

// DiagnosticsFunc adapts a function to [Diagnostics].
type DiagnosticsFunc func(f *PollFailure)

// PollFailed implements [Diagnostics].
func (fn DiagnosticsFunc) PollFailed(f *PollFailure) {
	fn(f)
}

// LogDiagnostics returns the default [Diagnostics]: one WARN entry per
// failure on logger.
func LogDiagnostics(logger *slog.Logger) Diagnostics {
	if logger == nil {
		logger = slog.Default()
	}
	return DiagnosticsFunc(func(f *PollFailure) {
		logger.Warn("poll failed",
			"poller", f.Poller,
			"url", f.URL,
			"kind", string(f.Kind),
			"status_code", f.StatusCode,
			"error", f.Err,
		)
	})
}

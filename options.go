package syncboard

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jpalmerr/syncboard/table"
)

// boardConfig holds mutable state during Board construction.
type boardConfig struct {
	title          string
	baseURL        string
	devicesPath    string
	filesPath      string
	deviceInterval time.Duration
	fileInterval   time.Duration
	timeout        time.Duration
	headers        map[string]string
	overlap        OverlapPolicy
	port           int
	serve          bool
	logger         *slog.Logger
	clock          clock.Clock
	diagnostics    Diagnostics
	deviceSinks    []table.Sink
	fileSinks      []table.Sink
	cycleCallbacks []func(CycleResult)
}

// Option is a function that configures a [Board] during construction.
//
// Options return an error if validation fails. [WithBaseURL] is the only
// required option.
type Option func(*boardConfig) error

// WithBaseURL sets the sync node to observe, e.g. "http://localhost:9000".
//
// The URL must be absolute with an http or https scheme. The device and file
// paths are resolved against it.
func WithBaseURL(rawURL string) Option {
	return func(cfg *boardConfig) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.New("base URL must have a scheme (http:// or https://)")
		}
		if u.Host == "" {
			return errors.New("base URL must have a host")
		}
		cfg.baseURL = rawURL
		return nil
	}
}

// WithDevicesPath overrides the device endpoint path. Defaults to "/peers".
func WithDevicesPath(path string) Option {
	return func(cfg *boardConfig) error {
		if path == "" {
			return errors.New("devices path cannot be empty")
		}
		cfg.devicesPath = path
		return nil
	}
}

// WithFilesPath overrides the file metadata endpoint path. Defaults to "/metadata".
func WithFilesPath(path string) Option {
	return func(cfg *boardConfig) error {
		if path == "" {
			return errors.New("files path cannot be empty")
		}
		cfg.filesPath = path
		return nil
	}
}

// WithDeviceInterval sets how often the device table is refreshed.
// Defaults to 5 seconds.
//
// Returns an error if the duration is zero or negative.
func WithDeviceInterval(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d <= 0 {
			return errors.New("device interval must be positive")
		}
		cfg.deviceInterval = d
		return nil
	}
}

// WithFileInterval sets how often the file table is refreshed.
// Defaults to 10 seconds.
//
// Returns an error if the duration is zero or negative.
func WithFileInterval(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d <= 0 {
			return errors.New("file interval must be positive")
		}
		cfg.fileInterval = d
		return nil
	}
}

// WithTimeout bounds every request to the node. The default, zero, applies
// no timeout: a stalled request only delays its own table.
//
// Returns an error if the duration is negative.
func WithTimeout(d time.Duration) Option {
	return func(cfg *boardConfig) error {
		if d < 0 {
			return errors.New("timeout cannot be negative")
		}
		cfg.timeout = d
		return nil
	}
}

// WithHeaders adds HTTP headers sent with every request, given as key-value
// pairs.
//
// Example:
//
//	board, err := syncboard.New(
//	    syncboard.WithBaseURL("http://node:9000"),
//	    syncboard.WithHeaders("X-Node-Token", token),
//	)
//
// Returns an error if an odd number of arguments is provided or a key is empty.
func WithHeaders(keyValues ...string) Option {
	return func(cfg *boardConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("headers must be key-value pairs (even number of arguments)")
		}
		if cfg.headers == nil {
			cfg.headers = make(map[string]string, len(keyValues)/2)
		}
		for i := 0; i < len(keyValues); i += 2 {
			if keyValues[i] == "" {
				return errors.New("header key cannot be empty")
			}
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithOverlapPolicy decides what happens when a tick arrives while the
// previous cycle of the same poller is still in flight. Defaults to
// [OverlapSkip].
func WithOverlapPolicy(p OverlapPolicy) Option {
	return func(cfg *boardConfig) error {
		if !p.Valid() {
			return fmt.Errorf("invalid overlap policy %q (want %q or %q)", p, OverlapSkip, OverlapAllow)
		}
		cfg.overlap = p
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server. Defaults to 8080.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *boardConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithoutServer disables the web dashboard. The tables are still maintained
// and delivered to any sinks added with [WithDeviceSink] and [WithFileSink].
func WithoutServer() Option {
	return func(cfg *boardConfig) error {
		cfg.serve = false
		return nil
	}
}

// WithTitle sets the dashboard title. Defaults to "SyncBoard".
func WithTitle(title string) Option {
	return func(cfg *boardConfig) error {
		cfg.title = title
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *boardConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithClock sets the clock driving the schedule and timestamps. Tests pass a
// [clock.Mock] to advance time deterministically.
//
// Returns an error if the clock is nil.
func WithClock(clk clock.Clock) Option {
	return func(cfg *boardConfig) error {
		if clk == nil {
			return errors.New("clock cannot be nil")
		}
		cfg.clock = clk
		return nil
	}
}

// WithDiagnostics replaces the default failure sink, which logs a WARN entry
// per failure. See [LogDiagnostics].
//
// Returns an error if d is nil.
func WithDiagnostics(d Diagnostics) Option {
	return func(cfg *boardConfig) error {
		if d == nil {
			return errors.New("diagnostics cannot be nil")
		}
		cfg.diagnostics = d
		return nil
	}
}

// WithDeviceSink adds a sink that receives every device table render, next
// to the built-in store. May be called multiple times.
func WithDeviceSink(s table.Sink) Option {
	return func(cfg *boardConfig) error {
		if s == nil {
			return errors.New("device sink cannot be nil")
		}
		cfg.deviceSinks = append(cfg.deviceSinks, s)
		return nil
	}
}

// WithFileSink adds a sink that receives every file table render, next to
// the built-in store. May be called multiple times.
func WithFileSink(s table.Sink) Option {
	return func(cfg *boardConfig) error {
		if s == nil {
			return errors.New("file sink cannot be nil")
		}
		cfg.fileSinks = append(cfg.fileSinks, s)
		return nil
	}
}

// WithCycleCallback registers a function called after every poll cycle of
// either poller, successful or not.
//
// Callbacks run on the poller goroutine that completed the cycle, in
// registration order, so they must be non-blocking and safe for concurrent
// use. Panics within callbacks are recovered and logged.
//
// Nil callbacks are silently ignored.
func WithCycleCallback(cb func(CycleResult)) Option {
	return func(cfg *boardConfig) error {
		if cb == nil {
			return nil
		}
		cfg.cycleCallbacks = append(cfg.cycleCallbacks, cb)
		return nil
	}
}

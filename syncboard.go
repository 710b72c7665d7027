package syncboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/jpalmerr/syncboard/dashboard"
	"github.com/jpalmerr/syncboard/internal/poller"
	"github.com/jpalmerr/syncboard/internal/server"
	"github.com/jpalmerr/syncboard/internal/store"
	"github.com/jpalmerr/syncboard/table"
)

const (
	defaultDevicesPath    = "/peers"
	defaultFilesPath      = "/metadata"
	defaultDeviceInterval = 5 * time.Second
	defaultFileInterval   = 10 * time.Second
	defaultPort           = 8080
)

// Poller and table names.
const (
	PollerDevices = "devices"
	PollerFiles   = "files"
)

// OverlapPolicy decides whether a poller may start a cycle while its
// previous cycle is still in flight.
type OverlapPolicy = poller.OverlapPolicy

const (
	// OverlapSkip drops a tick while the previous cycle is in flight.
	OverlapSkip = poller.OverlapSkip

	// OverlapAllow starts a cycle on every tick. Renders are still serialized;
	// the table shows whichever cycle completed last.
	OverlapAllow = poller.OverlapAllow
)

// CycleResult is the outcome of one poll cycle.
type CycleResult struct {
	// Poller is [PollerDevices] or [PollerFiles].
	Poller string

	// URL is the endpoint that was polled.
	URL string

	// Rows is the number of rows rendered. Zero on failure.
	Rows int

	// Latency is the time taken by the HTTP request.
	Latency time.Duration

	// CheckedAt is when the cycle ran.
	CheckedAt time.Time

	// Failure is nil when the table was re-rendered. Otherwise the table was
	// left as it was.
	Failure *PollFailure
}

// Board observes one sync node and keeps its device and file tables current.
//
// Board is created with [New] and started with [Board.Start]. Each table has
// its own poller on its own schedule; a failing or slow poller never affects
// the other one.
//
//	board, err := syncboard.New(syncboard.WithBaseURL("http://localhost:9000"))
//	if err != nil {
//	    slog.Error("failed to create syncboard", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	board.Start(ctx) // blocks until ctx is cancelled
type Board struct {
	title          string
	devicesURL     string
	filesURL       string
	deviceInterval time.Duration
	fileInterval   time.Duration
	overlap        OverlapPolicy
	port           int
	serve          bool
	logger         *slog.Logger
	clock          clock.Clock
	diagnostics    Diagnostics
	callbacks      []func(CycleResult)

	client  *poller.Client
	store   *store.MemoryStore
	devices *poller.Poller[Device]
	files   *poller.Poller[FileRecord]

	mu      sync.Mutex
	started bool
}

// New creates a [Board] with the given options.
//
// [WithBaseURL] is required. Other options default to:
//   - Devices: GET /peers every 5 seconds
//   - Files: GET /metadata every 10 seconds
//   - Timeout: none
//   - Overlap policy: skip
//   - Port: 8080
func New(opts ...Option) (*Board, error) {
	cfg := &boardConfig{
		devicesPath:    defaultDevicesPath,
		filesPath:      defaultFilesPath,
		deviceInterval: defaultDeviceInterval,
		fileInterval:   defaultFileInterval,
		overlap:        OverlapSkip,
		port:           defaultPort,
		serve:          true,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.baseURL == "" {
		return nil, errors.New("base URL is required")
	}

	devicesURL, err := ResolveEndpoint(cfg.baseURL, cfg.devicesPath)
	if err != nil {
		return nil, fmt.Errorf("invalid devices path: %w", err)
	}
	filesURL, err := ResolveEndpoint(cfg.baseURL, cfg.filesPath)
	if err != nil {
		return nil, fmt.Errorf("invalid files path: %w", err)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := cfg.clock
	if clk == nil {
		clk = clock.New()
	}
	diagnostics := cfg.diagnostics
	if diagnostics == nil {
		diagnostics = LogDiagnostics(logger)
	}

	b := &Board{
		title:          cfg.title,
		devicesURL:     devicesURL,
		filesURL:       filesURL,
		deviceInterval: cfg.deviceInterval,
		fileInterval:   cfg.fileInterval,
		overlap:        cfg.overlap,
		port:           cfg.port,
		serve:          cfg.serve,
		logger:         logger,
		clock:          clk,
		diagnostics:    diagnostics,
		callbacks:      cfg.cycleCallbacks,
		client:         poller.NewClient(),
		store:          store.NewMemoryStore(clk, PollerDevices, PollerFiles),
	}

	deviceSink := append(table.Multi{b.store.Table(PollerDevices)}, cfg.deviceSinks...)
	fileSink := append(table.Multi{b.store.Table(PollerFiles)}, cfg.fileSinks...)

	b.devices = poller.New(poller.Feed[Device]{
		Name:    PollerDevices,
		URL:     devicesURL,
		Headers: copyMap(cfg.headers),
		Timeout: cfg.timeout,
		Decode:  DecodeDevices,
		Render:  DeviceRow,
	}, deviceSink, b.client, clk, logger)

	b.files = poller.New(poller.Feed[FileRecord]{
		Name:    PollerFiles,
		URL:     filesURL,
		Headers: copyMap(cfg.headers),
		Timeout: cfg.timeout,
		Decode:  DecodeFiles,
		Render:  FileRow,
	}, fileSink, b.client, clk, logger)

	return b, nil
}

// Start begins polling both endpoints and, unless [WithoutServer] was given,
// serving the dashboard.
//
// Start blocks until ctx is cancelled. Each poller runs once immediately and
// then on its own interval. On cancellation Start waits for in-flight cycles
// to finish before returning.
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails
// to start or the board was already started.
func (b *Board) Start(ctx context.Context) error {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return errors.New("syncboard already started")
	}
	b.started = true
	b.mu.Unlock()

	b.logger.Info("syncboard starting",
		"devices_url", b.devicesURL,
		"files_url", b.filesURL,
	)
	b.logger.Info("polling configured",
		"device_interval", b.deviceInterval.String(),
		"file_interval", b.fileInterval.String(),
		"overlap", string(b.overlap),
	)

	if ctx.Err() != nil {
		return nil
	}

	scheduler := poller.NewScheduler(b.clock, b.logger)
	scheduler.Add(poller.Task{
		Name:     PollerDevices,
		Interval: b.deviceInterval,
		Run:      func(ctx context.Context) { b.PollDevices(ctx) },
	}, b.overlap)
	scheduler.Add(poller.Task{
		Name:     PollerFiles,
		Interval: b.fileInterval,
		Run:      func(ctx context.Context) { b.PollFiles(ctx) },
	}, b.overlap)

	cleanup := func() {
		scheduler.Stop()
		b.client.Close()
	}

	if b.serve {
		page := server.Page{
			Title:   b.title,
			Refresh: b.deviceInterval,
			Tables:  Layouts(),
		}
		httpServer := server.NewServer(b.store, b.port, dashboard.Assets, page, b.logger)
		if err := httpServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		b.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", b.port))
	}

	scheduler.Start(ctx)

	<-ctx.Done()
	cleanup()
	b.logger.Info("syncboard stopped")
	return nil
}

// PollDevices runs one device cycle now: GET the devices endpoint and, on
// success, replace the device table.
func (b *Board) PollDevices(ctx context.Context) CycleResult {
	return b.complete(b.devices.Poll(ctx))
}

// PollFiles runs one file cycle now: GET the metadata endpoint and, on
// success, replace the file table.
func (b *Board) PollFiles(ctx context.Context) CycleResult {
	return b.complete(b.files.Poll(ctx))
}

// Rows returns the last published rows of the named table, or nil for an
// unknown name. The returned slice is a copy.
func (b *Board) Rows(name string) []table.Row {
	snap, ok := b.store.Get(name)
	if !ok {
		return nil
	}
	return snap.Rows
}

// TableSnapshot is a complete, published table.
type TableSnapshot = store.Snapshot

// Subscribe returns a channel receiving every table the board publishes,
// in publish order. The channel is buffered; a consumer that falls behind
// misses updates rather than stalling the pollers. Call [Board.Unsubscribe]
// when done.
func (b *Board) Subscribe() <-chan TableSnapshot {
	return b.store.Subscribe()
}

// Unsubscribe ends a subscription and closes its channel. Safe to call twice.
func (b *Board) Unsubscribe(ch <-chan TableSnapshot) {
	b.store.Unsubscribe(ch)
}

// ResolveEndpoint joins an endpoint path onto the node base URL the way [New]
// does, without creating a board.
func ResolveEndpoint(baseURL, path string) (string, error) {
	return url.JoinPath(baseURL, path)
}

// Layouts returns the presentation of both tables, devices first.
func Layouts() []table.Layout {
	return []table.Layout{
		{Name: PollerDevices, Heading: "Devices", Columns: DeviceColumns},
		{Name: PollerFiles, Heading: "Files", Columns: FileColumns},
	}
}

// Title returns the configured dashboard title, or "" for the default.
func (b *Board) Title() string {
	return b.title
}

// DevicesURL returns the resolved device endpoint.
func (b *Board) DevicesURL() string {
	return b.devicesURL
}

// FilesURL returns the resolved file metadata endpoint.
func (b *Board) FilesURL() string {
	return b.filesURL
}

// Port returns the configured HTTP port for the dashboard server.
func (b *Board) Port() int {
	return b.port
}

// complete reports a finished cycle to diagnostics, logs and callbacks.
func (b *Board) complete(res poller.Result) CycleResult {
	result := CycleResult{
		Poller:    res.Poller,
		URL:       res.URL,
		Rows:      res.Rows,
		Latency:   res.Latency,
		CheckedAt: res.CheckedAt,
		Failure:   res.Failure,
	}

	if res.Failure != nil {
		reportFailureSafe(b.diagnostics, res.Failure, b.logger)
	} else {
		b.logger.Debug("poll completed",
			"poller", res.Poller,
			"url", res.URL,
			"rows", res.Rows,
			"latency_ms", res.Latency.Milliseconds(),
		)
	}

	for _, cb := range b.callbacks {
		invokeCallbackSafe(cb, result, b.logger)
	}
	return result
}

// reportFailureSafe hands a failure to the diagnostics sink with panic
// recovery.
func reportFailureSafe(d Diagnostics, f *PollFailure, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("diagnostics sink panicked",
				"panic", r,
				"poller", f.Poller,
			)
		}
	}()
	d.PollFailed(f)
}

// invokeCallbackSafe calls a cycle callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(CycleResult), result CycleResult, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("cycle callback panicked",
				"panic", r,
				"poller", result.Poller,
			)
		}
	}()
	cb(result)
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

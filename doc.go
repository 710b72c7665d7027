// Package syncboard provides a read-only status dashboard for a peer-to-peer
// file synchronization node.
//
// A [Board] polls two JSON endpoints of the node on independent schedules and
// keeps one table per endpoint:
//
//   - GET /peers every 5 seconds renders the device table
//     (name, id, online/offline status, last seen, ip)
//   - GET /metadata every 10 seconds renders the file table
//     (path, size, short hash, chunk count)
//
// Every successful cycle replaces its table wholesale, in response order.
// A failed cycle (transport error, non-2xx status or a body of the wrong
// shape) leaves the table as it was and is reported once to [Diagnostics].
// Nothing is retried before the next scheduled cycle.
//
// # Quick Start
//
//	board, _ := syncboard.New(syncboard.WithBaseURL("http://localhost:9000"))
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	board.Start(ctx) // blocks until ctx is cancelled
//
// The dashboard is then available at http://localhost:8080.
//
// # Rendering
//
// Tables are written through the [table.Sink] capability: clear the body,
// then append rows in order. Besides the built-in store behind the web
// dashboard, any number of sinks can be attached with [WithDeviceSink] and
// [WithFileSink]; [table.Buffer] is a ready-made in-memory one.
//
// # Overlapping cycles
//
// When a request outlives its poller's interval, [OverlapSkip] (the default)
// drops the next tick, while [OverlapAllow] starts another cycle and lets the
// last one to complete win. Either way the rows of two cycles never mix.
//
// # Architecture
//
//   - internal/poller: HTTP client, generic poller and the interval scheduler
//   - internal/store: published table snapshots with pub/sub
//   - internal/server: web dashboard and JSON API
//   - internal/tui: terminal dashboard
//   - dashboard: embedded page template
package syncboard

// Package poller provides the fetch-decode-render cycle and the scheduling
// used by SyncBoard.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with optional per-request timeout and a body size limit
//   - [Poller]: generic poll cycle for one endpoint, rendering into a table sink
//   - [Failure]: the single error type a poll cycle can produce
//   - [Scheduler]: independent fixed-interval tasks driven by an injectable clock
//
// Users of the syncboard library should not need to interact with this
// package directly. Configuration is done through the main syncboard package.
package poller

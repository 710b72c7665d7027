// Package server provides the HTTP server for the SyncBoard dashboard and API.
//
// This package is internal to SyncBoard and handles all HTTP concerns:
//
//   - Dashboard: the embedded html/template page at "/", one table per
//     store table, reloaded by the browser at a fixed period
//   - REST API: "/api/tables" and "/api/tables/{name}" return published
//     table snapshots as JSON
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
//
// Users of the syncboard library should not need to interact with this
// package directly. The server is started by [syncboard.Board.Start].
package server

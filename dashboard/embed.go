// Package dashboard provides the embedded web UI assets for SyncBoard.
//
// The page template is included at compile time, so the dashboard ships as a
// single binary. It is rendered by the server package at the root path
// ("/"); users of the syncboard library should not need to interact with
// this package directly.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the dashboard web UI.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - html/template page with inline CSS; no JavaScript
//
//go:embed assets/*
var Assets embed.FS

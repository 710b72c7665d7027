package main

import (
	"io"
	"log/slog"

	"github.com/jpalmerr/syncboard/config"
)

// newLogger creates the CLI logger described by the log section of the config.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

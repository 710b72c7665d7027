// Standalone mock sync node for trying out the CLI.
//
// Usage:
//
//	go run ./example/cmd/mocknode
//
// Then in another terminal:
//
//	go run ./cmd/syncboard serve -c example/config.yaml
//	go run ./cmd/syncboard watch -c example/config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/syncboard/example/mocknode"
)

func main() {
	addr := flag.String("addr", ":9000", "listen address")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "random seed for presence changes")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	fmt.Printf("Mock sync node starting on %s\n", *addr)
	fmt.Println("Devices flip online/offline every 20-60s, files appear every 15-30s")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mocknode.New(nil, logger, *seed).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("mock node error", "error", err)
		os.Exit(1)
	}
}

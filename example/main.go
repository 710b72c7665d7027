package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/syncboard"
	"github.com/jpalmerr/syncboard/example/mocknode"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// start an in-process mock node
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		logger.Error("failed to listen", "error", err)
		os.Exit(1)
	}
	node := &http.Server{
		Handler:           mocknode.New(nil, logger, uint64(time.Now().UnixNano())).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := node.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("mock node error", "error", err)
		}
	}()
	defer node.Close()

	board, err := syncboard.New(
		syncboard.WithBaseURL("http://"+ln.Addr().String()),
		syncboard.WithTitle("SyncBoard Demo"),
		syncboard.WithTimeout(3*time.Second),
		syncboard.WithPort(8080),
		syncboard.WithLogger(logger),
		syncboard.WithCycleCallback(func(r syncboard.CycleResult) {
			if r.Failure == nil {
				logger.Info("table refreshed", "table", r.Poller, "rows", r.Rows, "latency", r.Latency)
			}
		}),
	)
	if err != nil {
		logger.Error("failed to create syncboard", "error", err)
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("  SyncBoard Demo")
	fmt.Println()
	fmt.Println("  Open http://localhost:8080 in your browser")
	fmt.Println("  Devices refresh every 5s, files every 10s")
	fmt.Println("  Press Ctrl+C to stop")
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := board.Start(ctx); err != nil {
		logger.Error("syncboard error", "error", err)
		os.Exit(1)
	}
}

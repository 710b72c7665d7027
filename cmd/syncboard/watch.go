package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/syncboard"
	"github.com/jpalmerr/syncboard/config"
	"github.com/jpalmerr/syncboard/internal/tui"
)

// watchCmd polls the node and renders the tables in the terminal.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the dashboard in the terminal",
	Long: `Poll the node and show its devices and files in the terminal.

The terminal is taken over by the dashboard, so logs are discarded unless
--log-file is given. Poll failures are also shown under the affected table.
With --serve the web dashboard is served as well.

Keys:
  q, esc, ctrl+c  quit
  ?               toggle help

Example:
  syncboard watch -c config.yaml
  syncboard watch -c config.yaml --log-file /tmp/syncboard.log --serve`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	watchCmd.Flags().String("log-file", "", "append logs to this file")
	watchCmd.Flags().Bool("serve", false, "also serve the web dashboard")
	_ = watchCmd.MarkFlagRequired("config")
}

func runWatch(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	logFile, _ := cmd.Flags().GetString("log-file")
	serve, _ := cmd.Flags().GetBool("serve")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	var logOut io.Writer = io.Discard
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := newLogger(cfg.Log, logOut)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.New(cfg.Title, nil, syncboard.Layouts()...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	logDiagnostics := syncboard.LogDiagnostics(logger)
	opts := append(config.BuildOptions(cfg),
		syncboard.WithLogger(logger),
		syncboard.WithDiagnostics(syncboard.DiagnosticsFunc(func(f *syncboard.PollFailure) {
			logDiagnostics.PollFailed(f)
			program.Send(tui.FailureMsg{Poller: f.Poller, Err: f.Err, At: f.At})
		})),
	)
	if !serve {
		opts = append(opts, syncboard.WithoutServer())
	}

	board, err := syncboard.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create SyncBoard: %w", err)
	}

	updates := board.Subscribe()
	defer board.Unsubscribe(updates)
	go tui.Forward(ctx, updates, program.Send)

	boardErr := make(chan error, 1)
	go func() {
		err := board.Start(ctx)
		if err != nil {
			program.Quit()
		}
		boardErr <- err
	}()

	_, runErr := program.Run()
	cancel()
	if err := <-boardErr; err != nil {
		return fmt.Errorf("board error: %w", err)
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("terminal UI error: %w", runErr)
	}
	return nil
}

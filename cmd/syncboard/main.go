// Package main is the entry point for the syncboard CLI.
//
// SyncBoard can be run either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	syncboard serve -c config.yaml    # Poll the node and serve the web dashboard
//	syncboard watch -c config.yaml    # Poll the node and show the terminal dashboard
//	syncboard validate -c config.yaml # Validate configuration
//	syncboard version                 # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "syncboard",
	Short: "A status dashboard for a P2P file-sync node",
	Long: `SyncBoard watches a P2P file-sync node.

It polls the node's device list and file metadata on independent schedules
and shows both as tables, in the browser or in the terminal.

Quick start:
  1. Create a config file (syncboard.yaml)
  2. Run: syncboard serve -c syncboard.yaml
  3. Open http://localhost:8080 in your browser

Example config:
  node:
    url: http://localhost:9000
  devices:
    interval: 5s
  files:
    interval: 10s`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this syncboard binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "syncboard %s\n", version)
		fmt.Fprintf(out, "  commit: %s\n", commit)
		fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

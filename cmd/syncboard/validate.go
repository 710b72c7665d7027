package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/syncboard"
	"github.com/jpalmerr/syncboard/config"
)

// validateCmd validates a config file without polling anything.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a SyncBoard configuration file without starting anything.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  syncboard validate -c config.yaml
  syncboard validate --config /etc/syncboard/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// resolve the endpoints the same way serve would
	devicesURL, err := syncboard.ResolveEndpoint(cfg.Node.URL, cfg.Devices.Path)
	if err != nil {
		return fmt.Errorf("invalid config: devices path: %w", err)
	}
	filesURL, err := syncboard.ResolveEndpoint(cfg.Node.URL, cfg.Files.Path)
	if err != nil {
		return fmt.Errorf("invalid config: files path: %w", err)
	}

	timeout := "none"
	if d := cfg.Node.Timeout.Duration(); d > 0 {
		timeout = d.String()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config is valid!\n")
	fmt.Fprintf(out, "  Port:    %d\n", cfg.Port)
	fmt.Fprintf(out, "  Devices: %s every %s\n", devicesURL, cfg.Devices.Interval.Duration())
	fmt.Fprintf(out, "  Files:   %s every %s\n", filesURL, cfg.Files.Interval.Duration())
	fmt.Fprintf(out, "  Timeout: %s\n", timeout)
	fmt.Fprintf(out, "  Overlap: %s\n", cfg.Overlap)
	fmt.Fprintf(out, "  Headers: %d\n", len(cfg.Node.Headers))

	return nil
}

// Package config provides YAML configuration parsing for SyncBoard.
//
// This package enables running SyncBoard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Lab node
//	port: 8080
//
//	node:
//	  url: ${SYNC_NODE_URL:-http://localhost:9000}
//	  timeout: 3s
//	  headers:
//	    X-Node-Token: ${SYNC_NODE_TOKEN}
//
//	devices:
//	  path: /peers
//	  interval: 5s
//
//	files:
//	  path: /metadata
//	  interval: 10s
//
//	overlap: skip
//
//	log:
//	  level: info
//	  format: json
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort           = 8080
	defaultDevicesPath    = "/peers"
	defaultFilesPath      = "/metadata"
	defaultDeviceInterval = 5 * time.Second
	defaultFileInterval   = 10 * time.Second

	// minInterval prevents accidental hammering of the node.
	minInterval = 1 * time.Second
	maxInterval = 1 * time.Hour
)

// Config is the root configuration structure for SyncBoard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "SyncBoard" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// Node is the sync node to observe.
	Node NodeConfig `yaml:"node"`

	// Devices configures the device poller. Defaults to /peers every 5s.
	Devices FeedConfig `yaml:"devices"`

	// Files configures the file poller. Defaults to /metadata every 10s.
	Files FeedConfig `yaml:"files"`

	// Overlap is "skip" (default) or "allow".
	Overlap string `yaml:"overlap"`

	// Log configures the CLI logger.
	Log LogConfig `yaml:"log"`
}

// NodeConfig locates the sync node.
type NodeConfig struct {
	// URL is the node's base URL.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Timeout bounds each request. Zero or unset means no timeout.
	Timeout Duration `yaml:"timeout"`

	// Headers are custom HTTP headers sent with each request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`
}

// FeedConfig configures one poller.
type FeedConfig struct {
	// Path is resolved against the node URL.
	Path string `yaml:"path"`

	// Interval is the time between cycles. Must be between 1s and 1h.
	Interval Duration `yaml:"interval"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	// Level is debug, info, warn or error. Defaults to info.
	Level string `yaml:"level"`

	// Format is json or text. Defaults to json.
	Format string `yaml:"format"`
}

// SlogLevel returns the configured level as a [slog.Level].
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the node URL and header values.
// Defaults are applied for every optional field.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if c.Devices.Path == "" {
		c.Devices.Path = defaultDevicesPath
	}
	if c.Devices.Interval == 0 {
		c.Devices.Interval = Duration(defaultDeviceInterval)
	}
	if c.Files.Path == "" {
		c.Files.Path = defaultFilesPath
	}
	if c.Files.Interval == 0 {
		c.Files.Interval = Duration(defaultFileInterval)
	}
	if c.Overlap == "" {
		c.Overlap = "skip"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	if c.Node.URL == "" {
		return fmt.Errorf("node.url is required")
	}
	expanded, err := expandEnvVars(c.Node.URL)
	if err != nil {
		return fmt.Errorf("node.url: %w", err)
	}
	c.Node.URL = expanded

	parsedURL, err := url.Parse(c.Node.URL)
	if err != nil {
		return fmt.Errorf("node.url: invalid url: %w", err)
	}
	if parsedURL.Scheme == "" {
		return fmt.Errorf("node.url: url must have a scheme (http:// or https://)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("node.url: url scheme must be http or https, got %q", parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("node.url: url must have a host")
	}

	if c.Node.Timeout.Duration() < 0 {
		return fmt.Errorf("node.timeout cannot be negative, got %s", c.Node.Timeout.Duration())
	}

	for k, v := range c.Node.Headers {
		if k == "" {
			return fmt.Errorf("node.headers: header name cannot be empty")
		}
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("node.headers[%s]: %w", k, err)
		}
		c.Node.Headers[k] = expanded
	}

	if err := c.Devices.validate("devices"); err != nil {
		return err
	}
	if err := c.Files.validate("files"); err != nil {
		return err
	}

	switch c.Overlap {
	case "skip", "allow":
	default:
		return fmt.Errorf("overlap must be skip or allow, got %q", c.Overlap)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}

	return nil
}

func (f *FeedConfig) validate(name string) error {
	if !strings.HasPrefix(f.Path, "/") {
		return fmt.Errorf("%s.path must start with /, got %q", name, f.Path)
	}
	if f.Interval.Duration() < minInterval {
		return fmt.Errorf("%s.interval must be at least %s, got %s", name, minInterval, f.Interval.Duration())
	}
	if f.Interval.Duration() > maxInterval {
		return fmt.Errorf("%s.interval must not exceed %s, got %s", name, maxInterval, f.Interval.Duration())
	}
	return nil
}

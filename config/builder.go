package config

import (
	"sort"

	"github.com/jpalmerr/syncboard"
)

// BuildOptions converts parsed configuration into SDK options.
//
// The result covers everything in the file except logging, which the caller
// sets up (see [LogConfig]) and passes with [syncboard.WithLogger].
func BuildOptions(cfg *Config) []syncboard.Option {
	opts := []syncboard.Option{
		syncboard.WithBaseURL(cfg.Node.URL),
		syncboard.WithDevicesPath(cfg.Devices.Path),
		syncboard.WithFilesPath(cfg.Files.Path),
		syncboard.WithDeviceInterval(cfg.Devices.Interval.Duration()),
		syncboard.WithFileInterval(cfg.Files.Interval.Duration()),
		syncboard.WithTimeout(cfg.Node.Timeout.Duration()),
		syncboard.WithOverlapPolicy(syncboard.OverlapPolicy(cfg.Overlap)),
		syncboard.WithPort(cfg.Port),
	}

	if cfg.Title != "" {
		opts = append(opts, syncboard.WithTitle(cfg.Title))
	}

	if len(cfg.Node.Headers) > 0 {
		opts = append(opts, syncboard.WithHeaders(mapToKeyValuePairs(cfg.Node.Headers)...))
	}

	return opts
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}

// Package envcfg reads configuration overrides from environment variables
// sharing a common prefix.
package envcfg

import (
	"os"
	"strconv"
	"time"
)

// Loader reads environment variables scoped by a prefix, falling back to the
// caller's default when a variable is unset or unparsable.
type Loader struct {
	prefix string
}

// NewLoader constructs a loader with the provided prefix. The prefix is
// suffixed with an underscore when reading variables.
func NewLoader(prefix string) Loader {
	if prefix != "" && prefix[len(prefix)-1] != '_' {
		prefix += "_"
	}

	return Loader{prefix: prefix}
}

// String returns the environment variable value or the provided default.
func (l Loader) String(key, def string) string {
	if val := os.Getenv(l.prefix + key); val != "" {
		return val
	}

	return def
}

// Int returns an integer environment variable or the provided default.
func (l Loader) Int(key string, def int) int {
	if val := os.Getenv(l.prefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}

	return def
}

// Bool returns a boolean environment variable or the provided default.
func (l Loader) Bool(key string, def bool) bool {
	if val := os.Getenv(l.prefix + key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}

	return def
}

// Duration returns a duration environment variable ("30s", "5m") or the
// provided default.
func (l Loader) Duration(key string, def time.Duration) time.Duration {
	if val := os.Getenv(l.prefix + key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}

	return def
}

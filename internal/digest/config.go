package digest

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// RunnerConfigFromEnv reads the worker pool settings, falling back to the
// defaults on missing or unparseable values.
func RunnerConfigFromEnv() RunnerConfig {
	var cfg RunnerConfig

	if v := os.Getenv("DIGEST_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			slog.Warn("invalid DIGEST_CONCURRENCY, using default", "value", v)
		} else {
			cfg.Concurrency = n
		}
	}

	if v := os.Getenv("DIGEST_USER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			slog.Warn("invalid DIGEST_USER_TIMEOUT, using default", "value", v)
		} else {
			cfg.UserTimeout = d
		}
	}

	return cfg
}

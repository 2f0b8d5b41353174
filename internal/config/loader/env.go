package loader

import (
	"github.com/dshills/keychord/internal/config"
)

// Environment variables that override file settings.
const (
	EnvLogLevel  = "KEYCHORD_LOG_LEVEL"
	EnvLogFormat = "KEYCHORD_LOG_FORMAT"
)

// applyEnv overrides logging settings from the environment.
// Empty values are treated as unset.
func applyEnv(cfg *config.Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Logging.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		cfg.Logging.Format = v
	}
}

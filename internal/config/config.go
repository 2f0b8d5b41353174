package config

import (
	"errors"
	"strings"

	"github.com/dshills/keychord/internal/input/key"
	"github.com/dshills/keychord/internal/logging"
)

// Action names a binding may use.
const (
	ActionLog   = "log"
	ActionPrint = "print"
	ActionLua   = "lua"
	ActionQuit  = "quit"
)

// Config is the root configuration.
type Config struct {
	Logging  LoggingConfig `toml:"logging" yaml:"logging"`
	Bindings []Binding     `toml:"bindings" yaml:"bindings"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Binding ties a combo to an action.
type Binding struct {
	// Name identifies the binding in logs and listings.
	Name string `toml:"name" yaml:"name"`
	// Keys is a combo specification such as "ctrl+alt+z".
	Keys string `toml:"keys" yaml:"keys"`
	// Action is one of log, print, lua, quit.
	Action string `toml:"action" yaml:"action"`
	// Message is logged or printed by log and print actions.
	Message string `toml:"message" yaml:"message"`
	// Script is the Lua source run by lua actions.
	Script string `toml:"script" yaml:"script"`
}

// Default returns a configuration with no bindings.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
	}
}

// Label returns the binding name, falling back to its keys.
func (b Binding) Label() string {
	if b.Name != "" {
		return b.Name
	}
	return b.Keys
}

// Codes parses the binding's keys.
func (b Binding) Codes() ([]key.Code, error) {
	return key.ParseCombo(b.Keys)
}

// Validate checks every binding. All problems are reported, joined.
func (c *Config) Validate() error {
	var errs []error

	if !logging.ValidLevel(c.Logging.Level) {
		errs = append(errs, &ValidationError{Index: -1, Field: "logging.level", Message: "unknown level " + c.Logging.Level})
	}

	switch c.Logging.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		errs = append(errs, &ValidationError{Index: -1, Field: "logging.format", Message: "must be console or json"})
	}

	for i, b := range c.Bindings {
		fail := func(field, msg string) {
			errs = append(errs, &ValidationError{Index: i, Name: b.Name, Field: field, Message: msg})
		}

		if strings.TrimSpace(b.Keys) == "" {
			fail("keys", "required")
		} else if _, err := b.Codes(); err != nil {
			fail("keys", err.Error())
		}

		switch b.Action {
		case ActionLog, ActionPrint, ActionQuit:
		case ActionLua:
			if strings.TrimSpace(b.Script) == "" {
				fail("script", "required for lua actions")
			}
		case "":
			fail("action", "required")
		default:
			fail("action", "unknown action "+b.Action)
		}
	}

	return errors.Join(errs...)
}

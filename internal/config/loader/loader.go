// Package loader reads keychord configuration files.
//
// The format is chosen by extension: .toml, .yaml/.yml or .json. After the
// file is decoded, KEYCHORD_* environment variables override logging
// settings, and the result is validated.
package loader

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/keychord/internal/config"
)

// Format is a configuration file format.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath returns the format for a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", config.ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Loader loads configuration files.
type Loader struct {
	fs     FileSystem
	lookup func(string) (string, bool)
}

// Option configures a Loader.
type Option func(*Loader)

// WithFS sets the file system used to read files.
func WithFS(fsys FileSystem) Option {
	return func(l *Loader) {
		if fsys != nil {
			l.fs = fsys
		}
	}
}

// WithEnvLookup sets the environment lookup function.
func WithEnvLookup(lookup func(string) (string, bool)) Option {
	return func(l *Loader) {
		if lookup != nil {
			l.lookup = lookup
		}
	}
}

// New creates a loader reading from the OS file system and environment.
func New(opts ...Option) *Loader {
	l := &Loader{
		fs:     DefaultFS(),
		lookup: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads, decodes, overrides and validates the file at path.
func (l *Loader) Load(path string) (*config.Config, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return l.LoadBytes(path, format, data)
}

// LoadBytes decodes data in format. source names the data in errors.
func (l *Loader) LoadBytes(source string, format Format, data []byte) (*config.Config, error) {
	cfg := config.Default()

	var err error
	switch format {
	case FormatTOML:
		err = decodeTOML(source, data, cfg)
	case FormatYAML:
		err = decodeYAML(source, data, cfg)
	case FormatJSON:
		err = decodeJSON(source, data, cfg)
	default:
		err = fmt.Errorf("%w: %q", config.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}

	applyEnv(cfg, l.lookup)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", source, err)
	}
	return cfg, nil
}

// Default returns the built-in configuration with environment overrides
// applied, validated the same way a loaded file is.
func (l *Loader) Default() (*config.Config, error) {
	cfg := config.Default()
	applyEnv(cfg, l.lookup)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating defaults: %w", err)
	}
	return cfg, nil
}

// Load reads path with a default loader.
func Load(path string) (*config.Config, error) {
	return New().Load(path)
}

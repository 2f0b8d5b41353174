// Package config defines the keychord configuration: logging settings and
// the list of combo bindings with the action each one triggers.
//
// Files are read by the loader subpackage (TOML, YAML or JSON chosen by
// extension, then KEYCHORD_* environment overrides) and watched for live
// reload by the watcher subpackage.
package config

// Package config loads and validates btvol configuration.
//
// Configuration lives in a TOML file (~/.config/btvol/config.toml by
// default). Load resolves the file, applies defaults for missing values,
// expands ~ in paths, and validates the result. Derived paths for the
// database, daemon socket, lock file, and log file all hang off the state
// and log directories so a single config relocates the whole installation.
package config

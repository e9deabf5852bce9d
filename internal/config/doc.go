// Package config loads, normalizes, and validates the TOML configuration
// shared by the wavecast daemon and CLI.
package config

// Package config loads, normalizes, and validates the TOML configuration
// for sharpframes.
package config

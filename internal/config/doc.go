// Package config loads, normalizes, and validates the proxy's TOML
// configuration. Values are resolved once at startup; callers treat the
// returned Config as read-only.
package config

// Package logging assembles the structured slog loggers used across the
// native messaging proxy.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes typed attribute helpers so every component emits
// log lines with the same shape. The package also provides a no-op logger
// for tests and wiring code that cannot fail.
package logging

// Package testsupport provides fixtures shared across package tests:
// temp-dir configs, manifest directories, and stub host executables.
package testsupport

import (
	"path/filepath"
	"testing"

	"xnmp/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.RuntimeDir = filepath.Join(base, "runtime")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Bus.Name = "org.freedesktop.NativeMessagingProxyTest"

	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithSearchPaths overrides both manifest search path lists.
func WithSearchPaths(chromium, mozilla []string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Hosts.ChromiumSearchPaths = chromium
		cfg.Hosts.MozillaSearchPaths = mozilla
	}
}

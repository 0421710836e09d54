package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"xnmp/internal/config"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("missing file reported as existing")
	}
	if cfg.Bus.Name != "org.freedesktop.NativeMessagingProxy" {
		t.Fatalf("unexpected default bus name %q", cfg.Bus.Name)
	}
	if cfg.Paths.RuntimeDir == "" || cfg.Paths.LogDir == "" {
		t.Fatal("expected default directories to be set")
	}
	if !filepath.IsAbs(cfg.Paths.LogDir) {
		t.Fatalf("log dir not normalized to absolute: %q", cfg.Paths.LogDir)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "config.toml")
	content := `
[paths]
runtime_dir = "` + filepath.Join(base, "run") + `"
log_dir = "` + filepath.Join(base, "logs") + `"

[hosts]
mozilla_search_paths = ["  ` + filepath.Join(base, "hosts") + `  ", ""]

[bus]
name = "org.example.Proxy"

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if cfg.Bus.Name != "org.example.Proxy" {
		t.Fatalf("bus name = %q", cfg.Bus.Name)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("logging not lowercased: %+v", cfg.Logging)
	}
	if len(cfg.Hosts.MozillaSearchPaths) != 1 || strings.Contains(cfg.Hosts.MozillaSearchPaths[0], " ") {
		t.Fatalf("search paths not normalized: %v", cfg.Hosts.MozillaSearchPaths)
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	cases := map[string]string{
		"bus name without dots": "[bus]\nname = \"no-dots\"\n",
		"unique-style bus name": "[bus]\nname = \":1.5\"\n",
		"unknown log format":    "[logging]\nformat = \"xml\"\n",
		"malformed toml":        "not [valid",
	}
	for label, content := range cases {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, _, _, err := config.Load(path); err == nil {
			t.Errorf("%s: expected error", label)
		}
	}
}

func TestRuntimePaths(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.RuntimeDir = "/run/user/1000/xnmp"

	if got := cfg.SocketPath(); got != "/run/user/1000/xnmp/xnmp.sock" {
		t.Fatalf("SocketPath = %q", got)
	}
	if got := cfg.LockPath(); got != "/run/user/1000/xnmp/xnmp.lock" {
		t.Fatalf("LockPath = %q", got)
	}
	if got := cfg.PIDPath(); got != "/run/user/1000/xnmp/xnmp.pid" {
		t.Fatalf("PIDPath = %q", got)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config does not load: exists=%v err=%v", exists, err)
	}
}

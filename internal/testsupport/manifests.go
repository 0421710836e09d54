package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// ManifestDir is a temp directory holding native messaging host manifests.
type ManifestDir struct {
	Path string
	t    testing.TB
}

// NewManifestDir creates an empty manifest directory under the test's
// temp root.
func NewManifestDir(t testing.TB) *ManifestDir {
	t.Helper()
	return &ManifestDir{Path: t.TempDir(), t: t}
}

// WriteManifest writes <name>.json with the given fields and returns the
// file path. Unknown fields survive the round trip untouched.
func (d *ManifestDir) WriteManifest(name string, fields map[string]any) string {
	d.t.Helper()
	raw, err := json.Marshal(fields)
	if err != nil {
		d.t.Fatalf("marshal manifest %s: %v", name, err)
	}
	return d.WriteRaw(name, raw)
}

// WriteRaw writes <name>.json verbatim and returns the file path.
func (d *ManifestDir) WriteRaw(name string, raw []byte) string {
	d.t.Helper()
	path := filepath.Join(d.Path, name+".json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		d.t.Fatalf("write manifest %s: %v", name, err)
	}
	return path
}

// WriteValidManifest writes a stdio manifest pointing at execPath.
func (d *ManifestDir) WriteValidManifest(name, execPath string) string {
	return d.WriteManifest(name, map[string]any{
		"name":        name,
		"description": "test host",
		"type":        "stdio",
		"path":        execPath,
	})
}

// StubHost writes an executable shell script into a temp dir and returns
// its path. The script body runs under /bin/sh.
func StubHost(t testing.TB, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "host")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub host: %v", err)
	}
	return path
}

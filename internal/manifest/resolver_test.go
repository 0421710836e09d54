package manifest_test

import (
	"context"
	"errors"
	"testing"

	"xnmp/internal/logging"
	"xnmp/internal/manifest"
	"xnmp/internal/testsupport"
)

func newResolver(t *testing.T, chromium, mozilla []string) *manifest.Resolver {
	t.Helper()
	return manifest.NewResolver(manifest.SearchPaths{
		Chromium: chromium,
		Mozilla:  mozilla,
	}, logging.NewNop())
}

func TestResolveFindsFirstValidManifest(t *testing.T) {
	first := testsupport.NewManifestDir(t)
	second := testsupport.NewManifestDir(t)
	first.WriteValidManifest("com.example.host", "/usr/bin/true")
	second.WriteValidManifest("com.example.host", "/usr/bin/false")

	resolver := newResolver(t, nil, []string{first.Path, second.Path})

	m, err := resolver.Resolve(context.Background(), "com.example.host", manifest.ModeMozilla)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.Path != "/usr/bin/true" {
		t.Fatalf("expected first directory to win, got path %q", m.Path)
	}
	if m.Name != "com.example.host" {
		t.Fatalf("unexpected manifest name %q", m.Name)
	}
	if len(m.Raw) == 0 {
		t.Fatal("expected raw manifest bytes")
	}
}

func TestResolveSkipsInvalidCandidates(t *testing.T) {
	first := testsupport.NewManifestDir(t)
	second := testsupport.NewManifestDir(t)

	// Broken JSON, mismatched name, wrong type, and a relative path all
	// get skipped in favor of a later valid candidate.
	first.WriteRaw("com.example.host", []byte("{not json"))
	second.WriteValidManifest("com.example.host", "/usr/bin/true")

	resolver := newResolver(t, nil, []string{first.Path, second.Path})
	m, err := resolver.Resolve(context.Background(), "com.example.host", manifest.ModeMozilla)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if m.FilePath == "" || m.Path != "/usr/bin/true" {
		t.Fatalf("expected valid fallback manifest, got %+v", m)
	}
}

func TestResolveRejectsMismatchedFields(t *testing.T) {
	dir := testsupport.NewManifestDir(t)
	dir.WriteManifest("com.example.wrongname", map[string]any{
		"name": "com.example.other", "type": "stdio", "path": "/usr/bin/true",
	})
	dir.WriteManifest("com.example.wrongtype", map[string]any{
		"name": "com.example.wrongtype", "type": "tcp", "path": "/usr/bin/true",
	})
	dir.WriteManifest("com.example.relpath", map[string]any{
		"name": "com.example.relpath", "type": "stdio", "path": "bin/true",
	})

	resolver := newResolver(t, nil, []string{dir.Path})
	for _, name := range []string{"com.example.wrongname", "com.example.wrongtype", "com.example.relpath"} {
		if _, err := resolver.Resolve(context.Background(), name, manifest.ModeMozilla); !errors.Is(err, manifest.ErrNotFound) {
			t.Fatalf("Resolve(%s): expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestResolveRejectsInvalidHostName(t *testing.T) {
	resolver := newResolver(t, nil, nil)
	for _, name := range []string{"", "../../etc/passwd", "com..example", "com.example.", "bad name", "a/b"} {
		if _, err := resolver.Resolve(context.Background(), name, manifest.ModeMozilla); !errors.Is(err, manifest.ErrInvalidName) {
			t.Fatalf("Resolve(%q): expected ErrInvalidName, got %v", name, err)
		}
	}
}

func TestResolveAcceptsDottedNames(t *testing.T) {
	dir := testsupport.NewManifestDir(t)
	dir.WriteValidManifest("single", "/usr/bin/true")
	dir.WriteValidManifest("com.example_1.host", "/usr/bin/true")

	resolver := newResolver(t, nil, []string{dir.Path})
	for _, name := range []string{"single", "com.example_1.host"} {
		if _, err := resolver.Resolve(context.Background(), name, manifest.ModeMozilla); err != nil {
			t.Fatalf("Resolve(%q): %v", name, err)
		}
	}
}

func TestResolveHonorsModeSearchPaths(t *testing.T) {
	chromiumDir := testsupport.NewManifestDir(t)
	mozillaDir := testsupport.NewManifestDir(t)
	chromiumDir.WriteValidManifest("com.example.host", "/usr/bin/true")
	mozillaDir.WriteValidManifest("com.example.host", "/usr/bin/false")

	resolver := newResolver(t, []string{chromiumDir.Path}, []string{mozillaDir.Path})

	chromium, err := resolver.Resolve(context.Background(), "com.example.host", manifest.ModeChromium)
	if err != nil {
		t.Fatalf("Resolve chromium: %v", err)
	}
	if chromium.Path != "/usr/bin/true" {
		t.Fatalf("chromium resolve used wrong directory: %q", chromium.Path)
	}

	mozilla, err := resolver.Resolve(context.Background(), "com.example.host", manifest.ModeMozilla)
	if err != nil {
		t.Fatalf("Resolve mozilla: %v", err)
	}
	if mozilla.Path != "/usr/bin/false" {
		t.Fatalf("mozilla resolve used wrong directory: %q", mozilla.Path)
	}
}

func TestResolveCanceledContext(t *testing.T) {
	dir := testsupport.NewManifestDir(t)
	dir.WriteValidManifest("com.example.host", "/usr/bin/true")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resolver := newResolver(t, nil, []string{dir.Path})
	if _, err := resolver.Resolve(ctx, "com.example.host", manifest.ModeMozilla); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

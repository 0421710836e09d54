package manifest_test

import (
	"testing"

	"xnmp/internal/manifest"
)

func TestParseMode(t *testing.T) {
	cases := map[string]manifest.Mode{
		"chromium": manifest.ModeChromium,
		"mozilla":  manifest.ModeMozilla,
		"":         manifest.ModeMozilla,
		"firefox":  manifest.ModeMozilla,
		"Chromium": manifest.ModeMozilla,
	}
	for input, want := range cases {
		if got := manifest.ParseMode(input); got != want {
			t.Errorf("ParseMode(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestBuildSearchPathsEnvOverride(t *testing.T) {
	t.Setenv(manifest.EnvHostLocations, "/one:/two::/three")

	paths := manifest.BuildSearchPaths([]string{"/chromium"}, []string{"/mozilla"})
	want := []string{"/one", "/two", "/three"}
	for _, got := range [][]string{paths.Chromium, paths.Mozilla} {
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	}
}

func TestBuildSearchPathsConfigOverride(t *testing.T) {
	t.Setenv(manifest.EnvHostLocations, "")

	paths := manifest.BuildSearchPaths([]string{"/custom/chromium"}, nil)
	if len(paths.Chromium) != 1 || paths.Chromium[0] != "/custom/chromium" {
		t.Fatalf("chromium override not applied: %v", paths.Chromium)
	}
	if len(paths.Mozilla) == 0 {
		t.Fatal("expected default mozilla search paths")
	}
}

func TestSearchPathsForMode(t *testing.T) {
	paths := manifest.SearchPaths{
		Chromium: []string{"/c"},
		Mozilla:  []string{"/m"},
	}
	if got := paths.ForMode(manifest.ModeChromium); got[0] != "/c" {
		t.Fatalf("ForMode(chromium) = %v", got)
	}
	if got := paths.ForMode(manifest.ModeMozilla); got[0] != "/m" {
		t.Fatalf("ForMode(mozilla) = %v", got)
	}
}

package manifest

import (
	"os"
	"path/filepath"
	"strings"
)

// EnvHostLocations overrides both search path sets with a colon-separated
// directory list when set.
const EnvHostLocations = "XNMP_HOST_LOCATIONS"

// SearchPaths holds the ordered manifest directories per mode. Resolved
// once at startup and read-only afterward.
type SearchPaths struct {
	Chromium []string
	Mozilla  []string
}

// ForMode returns the directory list for a mode.
func (s SearchPaths) ForMode(mode Mode) []string {
	if mode == ModeChromium {
		return s.Chromium
	}
	return s.Mozilla
}

// BuildSearchPaths resolves the active search path sets. Precedence:
// XNMP_HOST_LOCATIONS, then the configured overrides, then the documented
// per-vendor defaults.
func BuildSearchPaths(chromiumOverride, mozillaOverride []string) SearchPaths {
	if env := os.Getenv(EnvHostLocations); env != "" {
		dirs := splitPathList(env)
		return SearchPaths{Chromium: dirs, Mozilla: dirs}
	}

	paths := SearchPaths{
		Chromium: append([]string(nil), chromiumOverride...),
		Mozilla:  append([]string(nil), mozillaOverride...),
	}
	if len(paths.Chromium) == 0 {
		paths.Chromium = defaultChromiumSearchPaths()
	}
	if len(paths.Mozilla) == 0 {
		paths.Mozilla = defaultMozillaSearchPaths()
	}
	return paths
}

// Chrome and Chromium search paths documented here:
// https://developer.chrome.com/docs/extensions/nativeMessaging/#native-messaging-host-location
func defaultChromiumSearchPaths() []string {
	var dirs []string
	if configDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs,
			filepath.Join(configDir, "google-chrome", "NativeMessagingHosts"),
			filepath.Join(configDir, "chromium", "NativeMessagingHosts"),
		)
	}
	return append(dirs,
		"/etc/opt/chrome/native-messaging-hosts",
		"/etc/chromium/native-messaging-hosts",
	)
}

// Firefox search paths documented here:
// https://developer.mozilla.org/en-US/docs/Mozilla/Add-ons/WebExtensions/Native_manifests#manifest_location
func defaultMozillaSearchPaths() []string {
	var dirs []string
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".mozilla", "native-messaging-hosts"))
	}
	if configDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(configDir, "mozilla", "native-messaging-hosts"))
	}
	return append(dirs,
		"/usr/lib/mozilla/native-messaging-hosts",
		"/usr/lib64/mozilla/native-messaging-hosts",
	)
}

func splitPathList(value string) []string {
	parts := strings.Split(value, string(os.PathListSeparator))
	dirs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			dirs = append(dirs, part)
		}
	}
	return dirs
}

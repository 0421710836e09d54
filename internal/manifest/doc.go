// Package manifest locates and validates native messaging host manifests
// across the per-vendor search path lists.
//
// Resolution re-scans the filesystem on every call so host installs and
// uninstalls are observed without restarting the proxy. Per-candidate
// failures (missing file, unreadable file, malformed JSON, bad metadata)
// are logged and skipped; only exhausting the whole list is an error the
// caller sees.
package manifest

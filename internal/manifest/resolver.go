package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"xnmp/internal/logging"
)

// ErrInvalidName reports a host name that fails the native messaging
// naming rule.
var ErrInvalidName = errors.New("invalid native messaging host name")

// ErrNotFound reports that no search path produced a valid manifest.
var ErrNotFound = errors.New("could not find native messaging host")

// Valid host names are one or more dot-separated groups of alphanumeric
// characters and underscores, per the Mozilla native manifest rules.
var hostNamePattern = regexp.MustCompile(`^\w+(\.\w+)*$`)

// Manifest is a validated native messaging host descriptor. Raw holds the
// manifest file bytes exactly as read from disk.
type Manifest struct {
	Name     string
	Type     string
	Path     string
	FilePath string
	Raw      []byte
}

type manifestFields struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Path string `json:"path"`
}

// Resolver scans search paths for host manifests.
type Resolver struct {
	paths  SearchPaths
	logger *slog.Logger
}

// NewResolver constructs a resolver over the given search paths.
func NewResolver(paths SearchPaths, logger *slog.Logger) *Resolver {
	return &Resolver{
		paths:  paths,
		logger: logging.NewComponentLogger(logger, "manifest"),
	}
}

// SearchPaths returns the resolver's active search path sets.
func (r *Resolver) SearchPaths() SearchPaths {
	return r.paths
}

// Resolve finds the first valid manifest for hostName in the mode's search
// path order. Each call re-scans the filesystem. Candidates that cannot be
// read or do not validate are logged and skipped; the scan stops at the
// first fully valid manifest.
func (r *Resolver) Resolve(ctx context.Context, hostName string, mode Mode) (*Manifest, error) {
	if !hostNamePattern.MatchString(hostName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, hostName)
	}

	basename := hostName + ".json"
	for _, dir := range r.paths.ForMode(mode) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidate := filepath.Join(dir, basename)
		raw, err := os.ReadFile(candidate)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				r.logger.Warn("skipping unreadable manifest",
					logging.String("path", candidate),
					logging.Error(err),
					logging.String(logging.FieldEventType, "manifest_read_failed"))
			}
			continue
		}

		var fields manifestFields
		if err := json.Unmarshal(raw, &fields); err != nil {
			r.logger.Warn("skipping malformed manifest",
				logging.String("path", candidate),
				logging.Error(err),
				logging.String(logging.FieldEventType, "manifest_parse_failed"))
			continue
		}

		if err := validateFields(fields, hostName); err != nil {
			r.logger.Warn("skipping invalid manifest",
				logging.String("path", candidate),
				logging.Error(err),
				logging.String(logging.FieldEventType, "manifest_invalid"))
			continue
		}

		r.logger.Debug("found manifest", logging.String("path", candidate))
		return &Manifest{
			Name:     fields.Name,
			Type:     fields.Type,
			Path:     fields.Path,
			FilePath: candidate,
			Raw:      raw,
		}, nil
	}

	r.logger.Debug("requested manifest not found",
		logging.String(logging.FieldHost, hostName),
		logging.String("mode", mode.String()))
	return nil, ErrNotFound
}

func validateFields(fields manifestFields, hostName string) error {
	if fields.Name != hostName {
		return fmt.Errorf("manifest name %q does not match requested host %q", fields.Name, hostName)
	}
	if fields.Type != "stdio" {
		return fmt.Errorf("not a %q type native messaging host: %q", "stdio", fields.Type)
	}
	if !filepath.IsAbs(fields.Path) {
		return fmt.Errorf("host path %q is not absolute", fields.Path)
	}
	return nil
}

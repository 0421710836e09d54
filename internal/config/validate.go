package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	for _, field := range []struct {
		name  string
		value *string
	}{
		{"paths.runtime_dir", &c.Paths.RuntimeDir},
		{"paths.log_dir", &c.Paths.LogDir},
	} {
		expanded, err := expandPath(*field.value)
		if err != nil {
			return fmt.Errorf("normalize %s: %w", field.name, err)
		}
		*field.value = expanded
	}

	for _, set := range []*[]string{&c.Hosts.ChromiumSearchPaths, &c.Hosts.MozillaSearchPaths} {
		normalized := make([]string, 0, len(*set))
		for _, dir := range *set {
			dir = strings.TrimSpace(dir)
			if dir == "" {
				continue
			}
			expanded, err := expandPath(dir)
			if err != nil {
				return fmt.Errorf("normalize search path %q: %w", dir, err)
			}
			normalized = append(normalized, expanded)
		}
		*set = normalized
	}

	c.Bus.Name = strings.TrimSpace(c.Bus.Name)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Paths.RuntimeDir == "" {
		return errors.New("paths.runtime_dir must be set")
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	if c.Bus.Name == "" {
		return errors.New("bus.name must be set")
	}
	if !validBusName(c.Bus.Name) {
		return fmt.Errorf("bus.name %q is not a valid well-known bus name", c.Bus.Name)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	for _, dir := range c.Hosts.ChromiumSearchPaths {
		if !filepath.IsAbs(dir) {
			return fmt.Errorf("hosts.chromium_search_paths entry %q is not absolute", dir)
		}
	}
	for _, dir := range c.Hosts.MozillaSearchPaths {
		if !filepath.IsAbs(dir) {
			return fmt.Errorf("hosts.mozilla_search_paths entry %q is not absolute", dir)
		}
	}
	return nil
}

// validBusName checks the D-Bus well-known name grammar: two or more
// dot-separated elements of [A-Za-z_-][A-Za-z0-9_-]*.
func validBusName(name string) bool {
	if len(name) > 255 || strings.HasPrefix(name, ":") {
		return false
	}
	elements := strings.Split(name, ".")
	if len(elements) < 2 {
		return false
	}
	for _, element := range elements {
		if element == "" {
			return false
		}
		for i, r := range element {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_', r == '-':
			case r >= '0' && r <= '9':
				if i == 0 {
					return false
				}
			default:
				return false
			}
		}
	}
	return true
}

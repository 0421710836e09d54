package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultLogDir   = "~/.local/share/xnmp/logs"
	defaultBusName  = "org.freedesktop.NativeMessagingProxy"
	defaultLogLevel = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			RuntimeDir: defaultRuntimeDir(),
			LogDir:     defaultLogDir,
		},
		Bus: Bus{
			Name: defaultBusName,
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
	}
}

func defaultRuntimeDir() string {
	if base, ok := os.LookupEnv("XDG_RUNTIME_DIR"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "xnmp")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("xnmp-%d", os.Getuid()))
}

// Package config resolves and loads Archivum's optional TOML config
// file, following the XDG Base Directory layout the way gofulmen's
// config package resolves paths, but with TOML in place of YAML/JSON
// per the CLI's own config format.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// ConfigDir returns the directory Archivum's config.toml lives in:
// $XDG_CONFIG_HOME/archivum (POSIX) or %APPDATA%\archivum (Windows).
func ConfigDir() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "archivum")
		}
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "archivum")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "archivum")
	}
	return "archivum"
}

// ConfigPath returns the full path to config.toml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

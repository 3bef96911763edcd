// Package config loads Dinah's settings and resolves where its files live.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDir = "dinah"

// DataDir is where the database and chat log live: $XDG_DATA_HOME/dinah,
// else ~/.local/share/dinah.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", ".local/share")
}

// ConfigDir is where config.yaml is looked up: $XDG_CONFIG_HOME/dinah, else
// ~/.config/dinah.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DefaultDatabasePath is the database used when none is configured.
func DefaultDatabasePath() string {
	return filepath.Join(DataDir(), "dinah.db")
}

func xdgDir(env, fallback string) string {
	if base := os.Getenv(env); filepath.IsAbs(base) {
		return filepath.Join(base, appDir)
	}
	return ExpandPath(filepath.Join("~", fallback, appDir))
}

// ExpandPath resolves a leading ~ to the home directory and expands $VARS.
// The path is returned unchanged if the home directory is unknown.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return os.ExpandEnv(path)
}

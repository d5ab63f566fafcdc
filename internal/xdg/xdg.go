// Package xdg resolves XDG Base Directory paths for one application.
package xdg

import (
	"os"
	"path/filepath"
)

// Dirs holds the per-application base directories.
type Dirs struct {
	app        string
	dataHome   string
	configHome string
	stateHome  string
	cacheHome  string
}

// New resolves the directories of app from the process environment.
func New(app string) Dirs {
	return FromEnv(app, os.Getenv)
}

// FromEnv resolves the directories of app using getenv. Unset or relative
// XDG variables fall back to the defaults under the home directory.
func FromEnv(app string, getenv func(string) string) Dirs {
	home := getenv("HOME")
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		} else {
			home = os.TempDir()
		}
	}
	base := func(env string, def ...string) string {
		if v := getenv(env); filepath.IsAbs(v) {
			return v
		}
		return filepath.Join(append([]string{home}, def...)...)
	}
	return Dirs{
		app:        app,
		dataHome:   base("XDG_DATA_HOME", ".local", "share"),
		configHome: base("XDG_CONFIG_HOME", ".config"),
		stateHome:  base("XDG_STATE_HOME", ".local", "state"),
		cacheHome:  base("XDG_CACHE_HOME", ".cache"),
	}
}

// DataDir returns the application-specific data directory
func (d Dirs) DataDir() string {
	return filepath.Join(d.dataHome, d.app)
}

// ConfigDir returns the application-specific config directory
func (d Dirs) ConfigDir() string {
	return filepath.Join(d.configHome, d.app)
}

// StateDir returns the application-specific state directory
func (d Dirs) StateDir() string {
	return filepath.Join(d.stateHome, d.app)
}

// CacheDir returns the application-specific cache directory
func (d Dirs) CacheDir() string {
	return filepath.Join(d.cacheHome, d.app)
}

// EnsureDir creates the directory with appropriate permissions if it doesn't exist
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Package config provides the persisted global configuration store and
// path management for the rig CLI.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Paths contains the standard paths for rig data.
type Paths struct {
	Data   string // ~/.local/share/rig
	Config string // ~/.config/rig
	Cache  string // ~/.cache/rig
	State  string // ~/.local/state/rig
}

// GetPaths returns the standard paths for rig data.
func GetPaths() *Paths {
	return &Paths{
		Data:   filepath.Join(getEnvOrDefault("XDG_DATA_HOME", defaultDataHome()), "rig"),
		Config: filepath.Join(getEnvOrDefault("XDG_CONFIG_HOME", defaultConfigHome()), "rig"),
		Cache:  filepath.Join(getEnvOrDefault("XDG_CACHE_HOME", defaultCacheHome()), "rig"),
		State:  filepath.Join(getEnvOrDefault("XDG_STATE_HOME", defaultStateHome()), "rig"),
	}
}

// EnsurePaths creates all required directories.
func (p *Paths) EnsurePaths() error {
	for _, dir := range []string{p.Data, p.Config, p.Cache, p.State} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// GetConfigDir returns the config directory to use.
// Prefers RIG_CONFIG_DIR, then ~/.rig if it exists, then ~/.config/rig.
func GetConfigDir() string {
	if dir := os.Getenv("RIG_CONFIG_DIR"); dir != "" {
		return dir
	}

	home := os.Getenv("HOME")
	if home != "" {
		dotDir := filepath.Join(home, ".rig")
		if _, err := os.Stat(dotDir); err == nil {
			return dotDir
		}
	}

	return GetPaths().Config
}

// GlobalConfigPath returns the path to the global config file.
func GlobalConfigPath() string {
	return filepath.Join(GetConfigDir(), "rig.json")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func defaultDataHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "share")
}

func defaultConfigHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".config")
}

func defaultCacheHome() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "cache")
	}
	return filepath.Join(os.Getenv("HOME"), ".cache")
}

func defaultStateHome() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("APPDATA")
	}
	return filepath.Join(os.Getenv("HOME"), ".local", "state")
}

package xdg

import (
	"os"
	"path/filepath"
)

// Dirs resolves the XDG base directories coderun writes to.
type Dirs struct {
	configHome string
	cacheHome  string
}

// New reads XDG_CONFIG_HOME and XDG_CACHE_HOME, falling back to the
// defaults under the user's home directory.
func New() *Dirs {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv("HOME")
		if homeDir == "" {
			homeDir = os.TempDir()
		}
	}

	d := &Dirs{}
	d.configHome = os.Getenv("XDG_CONFIG_HOME")
	if d.configHome == "" {
		d.configHome = filepath.Join(homeDir, ".config")
	}
	d.cacheHome = os.Getenv("XDG_CACHE_HOME")
	if d.cacheHome == "" {
		d.cacheHome = filepath.Join(homeDir, ".cache")
	}
	return d
}

// AppConfigDir returns the application-specific config directory
func (d *Dirs) AppConfigDir(appName string) string {
	return filepath.Join(d.configHome, appName)
}

// AppCacheDir returns the application-specific cache directory
func (d *Dirs) AppCacheDir(appName string) string {
	return filepath.Join(d.cacheHome, appName)
}

// EnsureDir creates the directory if it doesn't exist
func (d *Dirs) EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	// AppName names the per-user config and state directories.
	AppName = "randl"

	// EnvConfigDir overrides the XDG config directory for randl.
	EnvConfigDir = "RANDL_CONFIG_DIR"

	// ReposFile lists the repository URLs the user has added.
	ReposFile = "repos.txt"

	// SyncDir holds one synced copy per repository.
	SyncDir = "sync"

	// LogFile is the name of the log file in the state directory.
	LogFile = "randl.log"
)

// Paths resolves the on-disk locations used by randl.
type Paths struct {
	ConfigDir string
	StateDir  string
}

// NewPaths resolves the config and state directories, honouring
// RANDL_CONFIG_DIR. Nothing is created on disk.
func NewPaths() Paths {
	configDir := os.Getenv(EnvConfigDir)
	if configDir == "" {
		configDir = filepath.Join(xdg.ConfigHome, AppName)
	}
	return Paths{
		ConfigDir: configDir,
		StateDir:  filepath.Join(xdg.StateHome, AppName),
	}
}

// ConfigFile returns the path of config.toml.
func (p Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, DefaultConfigFile)
}

// ReposFile returns the path of repos.txt.
func (p Paths) ReposFile() string {
	return filepath.Join(p.ConfigDir, ReposFile)
}

// SyncDir returns the directory holding synced repositories.
func (p Paths) SyncDir() string {
	return filepath.Join(p.ConfigDir, SyncDir)
}

// LogFile returns the path of the log file.
func (p Paths) LogFile() string {
	return filepath.Join(p.StateDir, LogFile)
}

// Ensure creates the config and sync directories if they are missing.
func (p Paths) Ensure() error {
	for _, dir := range []string{p.ConfigDir, p.SyncDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}

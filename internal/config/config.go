// Package config provides configuration file parsing for steamsafe.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config is the steamsafe configuration, read from a TOML file.
// Command-line flags override file values; see internal/app.
type Config struct {
	// BackupRoot is the destination root all backups are written under.
	BackupRoot string `toml:"backup_root"`
	// SteamRoot overrides primary root autodetection when set.
	SteamRoot string `toml:"steam_root"`
	// MirrorBinary overrides the external mirroring utility name.
	MirrorBinary string `toml:"mirror_binary"`
	// ExcludeRoots lists case-sensitive path prefixes; any library root
	// matching one is never scanned.
	ExcludeRoots []string `toml:"exclude_roots"`
	// ExcludeApps lists app ids that are never backed up.
	ExcludeApps []string `toml:"exclude_apps"`
	// PlanOnly skips the mirror and launch-stub steps while discovery,
	// classification, and logging still run.
	PlanOnly bool `toml:"plan_only"`
	// DBPath locates the backup catalog database. Empty means
	// <config dir>/steamsafe.db.
	DBPath string `toml:"db_path"`
}

// Dir returns the steamsafe config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/steamsafe if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "steamsafe"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at path. A missing file yields an empty
// config without an error; a malformed file is an error, since silently
// ignoring a config the user wrote would back up the wrong things.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ExcludedApps returns the exclusion set keyed by app id.
func (c *Config) ExcludedApps() map[string]struct{} {
	set := make(map[string]struct{}, len(c.ExcludeApps))
	for _, id := range c.ExcludeApps {
		set[id] = struct{}{}
	}
	return set
}

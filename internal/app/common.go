package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/steamsafe/internal/config"
	"github.com/blackwell-systems/steamsafe/internal/library"
	"github.com/blackwell-systems/steamsafe/internal/store"
)

// loadConfig reads the config file named by --config, or the default
// location when the flag is unset.
func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("failed to locate config: %w", err)
		}
	}
	return config.Load(path)
}

// getDBPath returns the catalog database path: the --db flag, then the
// config file, then <config dir>/steamsafe.db.
func getDBPath(cfg *config.Config) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "steamsafe.db"), nil
}

// openStore opens the backup catalog, creating its directory and schema
// as needed.
func openStore(cfg *config.Config) (*store.Store, error) {
	path, err := getDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to get database path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := store.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.CreateSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}
	return db, nil
}

// resolveSteamRoot picks the primary Steam root: an explicit flag value,
// then the config file, then platform autodetection.
func resolveSteamRoot(flagValue string, cfg *config.Config) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if cfg.SteamRoot != "" {
		return cfg.SteamRoot, nil
	}
	return library.DefaultSteamRoot()
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
backup_root = "/mnt/backup/steam"
steam_root = "/home/kim/.steam/steam"
mirror_binary = "rclone-mirror"
exclude_roots = ["/mnt/slow"]
exclude_apps = ["228980", "250820"]
plan_only = true
db_path = "/var/lib/steamsafe/catalog.db"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.BackupRoot != "/mnt/backup/steam" || cfg.SteamRoot != "/home/kim/.steam/steam" {
		t.Errorf("unexpected roots: %+v", cfg)
	}
	if cfg.MirrorBinary != "rclone-mirror" || !cfg.PlanOnly {
		t.Errorf("unexpected options: %+v", cfg)
	}
	if len(cfg.ExcludeRoots) != 1 || cfg.ExcludeRoots[0] != "/mnt/slow" {
		t.Errorf("ExcludeRoots = %v", cfg.ExcludeRoots)
	}
	if len(cfg.ExcludeApps) != 2 {
		t.Errorf("ExcludeApps = %v", cfg.ExcludeApps)
	}
	if cfg.DBPath != "/var/lib/steamsafe/catalog.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
}

func TestLoadMissingFileIsEmptyConfig(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("missing config must not error: %v", err)
	}
	if cfg.BackupRoot != "" || cfg.PlanOnly || len(cfg.ExcludeApps) != 0 {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("backup_root = [broken"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestExcludedApps(t *testing.T) {
	cfg := &Config{ExcludeApps: []string{"10", "20"}}
	set := cfg.ExcludedApps()
	if len(set) != 2 {
		t.Fatalf("set = %v", set)
	}
	if _, ok := set["10"]; !ok {
		t.Error("missing id 10")
	}
	if _, ok := set["30"]; ok {
		t.Error("unexpected id 30")
	}
}

func TestDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := Dir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "steamsafe") {
		t.Errorf("Dir = %q", dir)
	}
}

package app

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/steamsafe/internal/config"
	"github.com/blackwell-systems/steamsafe/internal/library"
	"github.com/blackwell-systems/steamsafe/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchStop        bool
	watchSettle      time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Re-run backups when Steam finishes installing or updating",
		Long: `Watch every Steam library for app manifest changes and re-run the backup
once the library settles. Steam rewrites manifests continuously during a
download; the settle interval makes sure a backup starts only after the
install or update has finished.

Requires a backup destination, from --dest on the backup command's config
or backup_root in the config file.`,
		Example: `  # Watch in the foreground
  steamsafe watch

  # Watch in the background
  steamsafe watch --daemon

  # Stop the background watcher
  steamsafe watch --stop`,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run in the background")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal: run as the forked daemon child")
	watchCmd.Flags().MarkHidden("daemon-child")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop a running background watcher")
	watchCmd.Flags().DurationVar(&watchSettle, "settle", watcher.DefaultSettle, "quiet time after the last manifest change before backing up")
}

func runWatch(cmd *cobra.Command, args []string) error {
	pidFile, logFile, err := daemonFiles()
	if err != nil {
		return err
	}

	if watchStop {
		if err := watcher.StopDaemon(pidFile); err != nil {
			return err
		}
		fmt.Println("watcher stopped")
		return nil
	}

	if watchDaemon {
		if err := watcher.StartDaemon(pidFile, logFile); err != nil {
			return err
		}
		fmt.Printf("watcher started (log: %s)\n", logFile)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.BackupRoot == "" {
		return fmt.Errorf("no backup destination: set backup_root in the config file before watching")
	}

	steamRoot, err := resolveSteamRoot("", cfg)
	if err != nil {
		return err
	}
	discovery, err := library.Discover(steamRoot, cfg.ExcludeRoots)
	if err != nil {
		return err
	}

	w, err := watcher.New(func() {
		fmt.Printf("manifest changes settled; starting backup at %s\n", time.Now().Format(time.RFC3339))
		if err := runBackup(cmd, nil); err != nil {
			fmt.Fprintf(os.Stderr, "watch-triggered backup failed: %v\n", err)
		}
	}, watchSettle)
	if err != nil {
		return err
	}

	for _, root := range discovery.Roots {
		if err := w.WatchLibrary(filepath.Join(root, library.SteamAppsDir)); err != nil {
			return err
		}
	}

	if watchDaemonChild {
		return w.RunDaemon(pidFile)
	}

	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	fmt.Printf("watching %d librar(ies); settle interval %s (Ctrl-C to stop)\n", len(discovery.Roots), watchSettle)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	return nil
}

// daemonFiles returns the PID and log file locations under the config dir.
func daemonFiles() (pidFile, logFile string, err error) {
	dir, err := config.Dir()
	if err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return filepath.Join(dir, "watch.pid"), filepath.Join(dir, "watch.log"), nil
}

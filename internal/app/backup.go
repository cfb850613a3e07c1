package app

import (
	"fmt"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/steamsafe/internal/config"
	"github.com/blackwell-systems/steamsafe/internal/manifest"
	"github.com/blackwell-systems/steamsafe/internal/mirror"
	"github.com/blackwell-systems/steamsafe/internal/output"
	"github.com/blackwell-systems/steamsafe/internal/runner"
	"github.com/blackwell-systems/steamsafe/internal/store"
)

var (
	backupDest         string
	backupSteamRoot    string
	backupPlanOnly     bool
	backupQuiet        bool
	backupMirrorBin    string
	backupExcludeApps  []string
	backupExcludeRoots []string

	backupCmd = &cobra.Command{
		Use:   "backup",
		Short: "Back up all fully installed apps to the destination root",
		Long: `Back up every fully installed, non-excluded app from every Steam library
into the destination root.

Backups are partitioned by app id and build id: a new build of a game is
written next to the old build's backup, never over it. Files already
present and unchanged at the destination are compared, not recopied, so
re-running against an unchanged library is a fast metadata pass.

Apps mid-download, mid-update, or pending verification are skipped; a
mirror of a half-written install would be corrupt by construction.`,
		Example: `  # Back up everything to an external drive
  steamsafe backup --dest /mnt/backup/steam

  # Dry run: discovery, classification, and planning only
  steamsafe backup --dest /mnt/backup/steam --plan-only

  # Skip redistributable packages and a slow library disk
  steamsafe backup --dest /mnt/backup/steam --exclude-app 228980 --exclude-root /mnt/slow`,
		RunE: runBackup,
	}
)

func init() {
	backupCmd.Flags().StringVar(&backupDest, "dest", "", "backup destination root (required unless set in config)")
	backupCmd.Flags().StringVar(&backupSteamRoot, "steam-root", "", "primary Steam root (default: autodetect)")
	backupCmd.Flags().BoolVar(&backupPlanOnly, "plan-only", false, "plan and classify but skip the mirror copy")
	backupCmd.Flags().BoolVar(&backupQuiet, "quiet", false, "suppress per-app output")
	backupCmd.Flags().StringVar(&backupMirrorBin, "mirror-bin", "", "override the mirroring utility binary")
	backupCmd.Flags().StringSliceVar(&backupExcludeApps, "exclude-app", nil, "app id to skip (repeatable)")
	backupCmd.Flags().StringSliceVar(&backupExcludeRoots, "exclude-root", nil, "library root prefix to skip (repeatable)")
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyBackupFlags(cfg)

	if cfg.BackupRoot == "" {
		return fmt.Errorf("no backup destination: pass --dest or set backup_root in the config file")
	}

	steamRoot, err := resolveSteamRoot(backupSteamRoot, cfg)
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	r := runner.New(runner.Options{
		SteamRoot:       steamRoot,
		BackupRoot:      cfg.BackupRoot,
		ExcludePrefixes: cfg.ExcludeRoots,
		ExcludeApps:     cfg.ExcludedApps(),
		PlanOnly:        cfg.PlanOnly,
	}, mirror.New(mirror.WithBinary(cfg.MirrorBinary)))

	if !backupQuiet {
		r.Logf = func(format string, a ...any) {
			fmt.Printf(format+"\n", a...)
		}
		if isatty.IsTerminal(os.Stdout.Fd()) {
			r.Progress = func(label string) (mirror.ProgressSink, func(time.Duration)) {
				p := output.NewMirrorProgress(label)
				sink := func(u mirror.Update) {
					if u.Indeterminate {
						p.Comparing()
					} else {
						p.Update(u.Percent, u.CurrentFile)
					}
				}
				return sink, p.Finish
			}
		}
	}

	out, err := r.Run(cmd.Context())
	if err != nil {
		return err
	}

	if !backupQuiet {
		printBuildChanges(db, out)
	}

	if recordErr := recordOutcome(db, out); recordErr != nil && !backupQuiet {
		fmt.Printf("warning: could not record run in catalog: %v\n", recordErr)
	}

	if !backupQuiet {
		printSummary(out)
	}

	if out.Fatal {
		return out.FatalErr
	}
	return nil
}

// applyBackupFlags overlays command-line flags onto the file config.
// Flags append to or replace file values; they never un-set them.
func applyBackupFlags(cfg *config.Config) {
	if backupDest != "" {
		cfg.BackupRoot = backupDest
	}
	if backupMirrorBin != "" {
		cfg.MirrorBinary = backupMirrorBin
	}
	if backupPlanOnly {
		cfg.PlanOnly = true
	}
	cfg.ExcludeApps = append(cfg.ExcludeApps, backupExcludeApps...)
	cfg.ExcludeRoots = append(cfg.ExcludeRoots, backupExcludeRoots...)
}

// printBuildChanges compares each backed-up app against the catalog's
// previous build. Must run before the run is recorded, or every app
// would compare against itself.
func printBuildChanges(db *store.Store, out *runner.Outcome) {
	for _, b := range out.Backups {
		prev, err := db.LastBuildID(b.AppID)
		if err != nil {
			continue
		}
		switch {
		case prev == "":
			fmt.Printf("  %s: first backup (build %s)\n", b.Name, b.BuildID)
		case prev != b.BuildID:
			fmt.Printf("  %s: new build %s backed up alongside build %s\n", b.Name, b.BuildID, prev)
		}
	}
}

// recordOutcome persists one run to the backup catalog.
func recordOutcome(db *store.Store, out *runner.Outcome) error {
	run := &store.Run{
		StartedAt:  out.StartedAt,
		FinishedAt: out.FinishedAt,
		PlanOnly:   out.PlanOnly,
		Fatal:      out.Fatal,
		Eligible:   out.Eligible,
		Skipped:    out.Skipped,
	}
	if out.FatalErr != nil {
		run.FatalError = out.FatalErr.Error()
	}

	backups := make([]*store.Backup, 0, len(out.Backups))
	for _, b := range out.Backups {
		backups = append(backups, &store.Backup{
			AppID:    b.AppID,
			Name:     b.Name,
			BuildID:  b.BuildID,
			Library:  b.Library,
			Duration: b.Duration,
		})
	}

	_, err := db.RecordRun(run, backups)
	return err
}

func printSummary(out *runner.Outcome) {
	fmt.Println()
	if out.PlanOnly {
		fmt.Printf("Plan complete: %d app(s) would be backed up, %d skipped\n", out.Eligible, out.Skipped)
	} else {
		fmt.Printf("Backup complete: %d app(s) backed up, %d skipped\n", len(out.Backups), out.Skipped)
	}
	for _, reason := range []manifest.Reason{manifest.Incomplete, manifest.Excluded, manifest.Corrupt} {
		if n := out.SkippedByReason[reason]; n > 0 {
			fmt.Printf("  %d skipped: %s\n", n, reason)
		}
	}
	if out.Fatal {
		fmt.Printf("Run aborted: %v\n", out.FatalErr)
	}
}

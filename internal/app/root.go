package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	cfgPath string
	dbPath  string

	// RootCmd is the root command for steamsafe
	RootCmd = &cobra.Command{
		Use:   "steamsafe",
		Short: "Build-versioned incremental backups of installed Steam apps",
		Long: `steamsafe discovers every Steam library on this machine, works out which
apps are fully installed, and mirrors each one into a build-versioned
backup tree. Re-runs are incremental: unchanged files are compared, not
recopied, and a new build id always gets a fresh subtree next to the old
one.

Each backup carries the app manifest it was taken from and a
steam_appid.txt launch stub, so a backed-up game can be launched straight
out of the backup directory.

Examples:
  # Back up every fully installed app to an external drive
  steamsafe backup --dest /mnt/backup/steam

  # See what would be backed up without copying anything
  steamsafe backup --dest /mnt/backup/steam --plan-only

  # Inspect libraries and per-app eligibility
  steamsafe libraries

  # Review past runs
  steamsafe history

  # Re-run automatically whenever Steam finishes an install or update
  steamsafe watch --daemon`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("steamsafe: build-versioned incremental backups of installed Steam apps")
			fmt.Println()
			fmt.Println("Run 'steamsafe backup --dest <dir>' to back up your libraries.")
			fmt.Println("Run 'steamsafe --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default: ~/.config/steamsafe/config.toml)")
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "backup catalog database (default: ~/.config/steamsafe/steamsafe.db)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	// Register subcommands
	RootCmd.AddCommand(backupCmd)
	RootCmd.AddCommand(librariesCmd)
	RootCmd.AddCommand(historyCmd)
	RootCmd.AddCommand(watchCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

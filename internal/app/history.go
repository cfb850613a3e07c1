package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/steamsafe/internal/output"
)

var (
	historyLimit int
	historyRun   int64

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show past backup runs from the catalog",
		Long: `Show recent backup runs recorded in the catalog database, newest first.
Use --run to list the individual app backups of one run.`,
		Example: `  # Recent runs
  steamsafe history

  # Everything ever recorded
  steamsafe history --limit 0

  # Apps backed up in run 12
  steamsafe history --run 12`,
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum runs to show (0 = all)")
	historyCmd.Flags().Int64Var(&historyRun, "run", 0, "show the app backups of one run id")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if historyRun > 0 {
		run, err := db.GetRun(historyRun)
		if err != nil {
			return err
		}
		backups, err := db.ListBackups(run.ID)
		if err != nil {
			return err
		}
		fmt.Print(output.RenderBackupTable(backups))
		return nil
	}

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	fmt.Print(output.RenderRunTable(runs))
	return nil
}

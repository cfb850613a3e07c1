// Package output provides terminal output utilities for steamsafe:
// tables for classification reports and run history, plus streaming
// progress rendering for mirror operations.
package output

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/steamsafe/internal/manifest"
	"github.com/blackwell-systems/steamsafe/internal/store"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// RenderClassificationTable renders the per-library classification report
// produced by the libraries command.
func RenderClassificationTable(library string, results []manifest.Classification) string {
	if len(results) == 0 {
		return fmt.Sprintf("%s: no app manifests found.\n", library)
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.SetTitle(library)
	tw.AppendHeader(table.Row{"App ID", "Name", "Build", "Status"})

	for _, res := range results {
		buildID := ""
		if c, ok := res.Record.(manifest.Complete); ok {
			buildID = c.BuildID
		}
		status := res.Reason.String()
		if res.Eligible {
			status = "eligible"
		}
		tw.AppendRow(table.Row{res.Record.AppID(), res.Record.DisplayName(), buildID, status})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render() + "\n"
}

// RenderRunTable renders recent runs from the backup catalog.
func RenderRunTable(runs []*store.Run) string {
	if len(runs) == 0 {
		return "No runs recorded.\n"
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Run", "Started", "Duration", "Eligible", "Skipped", "Result"})

	for _, run := range runs {
		result := "ok"
		if run.Fatal {
			result = "fatal: " + run.FatalError
		} else if run.PlanOnly {
			result = "plan only"
		}
		tw.AppendRow(table.Row{
			run.ID,
			humanize.Time(run.StartedAt),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String(),
			run.Eligible,
			run.Skipped,
			result,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render() + "\n"
}

// RenderBackupTable renders the per-app rows of one run.
func RenderBackupTable(backups []*store.Backup) string {
	if len(backups) == 0 {
		return "No backups in this run.\n"
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"App ID", "Name", "Build", "Library", "Duration"})

	for _, b := range backups {
		tw.AppendRow(table.Row{b.AppID, b.Name, b.BuildID, b.Library, b.Duration.Round(time.Millisecond).String()})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render() + "\n"
}

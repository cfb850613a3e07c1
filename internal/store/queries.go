package store

import (
	"database/sql"
	"fmt"
	"time"
)

// RecordRun inserts a run and its backups in one transaction and returns
// the run id.
func (s *Store) RecordRun(run *Run, backups []*Backup) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO runs (started_at, finished_at, plan_only, fatal, fatal_error, eligible, skipped)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.Format(time.RFC3339),
		run.FinishedAt.Format(time.RFC3339),
		run.PlanOnly,
		run.Fatal,
		run.FatalError,
		run.Eligible,
		run.Skipped,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	for _, b := range backups {
		_, err := tx.Exec(`
			INSERT INTO backups (run_id, app_id, name, build_id, library, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?)`,
			runID, b.AppID, b.Name, b.BuildID, b.Library, b.Duration.Milliseconds(),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert backup for app %s: %w", b.AppID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first, up to limit.
// A limit <= 0 returns all runs.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	query := `
		SELECT id, started_at, finished_at, plan_only, fatal, fatal_error, eligible, skipped
		FROM runs
		ORDER BY started_at DESC, id DESC`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.Query(query+" LIMIT ?", limit)
	} else {
		rows, err = s.db.Query(query)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun retrieves a single run by id.
func (s *Store) GetRun(id int64) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, finished_at, plan_only, fatal, fatal_error, eligible, skipped
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListBackups returns the backups recorded for one run.
func (s *Store) ListBackups(runID int64) ([]*Backup, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, app_id, name, build_id, library, duration_ms
		FROM backups WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list backups for run %d: %w", runID, err)
	}
	defer rows.Close()

	var backups []*Backup
	for rows.Next() {
		var b Backup
		var durationMs int64
		if err := rows.Scan(&b.ID, &b.RunID, &b.AppID, &b.Name, &b.BuildID, &b.Library, &durationMs); err != nil {
			return nil, fmt.Errorf("failed to scan backup: %w", err)
		}
		b.Duration = time.Duration(durationMs) * time.Millisecond
		backups = append(backups, &b)
	}
	return backups, rows.Err()
}

// LastBuildID returns the most recently backed up build id for an app,
// or "" if the app has never been backed up.
func (s *Store) LastBuildID(appID string) (string, error) {
	var buildID string
	err := s.db.QueryRow(`
		SELECT build_id FROM backups
		WHERE app_id = ? ORDER BY id DESC LIMIT 1`, appID).Scan(&buildID)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query last build for app %s: %w", appID, err)
	}
	return buildID, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanRun.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var run Run
	var startedAt, finishedAt string
	var fatalError sql.NullString

	err := row.Scan(&run.ID, &startedAt, &finishedAt, &run.PlanOnly, &run.Fatal, &fatalError, &run.Eligible, &run.Skipped)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at: %w", err)
	}
	run.FinishedAt, err = time.Parse(time.RFC3339, finishedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse finished_at: %w", err)
	}
	run.FatalError = fatalError.String
	return &run, nil
}

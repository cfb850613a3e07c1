package store

import "time"

// Run is one recorded invocation of the backup pipeline.
type Run struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	PlanOnly   bool
	Fatal      bool
	FatalError string
	Eligible   int
	Skipped    int
}

// Backup is one app backed up during a run.
type Backup struct {
	ID       int64
	RunID    int64
	AppID    string
	Name     string
	BuildID  string
	Library  string
	Duration time.Duration
}

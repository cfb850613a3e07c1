// Package runner sequences one backup run: library discovery,
// classification, planning, and the mirror copy, aggregating outcomes
// and enforcing the fail-fast policy on unreachable destinations.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/blackwell-systems/steamsafe/internal/library"
	"github.com/blackwell-systems/steamsafe/internal/manifest"
	"github.com/blackwell-systems/steamsafe/internal/mirror"
	"github.com/blackwell-systems/steamsafe/internal/planner"
)

// LockFile is created under the backup root so that a scheduled run and
// a manual run never mirror concurrently.
const LockFile = ".steamsafe.lock"

// Options configures one run.
type Options struct {
	SteamRoot       string
	BackupRoot      string
	ExcludePrefixes []string
	ExcludeApps     map[string]struct{}
	// PlanOnly skips the mirror copy and the launch stub; discovery,
	// classification, planning, and logging still run.
	PlanOnly bool
}

// AppResult records one completed app backup.
type AppResult struct {
	AppID    string
	Name     string
	BuildID  string
	Library  string
	Duration time.Duration
}

// Outcome aggregates one run. It is owned and mutated only by the Runner
// on its own goroutine; execution is strictly sequential.
type Outcome struct {
	StartedAt       time.Time
	FinishedAt      time.Time
	PlanOnly        bool
	Eligible        int
	Skipped         int
	SkippedByReason map[manifest.Reason]int
	Backups         []AppResult
	ExcludedRoots   []string

	// Fatal is set when the backup destination became unreachable; the
	// run aborts immediately and FatalErr names the destination.
	Fatal    bool
	FatalErr error
}

// Runner executes backup runs.
type Runner struct {
	opts   Options
	mirror mirror.Mirrorer
	lock   *flock.Flock

	// Logf receives informational run output. Defaults to a no-op.
	Logf func(format string, args ...any)
	// Progress, when set, supplies a per-app progress sink labelled with
	// the app's display name, plus a completion callback invoked with
	// the elapsed copy time once the mirror finishes.
	Progress func(label string) (mirror.ProgressSink, func(elapsed time.Duration))
}

// New creates a Runner. The mirrorer is required.
func New(opts Options, m mirror.Mirrorer) *Runner {
	return &Runner{
		opts:   opts,
		mirror: m,
		Logf:   func(string, ...any) {},
	}
}

// errFatal marks the unwinding of a destination-unreachable abort so the
// per-library loop can distinguish it from ordinary per-app noise.
type errFatal struct{ err error }

func (e errFatal) Error() string { return e.err.Error() }
func (e errFatal) Unwrap() error { return e.err }

// Run executes one backup run. The returned error covers conditions that
// prevent a run from happening at all (no library configuration, another
// run holding the lock, cancellation); a destination that became
// unreachable mid-run is reported through Outcome.Fatal instead, since
// already-written backups remain valid.
func (r *Runner) Run(ctx context.Context) (*Outcome, error) {
	out := &Outcome{
		StartedAt:       time.Now(),
		PlanOnly:        r.opts.PlanOnly,
		SkippedByReason: make(map[manifest.Reason]int),
	}
	defer func() {
		out.FinishedAt = time.Now()
		if r.lock != nil {
			r.lock.Unlock()
			r.lock = nil
		}
	}()

	discovery, err := library.Discover(r.opts.SteamRoot, r.opts.ExcludePrefixes)
	if err != nil {
		return nil, err
	}
	out.ExcludedRoots = discovery.ExcludedRoots
	for _, root := range discovery.ExcludedRoots {
		r.Logf("excluding library %s (matches excluded prefix)", root)
	}
	r.Logf("discovered %d librar(ies)", len(discovery.Roots))

	for _, root := range discovery.Roots {
		if err := r.processLibrary(ctx, root, out); err != nil {
			if _, ok := err.(errFatal); ok {
				// Fail fast: no app in this or any later library runs.
				return out, nil
			}
			return out, err
		}
	}

	return out, nil
}

func (r *Runner) processLibrary(ctx context.Context, root string, out *Outcome) error {
	paths, err := library.Manifests(root)
	if err != nil {
		r.Logf("library %s: %v", root, err)
		return nil
	}

	var eligible []manifest.Complete
	for _, path := range paths {
		rec := manifest.Load(path, root)
		cls := manifest.Classify(rec, r.opts.ExcludeApps)
		if cls.Eligible {
			out.Eligible++
			eligible = append(eligible, cls.Record.(manifest.Complete))
			continue
		}
		out.Skipped++
		out.SkippedByReason[cls.Reason]++
		r.Logf("  skipping %s (%s): %s", cls.Record.AppID(), cls.Record.DisplayName(), cls.Reason)
	}
	r.Logf("library %s: %d eligible, %d skipped", root, len(eligible), len(paths)-len(eligible))

	for _, rec := range eligible {
		if err := r.processApp(ctx, rec, out); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) processApp(ctx context.Context, rec manifest.Complete, out *Outcome) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// Reachability is re-checked per app: the destination may be a
	// network share or removable disk that vanishes mid-run.
	if _, err := os.Stat(r.opts.BackupRoot); err != nil {
		out.Fatal = true
		out.FatalErr = fmt.Errorf("backup destination unreachable: %s: %w", r.opts.BackupRoot, err)
		r.Logf("FATAL: %v", out.FatalErr)
		return errFatal{out.FatalErr}
	}

	if err := r.acquireLock(); err != nil {
		return err
	}

	plan := planner.Plan(rec, r.opts.BackupRoot)
	start := time.Now()

	plan.CreateMarker()
	if err := plan.CopyManifest(); err != nil {
		r.Logf("  %s: %v; app skipped", rec.Name, err)
		return nil
	}

	if !r.opts.PlanOnly {
		var sink mirror.ProgressSink
		var done func(time.Duration)
		if r.Progress != nil {
			sink, done = r.Progress(rec.Name)
		}
		if err := r.mirror.Mirror(ctx, plan.SourceDir, plan.DestInstallDir, sink); err != nil {
			r.Logf("  %s: mirror failed: %v", rec.Name, err)
			return nil
		}
		if done != nil {
			done(time.Since(start))
		}
		if err := plan.WriteLaunchStub(); err != nil {
			r.Logf("  %s: %v", rec.Name, err)
		}
	}

	out.Backups = append(out.Backups, AppResult{
		AppID:    rec.ID,
		Name:     rec.Name,
		BuildID:  rec.BuildID,
		Library:  rec.Library,
		Duration: time.Since(start),
	})
	r.Logf("  backed up %s (%s) build %s in %s", rec.Name, rec.ID, rec.BuildID, time.Since(start).Round(time.Millisecond))
	return nil
}

// acquireLock takes the run lock under the backup root once per run.
// A held lock means another steamsafe run is mirroring into the same
// destination; interleaving with it would defeat the incremental-copy
// idempotence guarantees.
func (r *Runner) acquireLock() error {
	if r.lock != nil {
		return nil
	}
	lock := flock.New(filepath.Join(r.opts.BackupRoot, LockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another backup run is already writing to %s", r.opts.BackupRoot)
	}
	r.lock = lock
	return nil
}

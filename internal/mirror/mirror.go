// Package mirror runs the external incremental mirroring utility and
// surfaces its per-file progress stream.
//
// The utility itself is not reimplemented: it is a mature robocopy-style
// tool that copies files new or changed by size/timestamp, skips
// identical destination files, recurses, and does not follow junction or
// reparse points. Re-running it against an unchanged tree is a fast
// comparison-only pass. This package only consumes its contract.
package mirror

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// Update is one progress observation from the mirroring utility.
// Before any per-file data arrives the utility compares the source and
// destination trees; that phase is reported once with Indeterminate set
// instead of a misleading 0%.
type Update struct {
	Percent       float64
	CurrentFile   string
	Indeterminate bool
}

// ProgressSink receives progress updates. May be nil.
type ProgressSink func(Update)

// Mirrorer mirrors a source directory into a destination directory.
// Implementations stream progress to the sink as a finite, non-restartable
// sequence of events.
type Mirrorer interface {
	Mirror(ctx context.Context, sourceDir, destDir string, sink ProgressSink) error
}

// Option configures the Robocopy adapter.
type Option func(*Robocopy)

// WithBinary overrides the default mirroring binary name.
func WithBinary(binary string) Option {
	return func(r *Robocopy) {
		if binary != "" {
			r.binary = binary
		}
	}
}

// Robocopy adapts the external mirroring utility to the Mirrorer
// interface. The utility emits one tab-separated line per processed file
// carrying a percentage field and the current file name.
type Robocopy struct {
	binary string
}

// New constructs a Robocopy adapter using defaults.
func New(opts ...Option) *Robocopy {
	r := &Robocopy{binary: "robocopy"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mirror runs the utility and consumes its progress stream line by line.
//
// The utility's exit status is not treated as fatal: per-file retries and
// transient errors are its internal concern, and its success exit codes
// form a range rather than a single zero. Only failures to start the
// process or read its output propagate. Destination reachability is the
// caller's responsibility and is checked before Mirror is invoked.
func (r *Robocopy) Mirror(ctx context.Context, sourceDir, destDir string, sink ProgressSink) error {
	if sourceDir == "" {
		return errors.New("source directory required")
	}
	if destDir == "" {
		return errors.New("destination directory required")
	}

	args := []string{
		sourceDir, destDir,
		"/E",   // recurse, including empty directories
		"/XJ",  // never follow junction/reparse points
		"/NDL", // no directory lines in output
		"/NJH", // no header
		"/NJS", // no summary
	}
	cmd := commandContext(ctx, r.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open mirror output pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start mirror utility %s: %w", r.binary, err)
	}

	// The initial tree comparison produces no per-file lines; report it
	// once as indeterminate so callers can render "comparing" feedback.
	if sink != nil {
		sink(Update{Indeterminate: true})
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if update, ok := parseProgressLine(scanner.Text()); ok && sink != nil {
			sink(update)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read mirror output: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Informational exit code; retries already happened inside
			// the utility.
			return nil
		}
		return fmt.Errorf("mirror utility failed: %w", err)
	}
	return nil
}

// parseProgressLine extracts (percentage, current file) from one
// tab-separated progress line. Lines without both fields are skipped.
func parseProgressLine(line string) (Update, bool) {
	fields := strings.Split(line, "\t")
	if len(fields) < 2 {
		return Update{}, false
	}

	var update Update
	havePercent := false
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		if !havePercent {
			if pct, ok := parsePercent(field); ok {
				update.Percent = pct
				havePercent = true
				continue
			}
		}
		// The last non-percentage field is the current file name; size
		// and flag columns parse as neither and are kept only if no
		// later field replaces them.
		update.CurrentFile = field
	}

	if !havePercent {
		return Update{}, false
	}
	return update, true
}

func parsePercent(field string) (float64, bool) {
	s := strings.TrimSuffix(field, "%")
	if s == field {
		return 0, false
	}
	pct, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || pct < 0 || pct > 100 {
		return 0, false
	}
	return pct, true
}

var _ Mirrorer = (*Robocopy)(nil)

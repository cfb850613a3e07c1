package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/steamsafe/internal/manifest"
	"github.com/blackwell-systems/steamsafe/internal/store"
)

func TestMirrorProgressNonTTY(t *testing.T) {
	var buf bytes.Buffer
	p := NewMirrorProgress("Team Fortress 2")
	p.SetWriter(&buf)

	p.Comparing()
	p.Update(25, "data/a.pak")
	p.Update(50, "data/b.pak")
	p.Finish(90 * time.Second)

	out := buf.String()
	if !strings.Contains(out, "Team Fortress 2: comparing...") {
		t.Errorf("missing comparing line: %q", out)
	}
	// Per-file updates are suppressed off-TTY to keep logs clean.
	if strings.Contains(out, "data/a.pak") || strings.Contains(out, "data/b.pak") {
		t.Errorf("per-file updates leaked to non-TTY output: %q", out)
	}
	if !strings.Contains(out, "done in 1m30s") {
		t.Errorf("missing finish line: %q", out)
	}
}

func TestSpinnerNonTTYPrintsOnce(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Discovering libraries")
	s.SetWriter(&buf)

	s.Start()
	s.Stop()

	if got := buf.String(); got != "Discovering libraries...\n" {
		t.Errorf("output = %q", got)
	}
}

func TestSpinnerStopWithMessage(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Scanning")
	s.SetWriter(&buf)

	s.Start()
	s.StopWithMessage("✓ 3 libraries found")

	if !strings.Contains(buf.String(), "✓ 3 libraries found") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRenderClassificationTable(t *testing.T) {
	results := []manifest.Classification{
		{
			Record:   manifest.Complete{ID: "440", Name: "Team Fortress 2", BuildID: "8941366", StateFlags: 4},
			Eligible: true,
			Reason:   manifest.FullyInstalled,
		},
		{
			Record: manifest.Complete{ID: "570", Name: "Dota 2", BuildID: "100", StateFlags: 2},
			Reason: manifest.Incomplete,
		},
		{
			Record: manifest.Partial{ID: "999", Name: "appmanifest_999.acf"},
			Reason: manifest.Corrupt,
		},
	}

	out := RenderClassificationTable("/steam", results)
	for _, want := range []string{"440", "Team Fortress 2", "eligible", "incomplete", "corrupt", "appmanifest_999.acf"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderClassificationTableEmpty(t *testing.T) {
	out := RenderClassificationTable("/steam", nil)
	if !strings.Contains(out, "no app manifests") {
		t.Errorf("out = %q", out)
	}
}

func TestRenderRunTable(t *testing.T) {
	started := time.Now().Add(-time.Hour)
	runs := []*store.Run{
		{ID: 2, StartedAt: started, FinishedAt: started.Add(5 * time.Minute), Eligible: 3, Skipped: 1},
		{ID: 1, StartedAt: started.Add(-24 * time.Hour), FinishedAt: started.Add(-24*time.Hour + time.Minute), Fatal: true, FatalError: "backup destination unreachable"},
	}

	out := RenderRunTable(runs)
	for _, want := range []string{"5m0s", "fatal: backup destination unreachable", "ok"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderBackupTable(t *testing.T) {
	backups := []*store.Backup{
		{AppID: "440", Name: "Team Fortress 2", BuildID: "8941366", Library: "/steam", Duration: 90 * time.Second},
	}
	out := RenderBackupTable(backups)
	for _, want := range []string{"440", "Team Fortress 2", "8941366", "/steam"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if empty := RenderBackupTable(nil); !strings.Contains(empty, "No backups") {
		t.Errorf("empty table = %q", empty)
	}
}

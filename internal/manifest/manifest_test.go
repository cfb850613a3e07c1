package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write manifest fixture: %v", err)
	}
	return path
}

func TestLoadComplete(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "appmanifest_440.acf", `"AppState"
{
	"appid"		"440"
	"name"		"Team Fortress 2"
	"StateFlags"		"4"
	"installdir"		"Team Fortress 2"
	"buildid"		"8941366"
}`)

	rec := Load(path, "/steam/lib1")
	c, ok := rec.(Complete)
	if !ok {
		t.Fatalf("Load returned %T, want Complete", rec)
	}

	if c.ID != "440" || c.Name != "Team Fortress 2" {
		t.Errorf("unexpected identity: id=%q name=%q", c.ID, c.Name)
	}
	if c.InstallDir != "Team Fortress 2" || c.BuildID != "8941366" {
		t.Errorf("unexpected install fields: dir=%q build=%q", c.InstallDir, c.BuildID)
	}
	if c.StateFlags != StateFullyInstalled {
		t.Errorf("StateFlags = %d, want %d", c.StateFlags, StateFullyInstalled)
	}
	if c.Library != "/steam/lib1" {
		t.Errorf("Library = %q", c.Library)
	}
}

func TestLoadGarbageYieldsPartial(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "appmanifest_570.acf", "%%% not a manifest {{{")

	rec := Load(path, dir)
	p, ok := rec.(Partial)
	if !ok {
		t.Fatalf("Load returned %T, want Partial", rec)
	}
	if p.ID != "570" {
		t.Errorf("recovered id = %q, want 570", p.ID)
	}
	if p.Name != "appmanifest_570.acf" {
		t.Errorf("recovered name = %q, want filename", p.Name)
	}
}

func TestLoadEmptyFieldsYieldsPartial(t *testing.T) {
	dir := t.TempDir()
	// Parses fine, but has no appid, no name, and no StateFlags.
	path := writeManifest(t, dir, "appmanifest_7.acf", `"AppState" { "Universe" "1" }`)

	rec := Load(path, dir)
	if p, ok := rec.(Partial); !ok || p.ID != "7" {
		t.Fatalf("Load returned %#v, want Partial with id 7", rec)
	}
}

func TestLoadPartialFieldsStaysComplete(t *testing.T) {
	dir := t.TempDir()
	// An appid alone is enough to keep the record Complete; the missing
	// StateFlags then classifies it Incomplete, not Corrupt.
	path := writeManifest(t, dir, "appmanifest_10.acf", `"AppState" { "appid" "10" }`)

	rec := Load(path, dir)
	c, ok := rec.(Complete)
	if !ok {
		t.Fatalf("Load returned %T, want Complete", rec)
	}
	if c.StateFlags != 0 {
		t.Errorf("StateFlags = %d, want 0", c.StateFlags)
	}
}

func TestLoadMissingFile(t *testing.T) {
	rec := Load(filepath.Join(t.TempDir(), "appmanifest_99.acf"), "")
	if p, ok := rec.(Partial); !ok || p.ID != "99" {
		t.Fatalf("Load of missing file returned %#v, want Partial with id 99", rec)
	}
}

func TestClassify(t *testing.T) {
	excluded := map[string]struct{}{"228980": {}}

	cases := []struct {
		name     string
		rec      Record
		eligible bool
		reason   Reason
	}{
		{
			name:     "fully installed",
			rec:      Complete{ID: "440", Name: "TF2", StateFlags: 4},
			eligible: true,
			reason:   FullyInstalled,
		},
		{
			name:   "update pending",
			rec:    Complete{ID: "440", Name: "TF2", StateFlags: 6},
			reason: Incomplete,
		},
		{
			name:   "download in progress",
			rec:    Complete{ID: "440", Name: "TF2", StateFlags: 1026},
			reason: Incomplete,
		},
		{
			name:   "excluded id",
			rec:    Complete{ID: "228980", Name: "Steamworks Redist", StateFlags: 4},
			reason: Excluded,
		},
		{
			name:   "excluded but incomplete wins",
			rec:    Complete{ID: "228980", Name: "Steamworks Redist", StateFlags: 2},
			reason: Incomplete,
		},
		{
			name:   "partial record",
			rec:    Partial{ID: "570", Name: "appmanifest_570.acf"},
			reason: Corrupt,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Classify(tc.rec, excluded)
			if got.Eligible != tc.eligible {
				t.Errorf("Eligible = %v, want %v", got.Eligible, tc.eligible)
			}
			if got.Reason != tc.reason {
				t.Errorf("Reason = %v, want %v", got.Reason, tc.reason)
			}
			if got.Record == nil {
				t.Error("Classification must carry the record")
			}
		})
	}
}

func TestClassifyNilExclusionSet(t *testing.T) {
	got := Classify(Complete{ID: "1", StateFlags: 4}, nil)
	if !got.Eligible || got.Reason != FullyInstalled {
		t.Errorf("got %+v, want eligible FullyInstalled", got)
	}
}

func TestReasonString(t *testing.T) {
	for r, want := range map[Reason]string{
		FullyInstalled: "fully installed",
		Excluded:       "excluded",
		Incomplete:     "incomplete",
		Corrupt:        "corrupt",
		Reason(42):     "unknown",
	} {
		if got := r.String(); got != want {
			t.Errorf("Reason(%d).String() = %q, want %q", r, got, want)
		}
	}
}

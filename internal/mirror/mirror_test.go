package mirror

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
)

// TestHelperProcess stands in for the external mirroring utility. It
// emits whatever progress stream the test configured via env vars.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("MIRROR_HELPER_MODE") {
	case "progress":
		fmt.Println("    New File  \t  512\tdata/textures.pak")
		fmt.Println("  25.0%\tdata/textures.pak")
		fmt.Println("  50.0%\tdata/audio.bank")
		fmt.Println("garbage line without tabs")
		fmt.Println("  100.0%\tbin/game.exe")
	case "retry-exit":
		fmt.Println("  100.0%\tbin/game.exe")
		os.Exit(3) // robocopy-style "files copied, extras present" class
	case "silent":
	}
	os.Exit(0)
}

// fakeMirrorCommand reroutes the adapter's exec call to the helper
// process above and captures the arguments passed to the real binary.
func fakeMirrorCommand(t *testing.T, mode string, capture *[]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if capture != nil {
			*capture = append([]string(nil), args...)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "MIRROR_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestMirrorRequiresSource(t *testing.T) {
	r := New()
	if err := r.Mirror(context.Background(), "", "/dst", nil); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestMirrorRequiresDestination(t *testing.T) {
	r := New()
	if err := r.Mirror(context.Background(), "/src", "", nil); err == nil {
		t.Fatal("expected error for empty destination")
	}
}

func TestWithBinary(t *testing.T) {
	r := New(WithBinary("/usr/local/bin/mirrortool"))
	if r.binary != "/usr/local/bin/mirrortool" {
		t.Errorf("binary = %q", r.binary)
	}
	if r := New(WithBinary("")); r.binary != "robocopy" {
		t.Errorf("empty override must keep the default, got %q", r.binary)
	}
}

func TestMirrorArguments(t *testing.T) {
	var args []string
	fakeMirrorCommand(t, "silent", &args)

	r := New()
	if err := r.Mirror(context.Background(), "/src/game", "/dst/game", nil); err != nil {
		t.Fatalf("Mirror failed: %v", err)
	}

	if len(args) < 2 || args[0] != "/src/game" || args[1] != "/dst/game" {
		t.Fatalf("args = %v, want source and destination first", args)
	}
	want := map[string]bool{"/E": false, "/XJ": false}
	for _, a := range args {
		if _, ok := want[a]; ok {
			want[a] = true
		}
	}
	for flag, seen := range want {
		if !seen {
			t.Errorf("expected %s flag in %v", flag, args)
		}
	}
}

func TestMirrorStreamsProgress(t *testing.T) {
	fakeMirrorCommand(t, "progress", nil)

	var updates []Update
	r := New()
	err := r.Mirror(context.Background(), "/src", "/dst", func(u Update) {
		updates = append(updates, u)
	})
	if err != nil {
		t.Fatalf("Mirror failed: %v", err)
	}

	if len(updates) == 0 {
		t.Fatal("expected progress updates")
	}
	if !updates[0].Indeterminate {
		t.Errorf("first update = %+v, want indeterminate comparing state", updates[0])
	}

	// The three well-formed per-file lines, in order; the size column and
	// the tabless garbage line carry no percentage and are dropped.
	perFile := updates[1:]
	if len(perFile) != 3 {
		t.Fatalf("per-file updates = %+v, want 3", perFile)
	}
	wantPct := []float64{25, 50, 100}
	wantFile := []string{"data/textures.pak", "data/audio.bank", "bin/game.exe"}
	for i, u := range perFile {
		if u.Indeterminate {
			t.Errorf("update %d unexpectedly indeterminate", i)
		}
		if u.Percent != wantPct[i] {
			t.Errorf("update %d percent = %v, want %v", i, u.Percent, wantPct[i])
		}
		if u.CurrentFile != wantFile[i] {
			t.Errorf("update %d file = %q, want %q", i, u.CurrentFile, wantFile[i])
		}
	}
}

func TestMirrorIgnoresUtilityExitCode(t *testing.T) {
	fakeMirrorCommand(t, "retry-exit", nil)

	r := New()
	if err := r.Mirror(context.Background(), "/src", "/dst", nil); err != nil {
		t.Fatalf("utility exit code must not be fatal, got %v", err)
	}
}

func TestMirrorMissingBinary(t *testing.T) {
	r := New(WithBinary("steamsafe-no-such-binary"))
	if err := r.Mirror(context.Background(), "/src", "/dst", nil); err == nil {
		t.Fatal("expected error when the mirror utility cannot start")
	}
}

func TestParseProgressLine(t *testing.T) {
	cases := []struct {
		name string
		line string
		ok   bool
		pct  float64
		file string
	}{
		{"plain", "50.0%\tdir/file.txt", true, 50, "dir/file.txt"},
		{"leading columns", "  New File  \t 1024 \t 12.5% \t a.bin", true, 12.5, "a.bin"},
		{"no tab", "50.0% file.txt", false, 0, ""},
		{"no percent", "new\tfile.txt", false, 0, ""},
		{"over 100", "250%\tfile.txt", false, 0, ""},
		{"empty", "", false, 0, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u, ok := parseProgressLine(tc.line)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if !ok {
				return
			}
			if u.Percent != tc.pct || u.CurrentFile != tc.file {
				t.Errorf("update = %+v, want pct=%v file=%q", u, tc.pct, tc.file)
			}
		})
	}
}

// Package planner computes the destination layout for one app backup and
// writes the auxiliary artifacts around the mirrored install tree.
//
// Layout under the backup root:
//
//	<root>/<appid>/<sanitized name>.txt        empty marker for human browsing
//	<root>/<appid>/<buildid>/<manifest file>   provenance copy of the manifest
//	<root>/<appid>/<buildid>/<installdir>/...  mirrored install tree
//	<root>/<appid>/<buildid>/<installdir>/steam_appid.txt
//
// A backup destination is keyed by (appid, buildid): a new build always
// starts a new subtree and never merges with a prior one.
package planner

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/steamsafe/internal/library"
	"github.com/blackwell-systems/steamsafe/internal/manifest"
)

// LaunchStubName is the file Steam's client library looks for to launch a
// game outside its original install location.
const LaunchStubName = "steam_appid.txt"

// CopyPlan describes everything the orchestrator needs to back up one app.
type CopyPlan struct {
	AppID   string
	Name    string
	BuildID string
	Library string

	// SourceDir is the app's install directory inside its library.
	SourceDir string
	// DestRoot is <backupRoot>/<appid>/<buildid>.
	DestRoot string
	// DestInstallDir is the mirror target inside DestRoot.
	DestInstallDir string
	// ManifestSource is the manifest file inside the library.
	ManifestSource string
	// MarkerPath is the empty display-name marker under <backupRoot>/<appid>/.
	MarkerPath string
	// StubPath is the launch stub inside DestInstallDir.
	StubPath string
}

// Plan computes the copy plan for one eligible record. It performs no
// filesystem writes.
func Plan(rec manifest.Complete, backupRoot string) CopyPlan {
	destRoot := filepath.Join(backupRoot, rec.ID, rec.BuildID)
	destInstall := filepath.Join(destRoot, rec.InstallDir)
	manifestName := manifest.FilePrefix + rec.ID + manifest.FileSuffix

	return CopyPlan{
		AppID:          rec.ID,
		Name:           rec.Name,
		BuildID:        rec.BuildID,
		Library:        rec.Library,
		SourceDir:      filepath.Join(rec.Library, library.SteamAppsDir, "common", rec.InstallDir),
		DestRoot:       destRoot,
		DestInstallDir: destInstall,
		ManifestSource: filepath.Join(rec.Library, library.SteamAppsDir, manifestName),
		MarkerPath:     filepath.Join(backupRoot, rec.ID, SanitizeName(rec.Name)+".txt"),
		StubPath:       filepath.Join(destInstall, LaunchStubName),
	}
}

// SanitizeName strips every character that is invalid in a filename.
// Characters are removed, not replaced, so "Half-Life: Alyx" becomes
// "Half-Life Alyx" minus the colon, not an underscored variant.
func SanitizeName(name string) string {
	var sb strings.Builder
	for _, r := range name {
		if r < 0x20 || strings.ContainsRune(`<>:"/\|?*`, r) {
			continue
		}
		sb.WriteRune(r)
	}
	return strings.TrimSpace(sb.String())
}

// CreateMarker (re)attempts the empty display-name marker. Failure is
// swallowed: the marker may already exist from a prior run, and nothing
// consumes it programmatically.
func (p CopyPlan) CreateMarker() {
	if err := os.MkdirAll(filepath.Dir(p.MarkerPath), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(p.MarkerPath, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	f.Close()
}

// CopyManifest copies the manifest source file into the destination root,
// creating the destination tree as a side effect. This records which
// build the backup was taken from.
func (p CopyPlan) CopyManifest() error {
	if err := os.MkdirAll(p.DestRoot, 0755); err != nil {
		return fmt.Errorf("failed to create destination %s: %w", p.DestRoot, err)
	}

	src, err := os.Open(p.ManifestSource)
	if err != nil {
		return fmt.Errorf("failed to open manifest %s: %w", p.ManifestSource, err)
	}
	defer src.Close()

	destPath := filepath.Join(p.DestRoot, filepath.Base(p.ManifestSource))
	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", destPath, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to copy manifest to %s: %w", destPath, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("failed to copy manifest to %s: %w", destPath, err)
	}
	return nil
}

// WriteLaunchStub writes the launch stub after a completed mirror: the
// app id, ASCII, no trailing newline. An existing stub is never touched;
// the user or the game itself may have customized it.
func (p CopyPlan) WriteLaunchStub() error {
	f, err := os.OpenFile(p.StubPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}
		return fmt.Errorf("failed to create launch stub %s: %w", p.StubPath, err)
	}

	if _, err := f.WriteString(p.AppID); err != nil {
		f.Close()
		return fmt.Errorf("failed to write launch stub %s: %w", p.StubPath, err)
	}
	return f.Close()
}

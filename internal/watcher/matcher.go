package watcher

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/blackwell-systems/steamsafe/internal/manifest"
)

// isManifestEvent reports whether a filesystem event concerns an app
// manifest in a way that can change backup eligibility. Chmod-only
// events are noise; everything else (create, write, rename, remove)
// warrants a re-run.
func isManifestEvent(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return IsManifestName(filepath.Base(event.Name))
}

// IsManifestName reports whether base looks like appmanifest_<id>.acf.
func IsManifestName(base string) bool {
	if !strings.HasPrefix(base, manifest.FilePrefix) || !strings.HasSuffix(base, manifest.FileSuffix) {
		return false
	}
	id := strings.TrimSuffix(strings.TrimPrefix(base, manifest.FilePrefix), manifest.FileSuffix)
	return id != ""
}

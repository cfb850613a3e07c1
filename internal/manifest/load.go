package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/blackwell-systems/steamsafe/internal/vdf"
)

// Load parses the manifest file at path and maps it to a Record. The raw
// key/value tree never leaves this function.
//
// A manifest that cannot be read, cannot be parsed, or parses to a tree
// with no appid, no StateFlags, and no name simultaneously degrades to a
// Partial record recovered from the filename; Load itself never fails.
func Load(path, library string) Record {
	data, err := os.ReadFile(path)
	if err != nil {
		return partialFromFilename(path)
	}

	app := vdf.Parse(data).First()
	if app == nil {
		return partialFromFilename(path)
	}

	id := app.String("appid")
	name := app.String("name")
	_, hasFlags := app.Int("StateFlags")
	if id == "" && name == "" && !hasFlags {
		return partialFromFilename(path)
	}

	flags, _ := app.Int("StateFlags")
	return Complete{
		ID:         id,
		Name:       name,
		InstallDir: app.String("installdir"),
		BuildID:    app.String("buildid"),
		StateFlags: flags,
		Library:    library,
	}
}

// partialFromFilename recovers an id and display name from the manifest
// filename: the id is the base name with the appmanifest_ prefix and .acf
// suffix stripped; the display name is the base name itself.
func partialFromFilename(path string) Partial {
	base := filepath.Base(path)
	id := strings.TrimSuffix(strings.TrimPrefix(base, FilePrefix), FileSuffix)
	return Partial{ID: id, Name: base}
}

// Package library discovers Steam content library roots: the primary
// install root plus the secondary roots declared in libraryfolders.vdf.
package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/blackwell-systems/steamsafe/internal/manifest"
	"github.com/blackwell-systems/steamsafe/internal/vdf"
)

// SteamAppsDir is the fixed subdirectory of every library root that holds
// app manifests and the library configuration document.
const SteamAppsDir = "steamapps"

// ConfigFile is the library configuration document under the primary
// root's steamapps directory.
const ConfigFile = "libraryfolders.vdf"

// ErrNoLibraryConfig is returned when the primary root's library
// configuration document is missing or unparsable. No backup run is
// possible without it.
var ErrNoLibraryConfig = errors.New("library configuration missing or unparsable")

// Discovery is the result of one library enumeration.
type Discovery struct {
	// Roots are the non-excluded library roots, primary first, in the
	// order declared by the configuration document.
	Roots []string
	// ExcludedRoots are roots dropped by the prefix exclusion filter,
	// recorded for reporting.
	ExcludedRoots []string
}

// Discover resolves all library roots reachable from primaryRoot and
// applies the path-prefix exclusion filter. Roots matching any excluded
// prefix (case-sensitive) are recorded but not returned as scannable.
//
// Fails only when the configuration document under the primary root
// cannot be read or parsed; everything else degrades to a smaller root
// list.
func Discover(primaryRoot string, excludePrefixes []string) (*Discovery, error) {
	cfgPath := filepath.Join(primaryRoot, SteamAppsDir, ConfigFile)
	data, err := os.ReadFile(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoLibraryConfig, cfgPath, err)
	}

	folders := vdf.Parse(data).First()
	if folders == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoLibraryConfig, cfgPath)
	}

	d := &Discovery{}
	d.add(primaryRoot, excludePrefixes)

	// Secondary roots use sequential keys "1", "2", and so on; a fixed,
	// non-sparse protocol. The first missing key ends enumeration.
	for i := 1; ; i++ {
		key := strconv.Itoa(i)
		if !folders.Has(key) {
			break
		}
		path := folderPath(folders, key)
		if path == "" {
			break
		}
		d.add(normalizePath(path), excludePrefixes)
	}

	return d, nil
}

// folderPath extracts the root path for one sequential key. Older Steam
// clients write the path as a plain string value; newer ones write a
// block with a "path" field. Both are supported.
func folderPath(folders *vdf.Node, key string) string {
	if block := folders.Child(key); block != nil {
		return block.String("path")
	}
	return folders.String(key)
}

func (d *Discovery) add(root string, excludePrefixes []string) {
	for _, prefix := range excludePrefixes {
		if prefix != "" && strings.HasPrefix(root, prefix) {
			d.ExcludedRoots = append(d.ExcludedRoots, root)
			return
		}
	}
	d.Roots = append(d.Roots, root)
}

// normalizePath undoes the backslash-doubling Steam applies when writing
// Windows paths into VDF values.
func normalizePath(p string) string {
	return filepath.Clean(strings.ReplaceAll(p, `\\`, `\`))
}

// Manifests returns the app manifest files under one library root, in
// lexical order. A root with no steamapps directory yields an empty list.
func Manifests(root string) ([]string, error) {
	pattern := filepath.Join(root, SteamAppsDir, manifest.FilePrefix+"*"+manifest.FileSuffix)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob manifests under %s: %w", root, err)
	}
	return matches, nil
}

// DefaultSteamRoot resolves the primary Steam install root. The
// STEAMSAFE_STEAM_ROOT environment variable wins; otherwise the
// platform-conventional install locations are probed in order.
func DefaultSteamRoot() (string, error) {
	if root := os.Getenv("STEAMSAFE_STEAM_ROOT"); root != "" {
		return root, nil
	}

	for _, candidate := range defaultRootCandidates() {
		if candidate == "" {
			continue
		}
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
	}

	return "", errors.New("no Steam installation found; set STEAMSAFE_STEAM_ROOT or steam_root in the config file")
}

func defaultRootCandidates() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "windows":
		return []string{
			`C:\Program Files (x86)\Steam`,
			`C:\Program Files\Steam`,
		}
	case "darwin":
		return []string{
			filepath.Join(home, "Library", "Application Support", "Steam"),
		}
	default:
		return []string{
			filepath.Join(home, ".steam", "steam"),
			filepath.Join(home, ".local", "share", "Steam"),
		}
	}
}

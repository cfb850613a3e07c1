// Package watcher re-runs backups when Steam rewrites app manifests.
//
// Steam touches appmanifest_*.acf whenever an app installs, updates, or
// verifies. The Watcher places an fsnotify watch on every library's
// steamapps directory, filters events down to manifest files, and fires
// a debounced trigger once the library has been quiet for the settle
// interval. Steam rewrites manifests many times during a download and
// backing up mid-transfer would be wasted work.
//
// Key features:
//   - fsnotify-based manifest change detection (no polling)
//   - Per-burst debouncing with a configurable settle interval
//   - Daemon mode support with PID file management
//   - Graceful shutdown with SIGTERM/SIGINT handling
package watcher

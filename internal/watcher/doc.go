// Package watcher turns changes to a browser profile on disk into extension
// lifecycle notifications.
//
// The Watcher observes the profile directory and its Extensions directory
// with fsnotify. Bursts of writes (the browser rewrites Preferences several
// times during one install) are debounced, then the profile is re-read and
// the new snapshot handed to a management.Differ, which publishes install,
// uninstall, enable and disable notifications. A periodic rescan covers
// events fsnotify misses (network home directories, overflowed queues).
//
// Key features:
//   - fsnotify watches with debounce
//   - Periodic fallback rescan
//   - Daemon mode support with PID file management
//   - Graceful shutdown with SIGTERM/SIGINT handling
//
// Example usage:
//
//	profile, err := browser.NewProfile("chrome", "", log)
//	if err != nil {
//		log.Fatal().Err(err).Send()
//	}
//
//	w, err := watcher.New(profile, differ, watcher.Options{Logger: log})
//	if err != nil {
//		log.Fatal().Err(err).Send()
//	}
//
//	if err := w.Start(); err != nil {
//		log.Fatal().Err(err).Send()
//	}
//	defer w.Stop()
package watcher

package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// userDataPaths locates each browser's user data directory relative to the
// home directory, per OS.
type userDataPaths struct {
	Linux   []string
	MacOS   []string
	Windows []string
}

var knownBrowsers = map[string]userDataPaths{
	"chrome": {
		Linux:   []string{".config", "google-chrome"},
		MacOS:   []string{"Library", "Application Support", "Google", "Chrome"},
		Windows: []string{"AppData", "Local", "Google", "Chrome", "User Data"},
	},
	"chromium": {
		Linux:   []string{".config", "chromium"},
		MacOS:   []string{"Library", "Application Support", "Chromium"},
		Windows: []string{"AppData", "Local", "Chromium", "User Data"},
	},
	"edge": {
		Linux:   []string{".config", "microsoft-edge"},
		MacOS:   []string{"Library", "Application Support", "Microsoft Edge"},
		Windows: []string{"AppData", "Local", "Microsoft", "Edge", "User Data"},
	},
	"brave": {
		Linux:   []string{".config", "BraveSoftware", "Brave-Browser"},
		MacOS:   []string{"Library", "Application Support", "BraveSoftware", "Brave-Browser"},
		Windows: []string{"AppData", "Local", "BraveSoftware", "Brave-Browser", "User Data"},
	},
}

// Browsers returns the names accepted by DefaultProfileDir.
func Browsers() []string {
	names := make([]string, 0, len(knownBrowsers))
	for name := range knownBrowsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultProfileDir returns the "Default" profile directory of the named
// browser for the current user and OS.
func DefaultProfileDir(browser string) (string, error) {
	paths, ok := knownBrowsers[strings.ToLower(browser)]
	if !ok {
		return "", fmt.Errorf("unsupported browser %q (supported: %s)", browser, strings.Join(Browsers(), ", "))
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	var parts []string
	switch runtime.GOOS {
	case "linux":
		parts = paths.Linux
	case "darwin":
		parts = paths.MacOS
	case "windows":
		parts = paths.Windows
	default:
		return "", fmt.Errorf("unsupported OS %s", runtime.GOOS)
	}

	return filepath.Join(home, filepath.Join(parts...), "Default"), nil
}

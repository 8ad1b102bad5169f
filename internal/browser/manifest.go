package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// manifest holds the manifest.json fields the management surface reports.
type manifest struct {
	Name          string
	Version       string
	DefaultLocale string
	IsApp         bool
	WebURL        string
	LocalPath     string
}

func parseManifest(data []byte) (manifest, error) {
	if !gjson.ValidBytes(data) {
		return manifest{}, fmt.Errorf("invalid manifest JSON")
	}
	return manifestFromResult(gjson.ParseBytes(data)), nil
}

// manifestFromResult reads a manifest object. Anything with an "app" key
// (hosted, legacy packaged or platform app) counts as an app.
func manifestFromResult(r gjson.Result) manifest {
	m := manifest{
		Name:          r.Get("name").String(),
		Version:       r.Get("version").String(),
		DefaultLocale: r.Get("default_locale").String(),
		IsApp:         r.Get("app").Exists(),
	}
	if m.IsApp {
		m.WebURL = r.Get("app.launch.web_url").String()
		if m.WebURL == "" {
			m.WebURL = r.Get("app.urls.0").String()
		}
		m.LocalPath = r.Get("app.launch.local_path").String()
	}
	return m
}

// launchURL returns the URL an app opens with, or "" when it has none.
func (m manifest) launchURL(id string) string {
	if !m.IsApp {
		return ""
	}
	if m.WebURL != "" {
		return m.WebURL
	}
	if m.LocalPath != "" {
		return "chrome-extension://" + id + "/" + strings.TrimPrefix(m.LocalPath, "/")
	}
	return ""
}

func readManifest(dir string) (manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return manifest{}, err
	}
	m, err := parseManifest(data)
	if err != nil {
		return manifest{}, fmt.Errorf("%s: %w", dir, err)
	}
	if strings.HasPrefix(m.Name, "__MSG_") {
		m.Name = resolveMessage(m.Name, dir, m.DefaultLocale)
	}
	return m, nil
}

// latestVersionDir returns the newest version directory under extDir.
// Directories are named "<version>_<n>"; both parts compare numerically.
func latestVersionDir(extDir string) (string, error) {
	entries, err := os.ReadDir(extDir)
	if err != nil {
		return "", err
	}

	var best string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if best == "" || compareVersionDirs(e.Name(), best) > 0 {
			best = e.Name()
		}
	}
	if best == "" {
		return "", fmt.Errorf("no version directory in %s", extDir)
	}
	return filepath.Join(extDir, best), nil
}

func compareVersionDirs(a, b string) int {
	pa, pb := versionParts(a), versionParts(b)
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		switch {
		case x > y:
			return 1
		case x < y:
			return -1
		}
	}
	return strings.Compare(a, b)
}

func versionParts(s string) []int {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '_' })
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			n = 0
		}
		parts = append(parts, n)
	}
	return parts
}

// isExtensionID reports whether s looks like a Chromium extension id:
// 32 characters from a to p.
func isExtensionID(s string) bool {
	if len(s) != 32 {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'p' {
			return false
		}
	}
	return true
}

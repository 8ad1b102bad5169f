// Package browser reads installed extensions and apps from a Chromium-family
// browser profile on disk.
//
// Installed items are discovered from <profile>/Extensions/<id>/<version>/
// manifest.json and from extensions.settings in the profile's Preferences
// and Secure Preferences files, which also carry the enabled state.
package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/apps2desktop/internal/extension"
)

// Profile is one browser profile directory, e.g.
// ~/.config/google-chrome/Default.
type Profile struct {
	Browser string
	Dir     string
	Log     zerolog.Logger
}

// NewProfile returns the profile at dir. An empty dir selects the browser's
// default profile.
func NewProfile(browser, dir string, log zerolog.Logger) (*Profile, error) {
	if dir == "" {
		var err error
		dir, err = DefaultProfileDir(browser)
		if err != nil {
			return nil, err
		}
	}
	return &Profile{Browser: browser, Dir: dir, Log: log}, nil
}

func (p *Profile) extensionsDir() string {
	return filepath.Join(p.Dir, "Extensions")
}

// Extensions returns the installed items sorted by id.
func (p *Profile) Extensions() ([]extension.Info, error) {
	if _, err := os.Stat(p.Dir); err != nil {
		return nil, fmt.Errorf("profile directory %s: %w", p.Dir, err)
	}

	settings, err := readSettings(p.Dir)
	if err != nil {
		return nil, err
	}

	ids := make(map[string]bool)
	entries, err := os.ReadDir(p.extensionsDir())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read extensions directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() && isExtensionID(e.Name()) {
			ids[e.Name()] = true
		}
	}
	for id := range settings {
		ids[id] = true
	}

	var infos []extension.Info
	for id := range ids {
		s, hasSetting := settings[id]
		if hasSetting && s.hidden() {
			continue
		}
		if !hasSetting {
			s = setting{Enabled: true}
		}

		m, err := p.manifestFor(id, s)
		if err != nil {
			p.Log.Debug().Err(err).Str("id", id).Msg("skipping item without readable manifest")
			continue
		}

		infos = append(infos, extension.Info{
			ID:           id,
			Name:         m.Name,
			Version:      m.Version,
			IsApp:        m.IsApp,
			AppLaunchURL: m.launchURL(id),
			Enabled:      s.Enabled,
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

// manifestFor finds an item's manifest: the settings path first, then the
// newest version directory, then a manifest embedded in preferences.
func (p *Profile) manifestFor(id string, s setting) (manifest, error) {
	if s.Path != "" {
		dir := s.Path
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(p.extensionsDir(), dir)
		}
		if m, err := readManifest(dir); err == nil {
			return m, nil
		}
	}

	if dir, err := latestVersionDir(filepath.Join(p.extensionsDir(), id)); err == nil {
		if m, err := readManifest(dir); err == nil {
			return m, nil
		}
	}

	if s.Manifest != nil {
		return *s.Manifest, nil
	}
	return manifest{}, fmt.Errorf("no manifest found for %s", id)
}

// WatchPaths returns the paths whose changes can alter Extensions(): the
// profile directory (Preferences files are replaced atomically, so the
// directory is watched rather than the files) and the Extensions directory.
func (p *Profile) WatchPaths() []string {
	paths := []string{p.Dir}
	if fi, err := os.Stat(p.extensionsDir()); err == nil && fi.IsDir() {
		paths = append(paths, p.extensionsDir())
	}
	return paths
}

// IsRelevant reports whether a changed path inside a watched directory can
// affect the installed set.
func (p *Profile) IsRelevant(path string) bool {
	switch filepath.Base(path) {
	case "Preferences", "Secure Preferences":
		return filepath.Dir(path) == filepath.Clean(p.Dir)
	}
	return filepath.Dir(path) == filepath.Clean(p.extensionsDir())
}

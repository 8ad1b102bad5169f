package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// Install locations whose items the management surface does not report.
const (
	locationComponent         = 5
	locationExternalComponent = 10
)

// setting is one entry of extensions.settings in a preferences file.
type setting struct {
	Path      string
	Location  int64
	Enabled   bool
	Manifest  *manifest
	HasRecord bool

	// Merged inputs to Enabled.
	stateOff        bool
	disabledReasons bool
}

// readSettings merges extensions.settings from Preferences and Secure
// Preferences. A missing file contributes nothing; an unparsable one is an
// error. Later files override earlier ones field by field.
func readSettings(profileDir string) (map[string]setting, error) {
	out := make(map[string]setting)

	for _, name := range []string{"Preferences", "Secure Preferences"} {
		data, err := os.ReadFile(filepath.Join(profileDir, name))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("failed to parse %s: invalid JSON", name)
		}

		gjson.GetBytes(data, "extensions.settings").ForEach(func(key, value gjson.Result) bool {
			id := key.String()
			s, ok := out[id]
			if !ok {
				s = setting{Enabled: true}
			}
			s.HasRecord = true

			if p := value.Get("path"); p.Exists() {
				s.Path = p.String()
			}
			if l := value.Get("location"); l.Exists() {
				s.Location = l.Int()
			}
			if m := value.Get("manifest"); m.IsObject() {
				parsed := manifestFromResult(m)
				s.Manifest = &parsed
			}
			if st := value.Get("state"); st.Exists() {
				s.stateOff = st.Int() == 0
			}
			if dr := value.Get("disable_reasons"); dr.Exists() {
				s.disabledReasons = disabledByReasons(dr)
			}
			s.Enabled = !s.stateOff && !s.disabledReasons

			out[id] = s
			return true
		})
	}

	return out, nil
}

// disabledByReasons handles both the bitmask and the list encodings of
// disable_reasons.
func disabledByReasons(r gjson.Result) bool {
	if r.IsArray() {
		return len(r.Array()) > 0
	}
	return r.Int() != 0
}

func (s setting) hidden() bool {
	return s.Location == locationComponent || s.Location == locationExternalComponent
}

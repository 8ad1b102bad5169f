// Package extension defines the record that browser extension lifecycle
// notifications carry.
package extension

import (
	"errors"
	"fmt"
)

// ErrMissingID is returned when a record or notification carries no id.
// The id correlates install, enable/disable and uninstall for one item, so
// a record without one cannot be forwarded.
var ErrMissingID = errors.New("extension info has no id")

// Info describes one installed browser extension or app.
type Info struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Version      string `json:"version"`
	IsApp        bool   `json:"isApp"`
	AppLaunchURL string `json:"appLaunchUrl,omitempty"`
	Enabled      bool   `json:"enabled"`
}

// Validate reports whether the record can be forwarded.
func (i Info) Validate() error {
	if i.ID == "" {
		if i.Name != "" {
			return fmt.Errorf("%w (name %q)", ErrMissingID, i.Name)
		}
		return ErrMissingID
	}
	return nil
}

// Kind returns "app" or "extension" for display.
func (i Info) Kind() string {
	if i.IsApp {
		return "app"
	}
	return "extension"
}

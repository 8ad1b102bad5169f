package target

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/apps2desktop/internal/forwarder"
	"github.com/blackwell-systems/apps2desktop/internal/store"
)

// Journal is a target that records every call in the SQLite store: the
// apps table holds the current view and lifecycle_events the history.
type Journal struct {
	store *store.Store
	log   zerolog.Logger
	now   func() time.Time
}

var _ forwarder.Target = (*Journal)(nil)

func NewJournal(st *store.Store, log zerolog.Logger) *Journal {
	return &Journal{
		store: st,
		log:   log.With().Str("component", "journal").Logger(),
		now:   time.Now,
	}
}

func (j *Journal) Add(name, id, version, launchURL string, enabled bool) error {
	now := j.now()
	return j.store.AddApp(&store.App{
		ID:        id,
		Name:      name,
		Version:   version,
		LaunchURL: launchURL,
		Enabled:   enabled,
		UpdatedAt: now,
	})
}

func (j *Journal) Enable(id string) error {
	return j.setEnabled(id, true)
}

func (j *Journal) Disable(id string) error {
	return j.setEnabled(id, false)
}

func (j *Journal) setEnabled(id string, enabled bool) error {
	found, err := j.store.SetEnabled(id, enabled, j.now())
	if err != nil {
		return err
	}
	if !found {
		j.log.Warn().Str("id", id).Bool("enabled", enabled).Msg("state change for unknown app")
	}
	return nil
}

// Remove deletes the app if it is known. Unknown ids are recorded and
// otherwise ignored.
func (j *Journal) Remove(id string) error {
	found, err := j.store.RemoveApp(id, j.now())
	if err != nil {
		return err
	}
	if !found {
		j.log.Debug().Str("id", id).Msg("remove for id that was never added")
	}
	return nil
}

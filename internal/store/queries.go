package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrAppNotFound is returned by GetApp for unknown ids.
var ErrAppNotFound = errors.New("app not found")

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// App operations

// AddApp inserts or refreshes an app and records an add event in the same
// transaction. The original added_at is kept when the app already exists.
func (s *Store) AddApp(app *App) error {
	now := app.UpdatedAt
	if now.IsZero() {
		now = time.Now()
	}
	added := app.AddedAt
	if added.IsZero() {
		added = now
	}

	return s.withTx(func(tx *sql.Tx) error {
		query := `
			INSERT INTO apps (id, name, version, launch_url, enabled, added_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				version = excluded.version,
				launch_url = excluded.launch_url,
				enabled = excluded.enabled,
				updated_at = excluded.updated_at
		`
		if _, err := tx.Exec(query,
			app.ID,
			app.Name,
			app.Version,
			app.LaunchURL,
			app.Enabled,
			added.UTC().Format(timeLayout),
			now.UTC().Format(timeLayout),
		); err != nil {
			return wrapErr(err, "failed to upsert app %s", app.ID)
		}

		return insertEvent(tx, &LifecycleEvent{
			AppID:     app.ID,
			Action:    ActionAdd,
			Detail:    app.Version,
			Timestamp: now,
		})
	})
}

// SetEnabled updates an app's enabled flag and records the matching event.
// It reports whether the app was known; the event is recorded either way.
func (s *Store) SetEnabled(id string, enabled bool, at time.Time) (bool, error) {
	action := ActionDisable
	if enabled {
		action = ActionEnable
	}

	var found bool
	err := s.withTx(func(tx *sql.Tx) error {
		result, err := tx.Exec(`UPDATE apps SET enabled = ?, updated_at = ? WHERE id = ?`,
			enabled, at.UTC().Format(timeLayout), id)
		if err != nil {
			return wrapErr(err, "failed to update app %s", id)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		found = rows > 0

		detail := ""
		if !found {
			detail = "unknown"
		}
		return insertEvent(tx, &LifecycleEvent{AppID: id, Action: action, Detail: detail, Timestamp: at})
	})
	return found, err
}

// RemoveApp deletes an app and records a remove event. Removing an unknown
// id is not an error; it reports false.
func (s *Store) RemoveApp(id string, at time.Time) (bool, error) {
	var found bool
	err := s.withTx(func(tx *sql.Tx) error {
		result, err := tx.Exec(`DELETE FROM apps WHERE id = ?`, id)
		if err != nil {
			return wrapErr(err, "failed to delete app %s", id)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		found = rows > 0

		detail := ""
		if !found {
			detail = "unknown"
		}
		return insertEvent(tx, &LifecycleEvent{AppID: id, Action: ActionRemove, Detail: detail, Timestamp: at})
	})
	return found, err
}

// GetApp retrieves an app by id.
func (s *Store) GetApp(id string) (*App, error) {
	query := `
		SELECT id, name, version, launch_url, enabled, added_at, updated_at
		FROM apps
		WHERE id = ?
	`
	app, err := scanApp(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrAppNotFound, id)
	}
	if err != nil {
		return nil, wrapErr(err, "failed to get app %s", id)
	}
	return app, nil
}

// ListApps returns all known apps ordered by name.
func (s *Store) ListApps() ([]*App, error) {
	query := `
		SELECT id, name, version, launch_url, enabled, added_at, updated_at
		FROM apps
		ORDER BY name, id
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, wrapErr(err, "failed to list apps")
	}
	defer rows.Close()

	var apps []*App
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan app row: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating apps: %w", err)
	}

	return apps, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApp(row rowScanner) (*App, error) {
	var app App
	var launchURL sql.NullString
	var version sql.NullString
	var addedAt, updatedAt string

	if err := row.Scan(&app.ID, &app.Name, &version, &launchURL, &app.Enabled, &addedAt, &updatedAt); err != nil {
		return nil, err
	}
	app.Version = version.String
	app.LaunchURL = launchURL.String

	var err error
	if app.AddedAt, err = time.Parse(timeLayout, addedAt); err != nil {
		return nil, fmt.Errorf("failed to parse added_at for %s: %w", app.ID, err)
	}
	if app.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at for %s: %w", app.ID, err)
	}
	return &app, nil
}

// Lifecycle event operations

// ListEvents returns the most recent events, newest first. A limit of zero
// or less returns every event.
func (s *Store) ListEvents(limit int) ([]*LifecycleEvent, error) {
	query := `
		SELECT id, app_id, action, detail, timestamp
		FROM lifecycle_events
		ORDER BY id DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, wrapErr(err, "failed to list events")
	}
	defer rows.Close()

	var events []*LifecycleEvent
	for rows.Next() {
		var ev LifecycleEvent
		var detail sql.NullString
		var timestamp string
		if err := rows.Scan(&ev.ID, &ev.AppID, &ev.Action, &detail, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		ev.Detail = detail.String

		ev.Timestamp, err = time.Parse(timeLayout, timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp for event %d: %w", ev.ID, err)
		}
		events = append(events, &ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return events, nil
}

// GetEventCount returns the total number of lifecycle events recorded.
func (s *Store) GetEventCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM lifecycle_events").Scan(&count)
	if err != nil {
		return 0, wrapErr(err, "failed to get event count")
	}
	return count, nil
}

// GetLastEventTime returns the timestamp of the newest event.
// Returns zero time if no events exist.
func (s *Store) GetLastEventTime() (time.Time, error) {
	var timestamp sql.NullString
	err := s.db.QueryRow("SELECT MAX(timestamp) FROM lifecycle_events").Scan(&timestamp)
	if err != nil && err != sql.ErrNoRows {
		return time.Time{}, wrapErr(err, "failed to get last event time")
	}
	if !timestamp.Valid || timestamp.String == "" {
		return time.Time{}, nil
	}

	t, err := time.Parse(timeLayout, timestamp.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return t, nil
}

func insertEvent(tx *sql.Tx, ev *LifecycleEvent) error {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := tx.Exec(
		`INSERT INTO lifecycle_events (app_id, action, detail, timestamp) VALUES (?, ?, ?, ?)`,
		ev.AppID, string(ev.Action), ev.Detail, ts.UTC().Format(timeLayout),
	)
	if err != nil {
		return wrapErr(err, "failed to insert %s event for %s", ev.Action, ev.AppID)
	}
	return nil
}

func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

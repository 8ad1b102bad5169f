package store

import "time"

// App is the journal's view of an app the target has been told about.
type App struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Version   string    `json:"version"`
	LaunchURL string    `json:"launchUrl,omitempty"`
	Enabled   bool      `json:"enabled"`
	AddedAt   time.Time `json:"addedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Action names a lifecycle call recorded in the journal.
type Action string

const (
	ActionAdd     Action = "add"
	ActionEnable  Action = "enable"
	ActionDisable Action = "disable"
	ActionRemove  Action = "remove"
)

// LifecycleEvent records one call made to the target.
type LifecycleEvent struct {
	ID        int64     `json:"id"`
	AppID     string    `json:"appId"`
	Action    Action    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

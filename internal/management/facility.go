// Package management provides the browser's extension-management surface:
// four lifecycle notification streams plus enumeration of installed items.
//
// A Hub fans notifications out to subscribers in-process. A Differ turns
// successive profile snapshots into the notifications a browser would fire
// (install, uninstall, enable, disable) and publishes them on a Hub.
package management

import "github.com/blackwell-systems/apps2desktop/internal/extension"

// InfoHandler receives install, enable and disable notifications.
type InfoHandler func(extension.Info) error

// IDHandler receives uninstall notifications, which carry only the id.
type IDHandler func(id string) error

// Facility is the management surface consumed by the forwarder.
type Facility interface {
	OnInstalled(InfoHandler)
	OnUninstalled(IDHandler)
	OnEnabled(InfoHandler)
	OnDisabled(InfoHandler)

	// GetAll returns the currently installed items. Order is owned by the
	// implementation.
	GetAll() ([]extension.Info, error)
}

// Publisher emits lifecycle notifications.
type Publisher interface {
	Install(extension.Info) error
	Uninstall(id string) error
	Enable(extension.Info) error
	Disable(extension.Info) error
}

// Enumerator returns the current set of installed items.
type Enumerator func() ([]extension.Info, error)

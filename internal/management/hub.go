package management

import (
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/blackwell-systems/apps2desktop/internal/extension"
)

// Hub is an in-process Facility and Publisher. Publishing calls every
// handler of the stream synchronously, in subscription order. Handlers are
// invoked without the hub lock held so they may subscribe or publish.
type Hub struct {
	mu          sync.RWMutex
	installed   []InfoHandler
	uninstalled []IDHandler
	enabled     []InfoHandler
	disabled    []InfoHandler
	enumerate   Enumerator
}

var (
	_ Facility  = (*Hub)(nil)
	_ Publisher = (*Hub)(nil)
)

// NewHub creates a hub whose GetAll delegates to enumerate. A nil
// enumerate reports no installed items.
func NewHub(enumerate Enumerator) *Hub {
	return &Hub{enumerate: enumerate}
}

func (h *Hub) OnInstalled(fn InfoHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.installed = append(h.installed, fn)
}

func (h *Hub) OnUninstalled(fn IDHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.uninstalled = append(h.uninstalled, fn)
}

func (h *Hub) OnEnabled(fn InfoHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enabled = append(h.enabled, fn)
}

func (h *Hub) OnDisabled(fn InfoHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disabled = append(h.disabled, fn)
}

// GetAll returns the enumerator's current view.
func (h *Hub) GetAll() ([]extension.Info, error) {
	h.mu.RLock()
	enumerate := h.enumerate
	h.mu.RUnlock()

	if enumerate == nil {
		return nil, nil
	}
	return enumerate()
}

// SetEnumerator replaces the source used by GetAll.
func (h *Hub) SetEnumerator(enumerate Enumerator) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enumerate = enumerate
}

// Install publishes an install notification. Errors from all handlers are
// combined; a failing handler does not stop later ones.
func (h *Hub) Install(info extension.Info) error {
	h.mu.RLock()
	handlers := append([]InfoHandler(nil), h.installed...)
	h.mu.RUnlock()
	return publishInfo(handlers, info)
}

// Uninstall publishes an uninstall notification.
func (h *Hub) Uninstall(id string) error {
	h.mu.RLock()
	handlers := append([]IDHandler(nil), h.uninstalled...)
	h.mu.RUnlock()

	var result *multierror.Error
	for _, fn := range handlers {
		if err := fn(id); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// Enable publishes an enable notification.
func (h *Hub) Enable(info extension.Info) error {
	h.mu.RLock()
	handlers := append([]InfoHandler(nil), h.enabled...)
	h.mu.RUnlock()
	return publishInfo(handlers, info)
}

// Disable publishes a disable notification.
func (h *Hub) Disable(info extension.Info) error {
	h.mu.RLock()
	handlers := append([]InfoHandler(nil), h.disabled...)
	h.mu.RUnlock()
	return publishInfo(handlers, info)
}

func publishInfo(handlers []InfoHandler, info extension.Info) error {
	var result *multierror.Error
	for _, fn := range handlers {
		if err := fn(info); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

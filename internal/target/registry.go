// Package target provides the elements lifecycle notifications are
// forwarded to, and the registry the forwarder resolves them through.
package target

import (
	"fmt"
	"sync"

	"github.com/blackwell-systems/apps2desktop/internal/forwarder"
)

// DefaultElementID is the identifier the forwarder looks its target up by.
const DefaultElementID = "Apps2Desktop"

// ErrNotFound is returned by Lookup when nothing is registered under the
// identifier. It wraps forwarder.ErrTargetUnavailable so the forwarder
// queues and retries.
var ErrNotFound = fmt.Errorf("element not registered: %w", forwarder.ErrTargetUnavailable)

// Registry maps element identifiers to targets.
type Registry struct {
	mu       sync.RWMutex
	elements map[string]forwarder.Target
}

func NewRegistry() *Registry {
	return &Registry{elements: make(map[string]forwarder.Target)}
}

// Register binds t to id, replacing any previous element.
func (r *Registry) Register(id string, t forwarder.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.elements[id] = t
}

// Unregister removes id. It only removes the element if it is still t, so
// a stale element cannot unregister its replacement.
func (r *Registry) Unregister(id string, t forwarder.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.elements[id]; ok && cur == t {
		delete(r.elements, id)
	}
}

// Lookup returns the element registered under id.
func (r *Registry) Lookup(id string) (forwarder.Target, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.elements[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t, nil
}

// Resolver returns a forwarder.Resolver that looks id up on every call.
func (r *Registry) Resolver(id string) forwarder.Resolver {
	return func() (forwarder.Target, error) {
		return r.Lookup(id)
	}
}

package target

import (
	"errors"
	"testing"

	"github.com/blackwell-systems/apps2desktop/internal/forwarder"
)

type nopTarget struct{ name string }

func (nopTarget) Add(name, id, version, launchURL string, enabled bool) error { return nil }
func (nopTarget) Enable(id string) error                                      { return nil }
func (nopTarget) Disable(id string) error                                     { return nil }
func (nopTarget) Remove(id string) error                                      { return nil }

func TestRegistry_LookupMissing(t *testing.T) {
	reg := NewRegistry()

	_, err := reg.Lookup(DefaultElementID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() error = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, forwarder.ErrTargetUnavailable) {
		t.Errorf("Lookup() error = %v, want it to wrap forwarder.ErrTargetUnavailable", err)
	}
}

func TestRegistry_ResolverSeesReplacement(t *testing.T) {
	reg := NewRegistry()
	resolve := reg.Resolver(DefaultElementID)

	first := &nopTarget{name: "first"}
	reg.Register(DefaultElementID, first)
	got, err := resolve()
	if err != nil || got != first {
		t.Fatalf("resolve() = %v, %v; want first", got, err)
	}

	second := &nopTarget{name: "second"}
	reg.Register(DefaultElementID, second)
	got, _ = resolve()
	if got != second {
		t.Errorf("resolve() = %v, want the replacement", got)
	}
}

func TestRegistry_UnregisterStaleIsIgnored(t *testing.T) {
	reg := NewRegistry()
	old, cur := &nopTarget{name: "old"}, &nopTarget{name: "cur"}

	reg.Register(DefaultElementID, cur)
	reg.Unregister(DefaultElementID, old)

	if got, err := reg.Lookup(DefaultElementID); err != nil || got != cur {
		t.Errorf("Lookup() = %v, %v; want cur still registered", got, err)
	}

	reg.Unregister(DefaultElementID, cur)
	if _, err := reg.Lookup(DefaultElementID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Lookup() after Unregister error = %v, want ErrNotFound", err)
	}
}

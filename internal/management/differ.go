package management

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/blackwell-systems/apps2desktop/internal/extension"
)

// Changes lists the notifications produced by one snapshot transition.
type Changes struct {
	Uninstalled []string
	Installed   []extension.Info
	Enabled     []extension.Info
	Disabled    []extension.Info
}

// Empty reports whether the transition produced no notifications.
func (c Changes) Empty() bool {
	return len(c.Uninstalled) == 0 && len(c.Installed) == 0 &&
		len(c.Enabled) == 0 && len(c.Disabled) == 0
}

// Count returns the total number of notifications.
func (c Changes) Count() int {
	return len(c.Uninstalled) + len(c.Installed) + len(c.Enabled) + len(c.Disabled)
}

// Differ tracks the last known set of installed items and publishes the
// notifications implied by each new snapshot.
//
// A new id is an install, a vanished id an uninstall, and an enabled flip an
// enable or disable. A version change is reported as an install, matching
// how browsers signal updates.
type Differ struct {
	pub Publisher

	mu   sync.Mutex
	prev map[string]extension.Info
}

// NewDiffer creates a differ seeded with initial. Seeding publishes
// nothing: the initial set is delivered through enumeration instead.
func NewDiffer(pub Publisher, initial []extension.Info) *Differ {
	return &Differ{
		pub:  pub,
		prev: index(initial),
	}
}

// Snapshot returns the last applied set sorted by id. It satisfies
// Enumerator and is what a Hub should report from GetAll.
func (d *Differ) Snapshot() ([]extension.Info, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := lo.Values(d.prev)
	sortByID(out)
	return out, nil
}

// Apply replaces the known set with next and publishes the difference.
// Publication order is uninstalls, installs, enables, then disables, each
// sorted by id. Publisher errors are combined and returned after every
// notification has been attempted.
func (d *Differ) Apply(next []extension.Info) (Changes, error) {
	d.mu.Lock()
	changes := diff(d.prev, index(next))
	d.prev = index(next)
	d.mu.Unlock()

	var result *multierror.Error
	for _, id := range changes.Uninstalled {
		if err := d.pub.Uninstall(id); err != nil {
			result = multierror.Append(result, fmt.Errorf("uninstall %s: %w", id, err))
		}
	}
	for _, info := range changes.Installed {
		if err := d.pub.Install(info); err != nil {
			result = multierror.Append(result, fmt.Errorf("install %s: %w", info.ID, err))
		}
	}
	for _, info := range changes.Enabled {
		if err := d.pub.Enable(info); err != nil {
			result = multierror.Append(result, fmt.Errorf("enable %s: %w", info.ID, err))
		}
	}
	for _, info := range changes.Disabled {
		if err := d.pub.Disable(info); err != nil {
			result = multierror.Append(result, fmt.Errorf("disable %s: %w", info.ID, err))
		}
	}

	return changes, result.ErrorOrNil()
}

func diff(prev, next map[string]extension.Info) Changes {
	var c Changes

	removed, added := lo.Difference(lo.Keys(prev), lo.Keys(next))
	sort.Strings(removed)
	c.Uninstalled = removed

	for _, id := range added {
		c.Installed = append(c.Installed, next[id])
	}

	for id, cur := range next {
		old, ok := prev[id]
		if !ok {
			continue
		}
		if old.Version != cur.Version {
			c.Installed = append(c.Installed, cur)
		}
		if old.Enabled != cur.Enabled {
			if cur.Enabled {
				c.Enabled = append(c.Enabled, cur)
			} else {
				c.Disabled = append(c.Disabled, cur)
			}
		}
	}

	sortByID(c.Installed)
	sortByID(c.Enabled)
	sortByID(c.Disabled)
	return c
}

// index keys records by id. Records without an id are kept under the empty
// key so that the forwarder, not the differ, reports them.
func index(infos []extension.Info) map[string]extension.Info {
	return lo.SliceToMap(infos, func(i extension.Info) (string, extension.Info) {
		return i.ID, i
	})
}

func sortByID(infos []extension.Info) {
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})
}

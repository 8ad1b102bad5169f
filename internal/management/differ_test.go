package management

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/blackwell-systems/apps2desktop/internal/extension"
)

// recordingPublisher captures notifications as "op:id" strings.
type recordingPublisher struct {
	calls []string
	err   error
}

func (r *recordingPublisher) Install(i extension.Info) error {
	r.calls = append(r.calls, "install:"+i.ID)
	return r.err
}

func (r *recordingPublisher) Uninstall(id string) error {
	r.calls = append(r.calls, "uninstall:"+id)
	return r.err
}

func (r *recordingPublisher) Enable(i extension.Info) error {
	r.calls = append(r.calls, "enable:"+i.ID)
	return r.err
}

func (r *recordingPublisher) Disable(i extension.Info) error {
	r.calls = append(r.calls, "disable:"+i.ID)
	return r.err
}

func TestDiffer_SeedPublishesNothing(t *testing.T) {
	pub := &recordingPublisher{}
	NewDiffer(pub, []extension.Info{{ID: "a", Enabled: true}})

	if len(pub.calls) != 0 {
		t.Errorf("NewDiffer published %v, want nothing", pub.calls)
	}
}

func TestDiffer_Apply(t *testing.T) {
	initial := []extension.Info{
		{ID: "keep", Version: "1.0", Enabled: true},
		{ID: "gone", Version: "1.0", Enabled: true},
		{ID: "off", Version: "1.0", Enabled: true},
		{ID: "on", Version: "1.0", Enabled: false},
		{ID: "upd", Version: "1.0", Enabled: true},
	}
	next := []extension.Info{
		{ID: "keep", Version: "1.0", Enabled: true},
		{ID: "off", Version: "1.0", Enabled: false},
		{ID: "on", Version: "1.0", Enabled: true},
		{ID: "upd", Version: "2.0", Enabled: true},
		{ID: "new", Version: "0.1", Enabled: true},
	}

	pub := &recordingPublisher{}
	d := NewDiffer(pub, initial)

	changes, err := d.Apply(next)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	want := []string{
		"uninstall:gone",
		"install:new",
		"install:upd",
		"enable:on",
		"disable:off",
	}
	if diff := cmp.Diff(want, pub.calls); diff != "" {
		t.Errorf("published notifications mismatch (-want +got):\n%s", diff)
	}
	if changes.Count() != len(want) {
		t.Errorf("changes.Count() = %d, want %d", changes.Count(), len(want))
	}
}

func TestDiffer_ApplySameSnapshotIsQuiet(t *testing.T) {
	infos := []extension.Info{{ID: "a", Version: "1", Enabled: true}}
	pub := &recordingPublisher{}
	d := NewDiffer(pub, infos)

	changes, err := d.Apply(infos)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !changes.Empty() {
		t.Errorf("Apply() changes = %+v, want empty", changes)
	}
	if len(pub.calls) != 0 {
		t.Errorf("published %v, want nothing", pub.calls)
	}
}

func TestDiffer_ApplyContinuesOnPublisherError(t *testing.T) {
	boom := errors.New("boom")
	pub := &recordingPublisher{err: boom}
	d := NewDiffer(pub, []extension.Info{{ID: "a"}})

	_, err := d.Apply([]extension.Info{{ID: "b"}})
	if !errors.Is(err, boom) {
		t.Fatalf("Apply() error = %v, want errors.Is(err, boom)", err)
	}

	want := []string{"uninstall:a", "install:b"}
	if diff := cmp.Diff(want, pub.calls); diff != "" {
		t.Errorf("published notifications mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffer_Snapshot(t *testing.T) {
	pub := &recordingPublisher{}
	d := NewDiffer(pub, []extension.Info{{ID: "b"}, {ID: "a"}})

	if _, err := d.Apply([]extension.Info{{ID: "c"}, {ID: "a"}}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	got, _ := d.Snapshot()
	want := []extension.Info{{ID: "a"}, {ID: "c"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Snapshot() mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffer_DrivesHub(t *testing.T) {
	var d *Differ
	h := NewHub(func() ([]extension.Info, error) { return d.Snapshot() })
	d = NewDiffer(h, nil)

	var installed []string
	h.OnInstalled(func(i extension.Info) error { installed = append(installed, i.ID); return nil })

	if _, err := d.Apply([]extension.Info{{ID: "x", IsApp: true}}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if diff := cmp.Diff([]string{"x"}, installed); diff != "" {
		t.Errorf("installed mismatch (-want +got):\n%s", diff)
	}

	all, _ := h.GetAll()
	if len(all) != 1 || all[0].ID != "x" {
		t.Errorf("GetAll() = %+v, want the applied snapshot", all)
	}
}

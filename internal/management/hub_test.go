package management

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/blackwell-systems/apps2desktop/internal/extension"
)

func TestHub_PublishesInSubscriptionOrder(t *testing.T) {
	h := NewHub(nil)

	var got []string
	h.OnInstalled(func(i extension.Info) error { got = append(got, "first:"+i.ID); return nil })
	h.OnInstalled(func(i extension.Info) error { got = append(got, "second:"+i.ID); return nil })

	if err := h.Install(extension.Info{ID: "a1"}); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	want := []string{"first:a1", "second:a1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("handler calls mismatch (-want +got):\n%s", diff)
	}
}

func TestHub_StreamsAreIndependent(t *testing.T) {
	h := NewHub(nil)

	var calls []string
	h.OnInstalled(func(i extension.Info) error { calls = append(calls, "install:"+i.ID); return nil })
	h.OnUninstalled(func(id string) error { calls = append(calls, "uninstall:"+id); return nil })
	h.OnEnabled(func(i extension.Info) error { calls = append(calls, "enable:"+i.ID); return nil })
	h.OnDisabled(func(i extension.Info) error { calls = append(calls, "disable:"+i.ID); return nil })

	_ = h.Disable(extension.Info{ID: "d"})
	_ = h.Uninstall("u")
	_ = h.Enable(extension.Info{ID: "e"})
	_ = h.Install(extension.Info{ID: "i"})

	want := []string{"disable:d", "uninstall:u", "enable:e", "install:i"}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("handler calls mismatch (-want +got):\n%s", diff)
	}
}

func TestHub_HandlerErrorDoesNotStopOthers(t *testing.T) {
	h := NewHub(nil)
	boom := errors.New("boom")

	called := false
	h.OnUninstalled(func(string) error { return boom })
	h.OnUninstalled(func(string) error { called = true; return nil })

	err := h.Uninstall("x")
	if !errors.Is(err, boom) {
		t.Errorf("Uninstall() error = %v, want errors.Is(err, boom)", err)
	}
	if !called {
		t.Error("second handler was not called after the first failed")
	}
}

func TestHub_GetAll(t *testing.T) {
	h := NewHub(nil)
	infos, err := h.GetAll()
	if err != nil || len(infos) != 0 {
		t.Fatalf("GetAll() with nil enumerator = %v, %v; want empty, nil", infos, err)
	}

	want := []extension.Info{{ID: "b"}, {ID: "a"}}
	h.SetEnumerator(func() ([]extension.Info, error) { return want, nil })

	got, err := h.GetAll()
	if err != nil {
		t.Fatalf("GetAll() error = %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetAll() mismatch (-want +got):\n%s", diff)
	}
}

package app

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestWatchCommandFlags(t *testing.T) {
	for _, name := range []string{"daemon", "daemon-child", "pid-file", "log-file", "stop"} {
		if watchCmd.Flags().Lookup(name) == nil {
			t.Errorf("expected --%s flag to be registered", name)
		}
	}
	if f := watchCmd.Flags().Lookup("daemon-child"); f != nil && !f.Hidden {
		t.Error("expected --daemon-child to be hidden")
	}
}

func TestWatchCommandLongDescription(t *testing.T) {
	for _, want := range []string{"install", "uninstall", "queued", "Foreground"} {
		if !strings.Contains(watchCmd.Long, want) {
			t.Errorf("watch long description should mention %q", want)
		}
	}
}

func TestWatchDaemonStopConflict(t *testing.T) {
	setupEnv(t)

	if _, err := runCmd(t, "watch", "--daemon", "--stop"); err == nil {
		t.Error("expected error when both --daemon and --stop are given")
	}
}

func TestWatchStop_NotRunning(t *testing.T) {
	home := setupEnv(t)

	if _, err := runCmd(t, "watch", "--stop", "--pid-file", home+"/none.pid"); err != nil {
		t.Errorf("watch --stop with no daemon error = %v", err)
	}
}

func TestDaemonChildArgs(t *testing.T) {
	setupEnv(t)
	watchPIDFile = "/tmp/w.pid"

	want := []string{"watch", "--daemon-child", "--pid-file", "/tmp/w.pid"}
	if diff := cmp.Diff(want, daemonChildArgs()); diff != "" {
		t.Errorf("daemonChildArgs() without overrides (-want +got):\n%s", diff)
	}

	dbPath = "/tmp/j.db"
	browserName = "edge"
	profileDir = "/tmp/Profile 1"
	want = append(want, "--db", "/tmp/j.db", "--browser", "edge", "--profile", "/tmp/Profile 1")
	if diff := cmp.Diff(want, daemonChildArgs()); diff != "" {
		t.Errorf("daemonChildArgs() with overrides (-want +got):\n%s", diff)
	}
}

func TestWatch_InvalidConfig(t *testing.T) {
	home := setupEnv(t)
	writeTestFile(t, home+"/bad.toml", `target = "desktop"`)

	_, err := runCmd(t, "watch", "--config", home+"/bad.toml", "--pid-file", home+"/w.pid", "--log-file", home+"/w.log")
	if err == nil || !strings.Contains(err.Error(), "unknown target") {
		t.Errorf("watch with bad config error = %v, want unknown target", err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestDir_RespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if dir != filepath.Join("/tmp/xdg", "apps2desktop") {
		t.Errorf("Dir() = %q, want /tmp/xdg/apps2desktop", dir)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.toml", `
browser = "chromium"
target = "native-host"
host_command = ["/usr/libexec/a2d-host", "--verbose"]
retry_delay = "5s"
debounce = "250ms"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Browser != "chromium" || cfg.Target != TargetNativeHost {
		t.Errorf("Load() = %+v", cfg)
	}
	if len(cfg.HostCommand) != 2 || cfg.HostCommand[0] != "/usr/libexec/a2d-host" {
		t.Errorf("HostCommand = %v", cfg.HostCommand)
	}
	if cfg.RetryDelay.Duration != 5*time.Second {
		t.Errorf("RetryDelay = %v, want 5s", cfg.RetryDelay)
	}
	if cfg.Debounce.Duration != 250*time.Millisecond {
		t.Errorf("Debounce = %v, want 250ms", cfg.Debounce)
	}
	// Unspecified fields come from defaults.
	if cfg.ElementID != "Apps2Desktop" || cfg.MaxPending != 256 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.yaml", `
profile_dir: /home/me/.config/chromium/Profile 1
max_pending: 10
poll_interval: 1m
log_level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ProfileDir != "/home/me/.config/chromium/Profile 1" {
		t.Errorf("ProfileDir = %q", cfg.ProfileDir)
	}
	if cfg.MaxPending != 10 || cfg.PollInterval.Duration != time.Minute || cfg.LogLevel != "debug" {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoad_JSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "config.json", `{"metrics_addr": "127.0.0.1:9464", "element_id": "Other"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" || cfg.ElementID != "Other" {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantSub string
	}{
		{"bad extension", "config.ini", "x=1", "unsupported"},
		{"bad duration", "config.json", `{"retry_delay": "soon"}`, "invalid duration"},
		{"unknown target", "config.json", `{"target": "desktop"}`, "unknown target"},
		{"host without command", "config.yaml", "target: native-host\n", "host_command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, dir, tt.file, tt.content)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoadDefault_NoFile(t *testing.T) {
	cfg, path, err := LoadDefault(t.TempDir())
	if err != nil {
		t.Fatalf("LoadDefault() error: %v", err)
	}
	if path != "" {
		t.Errorf("LoadDefault() path = %q, want empty", path)
	}
	if cfg.Target != TargetJournal || cfg.Browser != "chrome" {
		t.Errorf("LoadDefault() = %+v, want defaults", cfg)
	}
}

func TestLoadDefault_PrefersTOML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", `browser = "edge"`)
	writeConfig(t, dir, "config.json", `{"browser": "brave"}`)

	cfg, path, err := LoadDefault(dir)
	if err != nil {
		t.Fatalf("LoadDefault() error: %v", err)
	}
	if filepath.Base(path) != "config.toml" || cfg.Browser != "edge" {
		t.Errorf("LoadDefault() = %q, %+v; want config.toml with browser edge", path, cfg)
	}
}

package app

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/blackwell-systems/apps2desktop/internal/store"
)

const (
	testAppID = "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	testExtID = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

// setupEnv points HOME and XDG_CONFIG_HOME at a temp dir and resets every
// package-level flag variable for the duration of the test.
func setupEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("NO_COLOR", "1")

	strs := []*string{&dbPath, &configPath, &logLevel, &browserName, &profileDir, &watchPIDFile, &watchLogFile}
	bools := []*bool{&listAll, &listJSON, &watchDaemon, &watchDaemonChild, &watchStop, &historyApps, &historyJSON}
	savedStrs := make([]string, len(strs))
	savedBools := make([]bool, len(bools))
	for i, p := range strs {
		savedStrs[i] = *p
		*p = ""
	}
	for i, p := range bools {
		savedBools[i] = *p
		*p = false
	}
	savedLimit := historyLimit
	historyLimit = 20

	t.Cleanup(func() {
		for i, p := range strs {
			*p = savedStrs[i]
		}
		for i, p := range bools {
			*p = savedBools[i]
		}
		historyLimit = savedLimit
	})
	return home
}

// runCmd executes the root command with args and returns what it wrote.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	defer func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetArgs(nil)
		resetFlags()
	}()
	err := Execute()
	return out.String(), err
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeProfile creates a profile with one hosted app and one extension.
func writeProfile(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "Default")
	writeTestFile(t, filepath.Join(dir, "Extensions", testAppID, "1.0_0", "manifest.json"),
		`{"name":"Docs","version":"1.0","app":{"launch":{"web_url":"https://docs.example/"}}}`)
	writeTestFile(t, filepath.Join(dir, "Extensions", testExtID, "2.0_0", "manifest.json"),
		`{"name":"Blocker","version":"2.0"}`)
	writeTestFile(t, filepath.Join(dir, "Preferences"), `{}`)
	return dir
}

// seedJournal writes one added and one removed app to a journal at path.
func seedJournal(t *testing.T, path string) {
	t.Helper()
	st, err := store.New(path)
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()
	if err := st.CreateSchema(); err != nil {
		t.Fatalf("CreateSchema() error = %v", err)
	}

	base := time.Now().Add(-time.Hour)
	if err := st.AddApp(&store.App{ID: testAppID, Name: "Docs", Version: "1.0", Enabled: true, UpdatedAt: base}); err != nil {
		t.Fatalf("AddApp() error = %v", err)
	}
	if _, err := st.RemoveApp("gone", base.Add(time.Minute)); err != nil {
		t.Fatalf("RemoveApp() error = %v", err)
	}
}

// resetFlags restores every flag to its default; cobra keeps flag values
// and their changed state between Execute calls.
func resetFlags() {
	cmds := append([]*cobra.Command{RootCmd}, RootCmd.Commands()...)
	for _, c := range cmds {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

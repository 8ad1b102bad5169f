package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/apps2desktop/internal/browser"
	"github.com/blackwell-systems/apps2desktop/internal/config"
	"github.com/blackwell-systems/apps2desktop/internal/output"
	"github.com/blackwell-systems/apps2desktop/internal/store"
	"github.com/blackwell-systems/apps2desktop/internal/watcher"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check daemon status and journal statistics",
	Long: `Display the current status of the apps2desktop daemon and journal.

Shows:
  • Daemon running status and PID
  • Profile being watched and the configured target
  • Number of apps recorded in the journal
  • Total lifecycle events forwarded and the most recent one`,
	Example: `  # Check status
  apps2desktop status`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	pidFile, err := getDefaultPIDFile()
	if err != nil {
		return fmt.Errorf("failed to get PID file path: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	daemonRunning, err := watcher.IsDaemonRunning(pidFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	const label = "%-10s"

	fmt.Fprintln(out)

	if daemonRunning {
		fmt.Fprintf(out, label+"running (since %s, PID %d)\n", "Daemon:", daemonSince(pidFile), watcher.ReadPID(pidFile))
	} else {
		fmt.Fprintf(out, label+"stopped  (run 'apps2desktop watch --daemon')\n", "Daemon:")
	}

	profile := cfg.ProfileDir
	if profile == "" {
		if dir, err := browser.DefaultProfileDir(cfg.Browser); err == nil {
			profile = dir
		} else {
			profile = "unknown (" + err.Error() + ")"
		}
	}
	fmt.Fprintf(out, label+"%s · %s\n", "Profile:", cfg.Browser, profile)

	targetDesc := cfg.Target
	if cfg.Target == config.TargetNativeHost && len(cfg.HostCommand) > 0 {
		targetDesc += " · " + cfg.HostCommand[0]
	}
	fmt.Fprintf(out, label+"%s → %s\n", "Target:", cfg.ElementID, targetDesc)

	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		fmt.Fprintf(out, label+"not created yet (run 'apps2desktop watch')\n", "Journal:")
		fmt.Fprintln(out)
		return nil
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	apps, err := st.ListApps()
	if err != nil {
		return err
	}
	total, err := st.GetEventCount()
	if err != nil {
		return err
	}
	last, err := st.GetLastEventTime()
	if err != nil {
		return err
	}

	enabled := 0
	for _, a := range apps {
		if a.Enabled {
			enabled++
		}
	}

	fmt.Fprintf(out, label+"%d apps (%d enabled) · %s\n", "Journal:", len(apps), enabled, cfg.DBPath)
	fmt.Fprintf(out, label+"%s total · last %s\n", "Events:", formatNumber(total), output.FormatRelativeTime(last))
	fmt.Fprintln(out)
	return nil
}

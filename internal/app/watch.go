package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/apps2desktop/internal/bridge"
	"github.com/blackwell-systems/apps2desktop/internal/config"
	"github.com/blackwell-systems/apps2desktop/internal/output"
	"github.com/blackwell-systems/apps2desktop/internal/watcher"
)

var (
	watchDaemon      bool
	watchDaemonChild bool
	watchPIDFile     string
	watchLogFile     string
	watchStop        bool

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Forward app lifecycle events from the browser profile",
		Long: `Watch the browser profile and forward app lifecycle events to the
Apps2Desktop element.

On start, every installed app is replayed to the element as an install.
After that, changes to the profile are picked up via filesystem events
(with a periodic rescan as fallback) and forwarded as they happen:
  • install / update  -> add
  • enable            -> enable
  • disable           -> disable
  • uninstall         -> remove (always, apps or not)

While the element is unavailable (a native host restarting, say)
notifications are queued and retried in order.

Watch modes:
  • Foreground (default): Run in current terminal with Ctrl+C to stop
  • Daemon: Run as background process
  • Stop: Stop a running daemon`,
		Example: `  # Run in foreground (Ctrl+C to stop)
  apps2desktop watch

  # Run as background daemon
  apps2desktop watch --daemon

  # Stop running daemon
  apps2desktop watch --stop

  # Use custom PID and log files
  apps2desktop watch --daemon --pid-file /tmp/watch.pid --log-file /tmp/watch.log`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().BoolVar(&watchDaemon, "daemon", false, "run as background daemon")
	watchCmd.Flags().BoolVar(&watchDaemonChild, "daemon-child", false, "internal flag for daemon child process")
	watchCmd.Flags().StringVar(&watchPIDFile, "pid-file", "", "PID file path (default: ~/.apps2desktop/watch.pid)")
	watchCmd.Flags().StringVar(&watchLogFile, "log-file", "", "log file path (default: ~/.apps2desktop/watch.log)")
	watchCmd.Flags().BoolVar(&watchStop, "stop", false, "stop running daemon")

	// Hide the internal daemon-child flag from help
	watchCmd.Flags().MarkHidden("daemon-child")
	watchCmd.MarkFlagsMutuallyExclusive("daemon", "stop")
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Get default paths if not specified
	if watchPIDFile == "" {
		defaultPID, err := getDefaultPIDFile()
		if err != nil {
			return fmt.Errorf("failed to get default PID file path: %w", err)
		}
		watchPIDFile = defaultPID
	}

	if watchLogFile == "" {
		defaultLog, err := getDefaultLogFile()
		if err != nil {
			return fmt.Errorf("failed to get default log file path: %w", err)
		}
		watchLogFile = defaultLog
	}

	// Handle stop command
	if watchStop {
		return stopWatchDaemon()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if watchDaemon {
		return startWatchDaemon()
	}

	if watchDaemonChild {
		return runWatchDaemonChild(cfg)
	}

	return runWatchForeground(cfg)
}

func stopWatchDaemon() error {
	running, err := watcher.IsDaemonRunning(watchPIDFile)
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		fmt.Println("Daemon is not running")
		return nil
	}

	spinner := output.NewSpinner("Stopping daemon")
	spinner.Start()
	if err := watcher.StopDaemon(watchPIDFile); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon stopped")

	return nil
}

func startWatchDaemon() error {
	spinner := output.NewSpinner("Starting daemon")
	spinner.Start()
	if err := watcher.StartDaemon(watchPIDFile, watchLogFile, daemonChildArgs()); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to start daemon: %w", err)
	}
	spinner.StopWithMessage("✓ Daemon started")

	fmt.Printf("\nForwarding daemon started\n")
	fmt.Printf("  PID file: %s\n", watchPIDFile)
	fmt.Printf("  Log file: %s\n", watchLogFile)
	fmt.Printf("\nTo stop: apps2desktop watch --stop\n")

	return nil
}

// daemonChildArgs rebuilds the command line for the daemon child so it
// sees the same files and overrides as the parent.
func daemonChildArgs() []string {
	args := []string{"watch", "--daemon-child", "--pid-file", watchPIDFile}
	for _, f := range []struct{ name, value string }{
		{"db", dbPath},
		{"config", configPath},
		{"log-level", logLevel},
		{"browser", browserName},
		{"profile", profileDir},
	} {
		if f.value != "" {
			args = append(args, "--"+f.name, f.value)
		}
	}
	return args
}

func runWatchDaemonChild(cfg config.Config) error {
	// stdout/stderr are redirected to the log file, so log JSON lines there
	log, err := newLogger(os.Stderr, cfg)
	if err != nil {
		return err
	}

	b, err := bridge.New(cfg, log)
	if err != nil {
		return err
	}

	log.Info().Int("pid", os.Getpid()).Str("target", cfg.Target).Msg("daemon starting")
	return watcher.RunDaemon(b, watchPIDFile, log)
}

func runWatchForeground(cfg config.Config) error {
	log, err := newLogger(os.Stderr, cfg)
	if err != nil {
		return err
	}

	b, err := bridge.New(cfg, log)
	if err != nil {
		return err
	}

	fmt.Println("Forwarding app lifecycle events (press Ctrl+C to stop)...")
	fmt.Printf("  Profile: %s\n", b.Profile().Dir)
	fmt.Printf("  Target:  %s (%s)\n", cfg.Target, cfg.ElementID)
	fmt.Println()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	if err := b.Start(); err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}

	sig := <-sigCh
	fmt.Printf("\nReceived signal %v, shutting down...\n", sig)

	spinner := output.NewSpinner("Stopping")
	spinner.Start()
	if err := b.Stop(); err != nil {
		spinner.Stop()
		return fmt.Errorf("failed to stop: %w", err)
	}
	spinner.StopWithMessage("✓ Stopped")

	return nil
}

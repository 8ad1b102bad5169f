package app

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/apps2desktop/internal/config"
	"github.com/blackwell-systems/apps2desktop/internal/logging"
)

var (
	dbPath      string
	configPath  string
	logLevel    string
	browserName string
	profileDir  string

	// RootCmd is the root command for apps2desktop
	RootCmd = &cobra.Command{
		Use:   "apps2desktop",
		Short: "Forward browser app lifecycle events to the desktop",
		Long: `apps2desktop watches a Chromium-family browser profile and forwards the
lifecycle of installed apps (install, enable, disable, uninstall) to the
Apps2Desktop element, which owns the desktop-side integration.

Extensions that are not apps are ignored, except that uninstalls are always
forwarded so the desktop side can clean up.

Quick Start:
  1. apps2desktop list             # see what the profile contains
  2. apps2desktop watch --daemon   # start forwarding in the background
  3. apps2desktop status

Targets:
  • journal (default): records every call in a local SQLite journal
  • native-host: frames every call to a helper process using the
    browser native messaging wire format

Examples:
  # List apps in the default Chrome profile
  apps2desktop list

  # Watch a specific Chromium profile in the foreground
  apps2desktop watch --browser chromium --profile ~/.config/chromium/Profile\ 1

  # Show recent forwarded events
  apps2desktop history --limit 50`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "apps2desktop: forward browser app lifecycle events to the desktop")
			fmt.Fprintln(out)
			path, _ := getDBPath()
			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Fprintln(out, "Run 'apps2desktop watch' to start forwarding.")
			} else {
				fmt.Fprintln(out, "Tip: Run 'apps2desktop status' to check the daemon.")
			}
			fmt.Fprintln(out, "Run 'apps2desktop --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "journal database path (default: ~/.apps2desktop/apps2desktop.db)")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/apps2desktop/config.{toml,yaml,json})")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error, off")
	RootCmd.PersistentFlags().StringVar(&browserName, "browser", "", "browser whose profile to read: chrome, chromium, edge, brave")
	RootCmd.PersistentFlags().StringVar(&profileDir, "profile", "", "profile directory (default: the browser's Default profile)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2

	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(statusCmd)
	RootCmd.AddCommand(historyCmd)
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// getDataDir returns ~/.apps2desktop, creating it if needed.
func getDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	dir := filepath.Join(home, ".apps2desktop")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create apps2desktop directory: %w", err)
	}
	return dir, nil
}

// getDBPath returns the database path, using the flag value or default
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	dir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "apps2desktop.db"), nil
}

// getDefaultPIDFile returns the default PID file path
func getDefaultPIDFile() (string, error) {
	dir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.pid"), nil
}

// getDefaultLogFile returns the default log file path
func getDefaultLogFile() (string, error) {
	dir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "watch.log"), nil
}

// loadConfig reads the config file (explicit --config, or the first one
// found in the config directory) and applies the global flag overrides.
func loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		dir, dirErr := config.Dir()
		if dirErr != nil {
			return cfg, fmt.Errorf("failed to locate config directory: %w", dirErr)
		}
		cfg, _, err = config.LoadDefault(dir)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
	}

	if browserName != "" {
		cfg.Browser = browserName
	}
	if profileDir != "" {
		cfg.ProfileDir = profileDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if dbPath != "" || cfg.DBPath == "" {
		cfg.DBPath, err = getDBPath()
		if err != nil {
			return cfg, fmt.Errorf("failed to get database path: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger builds the logger for cfg writing to w.
func newLogger(w io.Writer, cfg config.Config) (zerolog.Logger, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}
	return logging.New(w, level), nil
}

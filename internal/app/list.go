package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/apps2desktop/internal/browser"
	"github.com/blackwell-systems/apps2desktop/internal/extension"
	"github.com/blackwell-systems/apps2desktop/internal/output"
)

var (
	listAll  bool
	listJSON bool

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List apps installed in the browser profile",
		Long: `Read the browser profile and list the installed apps, the items that
'watch' forwards to the Apps2Desktop element.

Names are resolved from the app's locale files, the launch URL is taken from
the manifest, and the enabled state from the profile preferences.`,
		Example: `  # Apps in the default Chrome profile
  apps2desktop list

  # Include extensions that are not apps
  apps2desktop list --all

  # Machine-readable output
  apps2desktop list --json`,
		Args: cobra.NoArgs,
		RunE: runList,
	}
)

func init() {
	listCmd.Flags().BoolVar(&listAll, "all", false, "include extensions that are not apps")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON instead of a table")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(os.Stderr, cfg)
	if err != nil {
		return err
	}

	profile, err := browser.NewProfile(cfg.Browser, cfg.ProfileDir, log)
	if err != nil {
		return fmt.Errorf("failed to resolve browser profile: %w", err)
	}

	items, err := profile.Extensions()
	if err != nil {
		return err
	}

	shown := items
	if !listAll {
		shown = lo.Filter(items, func(it extension.Info, _ int) bool { return it.IsApp })
	}

	out := cmd.OutOrStdout()
	if listJSON {
		if shown == nil {
			shown = []extension.Info{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(shown)
	}

	fmt.Fprintf(out, "Profile: %s (%s)\n", profile.Dir, profile.Browser)
	fmt.Fprint(out, output.RenderKindSummary(items, listAll))
	fmt.Fprintln(out)
	fmt.Fprint(out, output.RenderProfileTable(shown))
	return nil
}

package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/apps2desktop/internal/output"
	"github.com/blackwell-systems/apps2desktop/internal/store"
)

var (
	historyLimit int
	historyApps  bool
	historyJSON  bool

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show lifecycle events recorded by the journal",
		Long: `Show the lifecycle calls the journal target has received, newest first.

With --apps, show the apps the journal currently holds instead.`,
		Example: `  # Last 20 events
  apps2desktop history

  # Everything
  apps2desktop history --limit 0

  # Current journal contents
  apps2desktop history --apps`,
		Args: cobra.NoArgs,
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of events to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyApps, "apps", false, "show journal apps instead of events")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print JSON instead of a table")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyLimit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", historyLimit)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
		return store.ErrNotInitialized
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()

	if historyApps {
		apps, err := st.ListApps()
		if err != nil {
			return err
		}
		if historyJSON {
			return writeJSON(cmd, apps)
		}
		fmt.Fprint(out, output.RenderJournalTable(apps))
		return nil
	}

	events, err := st.ListEvents(historyLimit)
	if err != nil {
		return err
	}
	if historyJSON {
		return writeJSON(cmd, events)
	}
	fmt.Fprint(out, output.RenderEventTable(events))
	return nil
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

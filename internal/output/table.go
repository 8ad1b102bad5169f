// Package output provides terminal output utilities for apps2desktop.
//
// This package includes:
//   - Table rendering for profile items, journal apps and lifecycle events
//   - Spinners for indeterminate operations
//   - Human-readable formatting for dates and other data
//
// All table rendering functions use box-drawing rules and ANSI color codes for terminal output.
// Color is only emitted when stdout is a TTY and NO_COLOR is unset.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/apps2desktop/internal/extension"
	"github.com/blackwell-systems/apps2desktop/internal/store"
)

// ANSI color codes for state and action display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderProfileTable renders the items read from a browser profile.
// Items are sorted by name, then id.
func RenderProfileTable(items []extension.Info) string {
	if len(items) == 0 {
		return "No apps found.\n"
	}

	sorted := make([]extension.Info, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Name != sorted[j].Name {
			return sorted[i].Name < sorted[j].Name
		}
		return sorted[i].ID < sorted[j].ID
	})

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-24s %-32s %-12s %-9s %-8s %s\n",
		"Name", "ID", "Version", "Kind", "State", "Launch URL"))
	sb.WriteString(strings.Repeat("─", 110))
	sb.WriteString("\n")

	for _, it := range sorted {
		launch := it.AppLaunchURL
		if launch == "" {
			launch = "—"
		}
		sb.WriteString(fmt.Sprintf("%-24s %-32s %-12s %-9s %s %s\n",
			truncate(it.Name, 24),
			it.ID,
			truncate(it.Version, 12),
			it.Kind(),
			padColor(formatState(it.Enabled), 8),
			launch))
	}

	return sb.String()
}

// RenderJournalTable renders the apps recorded by the journal target.
func RenderJournalTable(apps []*store.App) string {
	if len(apps) == 0 {
		return "No apps recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-24s %-32s %-12s %-8s %-14s %s\n",
		"Name", "ID", "Version", "State", "Added", "Updated"))
	sb.WriteString(strings.Repeat("─", 108))
	sb.WriteString("\n")

	for _, app := range apps {
		sb.WriteString(fmt.Sprintf("%-24s %-32s %-12s %s %-14s %s\n",
			truncate(app.Name, 24),
			app.ID,
			truncate(app.Version, 12),
			padColor(formatState(app.Enabled), 8),
			formatRelativeTime(app.AddedAt),
			formatRelativeTime(app.UpdatedAt)))
	}

	return sb.String()
}

// RenderEventTable renders lifecycle events in the order given (the
// journal returns newest first).
func RenderEventTable(events []*store.LifecycleEvent) string {
	if len(events) == 0 {
		return "No lifecycle events recorded.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-20s %-8s %-32s %s\n", "Time", "Action", "App", "Detail"))
	sb.WriteString(strings.Repeat("─", 80))
	sb.WriteString("\n")

	for _, ev := range events {
		detail := ev.Detail
		if detail == "" {
			detail = "—"
		}
		sb.WriteString(fmt.Sprintf("%-20s %s %-32s %s\n",
			ev.Timestamp.Local().Format("2006-01-02 15:04:05"),
			padColor(colorize(getActionColor(ev.Action), string(ev.Action)), 8),
			ev.AppID,
			detail))
	}

	return sb.String()
}

// RenderKindSummary renders a one-line breakdown of a profile listing.
// Format: "APPS: 3 (2 enabled) · EXTENSIONS: 12 (hidden, use --all)"
func RenderKindSummary(items []extension.Info, showAll bool) string {
	var apps, enabled, exts int
	for _, it := range items {
		if !it.IsApp {
			exts++
			continue
		}
		apps++
		if it.Enabled {
			enabled++
		}
	}

	extPart := fmt.Sprintf("EXTENSIONS: %d", exts)
	if !showAll && exts > 0 {
		extPart += " (hidden, use --all)"
	}

	return fmt.Sprintf("%s · %s\n",
		colorize(colorGreen, fmt.Sprintf("APPS: %d (%d enabled)", apps, enabled)),
		colorize(colorGray, extPart))
}

func formatState(enabled bool) string {
	if enabled {
		return colorize(colorGreen, "enabled")
	}
	return colorize(colorYellow, "disabled")
}

// padColor pads s to width visible characters; ANSI codes do not count.
func padColor(s string, width int) string {
	visible := len(stripANSI(s))
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func stripANSI(s string) string {
	for _, code := range []string{colorReset, colorGreen, colorYellow, colorRed, colorGray} {
		s = strings.ReplaceAll(s, code, "")
	}
	return s
}

// getActionColor returns the ANSI color code for a lifecycle action.
func getActionColor(action store.Action) string {
	switch action {
	case store.ActionAdd, store.ActionEnable:
		return colorGreen
	case store.ActionDisable:
		return colorYellow
	case store.ActionRemove:
		return colorRed
	default:
		return colorGray
	}
}

// formatRelativeTime converts a timestamp to relative time (e.g., "2 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return plural(int(diff.Minutes()), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff.Hours()), "hour")
	case diff < 7*24*time.Hour:
		return plural(int(diff.Hours()/24), "day")
	case diff < 30*24*time.Hour:
		return plural(int(diff.Hours()/24/7), "week")
	case diff < 365*24*time.Hour:
		return plural(int(diff.Hours()/24/30), "month")
	default:
		return plural(int(diff.Hours()/24/365), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit + " ago"
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// FormatRelativeTime is formatRelativeTime for callers outside the package.
func FormatRelativeTime(t time.Time) string {
	return formatRelativeTime(t)
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

package browser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// resolveMessage replaces a __MSG_key__ placeholder with its translation
// from the extension's _locales directory. Message keys are matched
// case-insensitively. The key itself is returned when no locale has it.
func resolveMessage(msg, extDir, defaultLocale string) string {
	if !strings.HasPrefix(msg, "__MSG_") || !strings.HasSuffix(msg, "__") {
		return msg
	}
	key := strings.TrimSuffix(strings.TrimPrefix(msg, "__MSG_"), "__")

	for _, locale := range localeOrder(filepath.Join(extDir, "_locales"), defaultLocale) {
		if val, ok := lookupMessage(filepath.Join(extDir, "_locales", locale, "messages.json"), key); ok {
			return val
		}
	}
	return key
}

// localeOrder returns the default locale, then English, then every other
// locale directory in name order.
func localeOrder(localesDir, defaultLocale string) []string {
	var order []string
	seen := make(map[string]bool)
	add := func(l string) {
		if l != "" && !seen[l] {
			seen[l] = true
			order = append(order, l)
		}
	}

	add(defaultLocale)
	add("en")
	add("en_US")

	entries, err := os.ReadDir(localesDir)
	if err != nil {
		return order
	}
	var rest []string
	for _, e := range entries {
		if e.IsDir() {
			rest = append(rest, e.Name())
		}
	}
	sort.Strings(rest)
	for _, l := range rest {
		add(l)
	}
	return order
}

func lookupMessage(path, key string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	var messages map[string]struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &messages); err != nil {
		return "", false
	}

	if m, ok := messages[key]; ok {
		return m.Message, true
	}
	for k, m := range messages {
		if strings.EqualFold(k, key) {
			return m.Message, true
		}
	}
	return "", false
}

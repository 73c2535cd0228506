package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"longevity/internal/protocol"
	"longevity/internal/streak"
)

// resolveItem finds an item by id, unique id prefix or case-insensitive name
func resolveItem(m *protocol.Manager, ref string) (protocol.Item, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return protocol.Item{}, fmt.Errorf("item reference is required")
	}

	var matches []protocol.Item
	for _, item := range m.Items() {
		if item.ID == ref {
			return item, nil
		}
		if strings.HasPrefix(item.ID, ref) || strings.EqualFold(item.Name, ref) {
			matches = append(matches, item)
		}
	}

	switch len(matches) {
	case 0:
		return protocol.Item{}, fmt.Errorf("%q: %w", ref, protocol.ErrItemNotFound)
	case 1:
		return matches[0], nil
	default:
		return protocol.Item{}, fmt.Errorf("%q matches %d items, use a longer id", ref, len(matches))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func parseDateOrToday(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return streak.DateKey(now()), nil
	}
	if _, err := time.ParseInLocation(streak.DateLayout, date, time.Local); err != nil {
		return "", fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
	}
	return date, nil
}

// parseKeyValues parses "key=value" float pairs
func parseKeyValues(args []string) (map[string]float64, error) {
	out := make(map[string]float64, len(args))
	for _, arg := range args {
		key, raw, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid %q (expected key=value)", arg)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", key, raw)
		}
		out[strings.TrimSpace(key)] = v
	}
	return out, nil
}

func formatOptionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func relTime(t time.Time) string {
	return humanize.RelTime(t, now(), "ago", "from now")
}

// Package ingest pulls provider payloads into the local database:
// upcoming events with their quotes, and finished matches with per-map
// statistics.
package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/evaristomat/lol-v2/internal/models"
)

// ParseStatValue reads a provider stat value. Values arrive as strings
// and large ones carry a "k" suffix ("11.5k" is 11500).
func ParseStatValue(raw string) (float64, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return 0, fmt.Errorf("empty stat value")
	}

	multiplier := 1.0
	if strings.HasSuffix(s, "k") {
		multiplier = 1000
		s = strings.TrimSuffix(s, "k")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unreadable stat value %q: %w", raw, err)
	}
	return v * multiplier, nil
}

// canonicalStat maps a provider period_stats key to the canonical stat
// name, or "" for stats we do not track.
func canonicalStat(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	switch {
	case strings.Contains(k, "dragon"):
		return models.StatDragons
	case strings.Contains(k, "baron"):
		return models.StatBarons
	case strings.Contains(k, "tower"), strings.Contains(k, "turret"):
		return models.StatTowers
	case strings.Contains(k, "inhibitor"):
		return models.StatInhibitors
	case strings.Contains(k, "duration"):
		return models.StatGameDuration
	case strings.Contains(k, "kill"):
		return models.StatKills
	}
	return ""
}

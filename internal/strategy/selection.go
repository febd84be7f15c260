// Package strategy evaluates quoted market lines against historical
// samples and emits bet candidates.
package strategy

import (
	"regexp"
	"strings"

	"github.com/evaristomat/lol-v2/internal/models"
	"github.com/evaristomat/lol-v2/internal/probability"
)

var mapNumberRe = regexp.MustCompile(`(?i)\bmap\s+(\d+)`)

// statKeywords maps market-name fragments to canonical stat names.
// Scanned in order so the more specific fragments win.
var statKeywords = []struct {
	fragment string
	stat     string
}{
	{"dragon", models.StatDragons},
	{"baron", models.StatBarons},
	{"tower", models.StatTowers},
	{"turret", models.StatTowers},
	{"inhibitor", models.StatInhibitors},
	{"duration", models.StatGameDuration},
	{"kill", models.StatKills},
}

// ParseSide extracts the side from a selection label. The side must be
// the leading token ("Over 25.5", "Under 3.5 Dragons").
func ParseSide(label string) (probability.Side, error) {
	fields := strings.Fields(strings.TrimSpace(label))
	if len(fields) == 0 {
		return "", models.ErrAmbiguousSelection
	}
	switch strings.ToLower(fields[0]) {
	case "over":
		return probability.SideOver, nil
	case "under":
		return probability.SideUnder, nil
	}
	return "", models.ErrAmbiguousSelection
}

// MarketStat reduces a market name to the canonical stat it quotes.
// Unrecognized markets default to kills, the most common quote.
func MarketStat(market string) string {
	lower := strings.ToLower(market)
	for _, kw := range statKeywords {
		if strings.Contains(lower, kw.fragment) {
			return kw.stat
		}
	}
	return models.StatKills
}

// MapNumber extracts the map a market refers to ("Map 2 - Totals").
// Markets without an explicit map quote map 1.
func MapNumber(market string) int {
	m := mapNumberRe.FindStringSubmatch(market)
	if m == nil {
		return 1
	}
	n := 0
	for _, c := range m[1] {
		n = n*10 + int(c-'0')
	}
	if n < 1 {
		return 1
	}
	return n
}

// MatchPlayer finds which known player a market name refers to. When
// several candidate names appear in the label the longest one wins, so
// "Faker Jr" is not mistaken for "Faker".
func MatchPlayer(market string, candidates []string) string {
	lower := strings.ToLower(market)
	best := ""
	for _, name := range candidates {
		if name == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(name)) && len(name) > len(best) {
			best = name
		}
	}
	return best
}

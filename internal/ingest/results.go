package ingest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/evaristomat/lol-v2/internal/bet365"
	"github.com/evaristomat/lol-v2/internal/models"
	"github.com/evaristomat/lol-v2/internal/repository"
)

// ResultIngestor pulls graded results for events the ledger still has
// pending bets on, and records them as matches with per-map stats.
type ResultIngestor struct {
	client  *bet365.Client
	bets    repository.BetStore
	matches repository.MatchStore
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewResultIngestor creates the result ingestor
func NewResultIngestor(client *bet365.Client, bets repository.BetStore, matches repository.MatchStore, log logrus.FieldLogger) *ResultIngestor {
	return &ResultIngestor{
		client:  client,
		bets:    bets,
		matches: matches,
		log:     log,
		now:     time.Now,
	}
}

// SyncPending fetches results for every distinct event with a pending
// bet whose fixture has started. Ungraded events are skipped quietly.
func (g *ResultIngestor) SyncPending(ctx context.Context) error {
	pending, err := g.bets.GetPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to list pending bets: %w", err)
	}

	now := g.now()
	seen := make(map[string]bool)
	stored, skipped, failed := 0, 0, 0

	for _, bet := range pending {
		if seen[bet.EventID] {
			continue
		}
		seen[bet.EventID] = true

		if !bet.EventDate.IsZero() && bet.EventDate.After(now) {
			skipped++
			continue
		}

		// Already ingested on a previous run.
		if _, err := g.matches.FindByExternalID(ctx, bet.EventID); err == nil {
			skipped++
			continue
		} else if !errors.Is(err, models.ErrNotFound) {
			return err
		}

		ok, err := g.syncEvent(ctx, bet.EventID)
		if err != nil {
			failed++
			g.log.WithField("event_id", bet.EventID).
				Warnf("Result sync failed: %v", err)
			continue
		}
		if ok {
			stored++
		} else {
			skipped++
		}
	}

	g.log.WithFields(logrus.Fields{
		"events":  len(seen),
		"stored":  stored,
		"skipped": skipped,
		"failed":  failed,
	}).Info("Result sync finished")
	return nil
}

// syncEvent fetches and stores one event's result. Returns false when
// the provider has nothing usable yet.
func (g *ResultIngestor) syncEvent(ctx context.Context, eventID string) (bool, error) {
	payload, err := g.client.Result(ctx, eventID)
	if err != nil {
		return false, err
	}
	if payload == nil || len(payload.PeriodStats) == 0 {
		return false, nil
	}

	// Provider results carry team-level period stats only. Player rows
	// come from the historical corpus import, not from this feed.
	match, maps, stats := buildMatch(payload)
	if err := g.matches.SaveMatch(ctx, match, maps, stats, nil); err != nil {
		return false, fmt.Errorf("failed to save match: %w", err)
	}
	return true, nil
}

// buildMatch converts a graded payload into storage rows. Unreadable
// stat values are dropped per stat, not per match.
func buildMatch(payload *bet365.ResultPayload) (*models.Match, []*models.GameMap, map[int][]models.MapStatistic) {
	matchDate := payload.EndTime()
	if matchDate.IsZero() {
		matchDate = time.Now().UTC()
	}

	match := &models.Match{
		ExternalID: payload.ID,
		League:     payload.League.Name,
		HomeTeam:   payload.Home.Name,
		AwayTeam:   payload.Away.Name,
		MatchDate:  matchDate,
		BestOf:     len(payload.PeriodStats),
	}

	mapNumbers := make([]int, 0, len(payload.PeriodStats))
	for key := range payload.PeriodStats {
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 {
			continue
		}
		mapNumbers = append(mapNumbers, n)
	}
	sort.Ints(mapNumbers)

	var maps []*models.GameMap
	stats := make(map[int][]models.MapStatistic)
	for _, n := range mapNumbers {
		gm := &models.GameMap{MapNumber: n}

		for key, values := range payload.PeriodStats[strconv.Itoa(n)] {
			stat := canonicalStat(key)
			if stat == "" || len(values) == 0 {
				continue
			}

			home, err := ParseStatValue(values[0])
			if err != nil {
				continue
			}
			away := 0.0
			if len(values) > 1 {
				if v, err := ParseStatValue(values[1]); err == nil {
					away = v
				}
			}

			if stat == models.StatGameDuration {
				gm.Duration = int(home * 60)
			}
			stats[n] = append(stats[n], models.MapStatistic{
				StatName:  stat,
				HomeValue: home,
				AwayValue: away,
			})
		}
		maps = append(maps, gm)
	}

	return match, maps, stats
}

package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/evaristomat/lol-v2/internal/bet365"
	"github.com/evaristomat/lol-v2/internal/models"
	"github.com/evaristomat/lol-v2/internal/repository"
)

// OddsIngestor syncs upcoming fixtures and their quotes into the
// events and current_odds tables.
type OddsIngestor struct {
	client    *bet365.Client
	events    repository.EventStore
	leagueIDs []string
	log       logrus.FieldLogger
}

// NewOddsIngestor creates the odds ingestor. An empty league list
// syncs the whole sport feed.
func NewOddsIngestor(client *bet365.Client, events repository.EventStore, leagueIDs []string, log logrus.FieldLogger) *OddsIngestor {
	return &OddsIngestor{client: client, events: events, leagueIDs: leagueIDs, log: log}
}

// Sync pulls the upcoming feed and the prematch quotes for every
// fixture. Per-event failures are logged and skipped.
func (g *OddsIngestor) Sync(ctx context.Context) error {
	leagues := g.leagueIDs
	if len(leagues) == 0 {
		leagues = []string{""}
	}

	synced, failed := 0, 0
	for _, leagueID := range leagues {
		upcoming, err := g.client.Upcoming(ctx, leagueID)
		if err != nil {
			return fmt.Errorf("failed to fetch upcoming events: %w", err)
		}

		for i := range upcoming {
			if err := g.syncEvent(ctx, &upcoming[i]); err != nil {
				failed++
				g.log.WithField("event_id", upcoming[i].ID).
					Warnf("Event sync failed: %v", err)
				continue
			}
			synced++
		}
	}

	g.log.WithFields(logrus.Fields{
		"synced": synced,
		"failed": failed,
	}).Info("Odds sync finished")
	return nil
}

func (g *OddsIngestor) syncEvent(ctx context.Context, upcoming *bet365.UpcomingEvent) error {
	start := upcoming.StartTime()
	if start.IsZero() {
		start = time.Now().UTC()
	}

	event, err := g.events.Upsert(ctx, &models.Event{
		ExternalID: upcoming.ID,
		League:     upcoming.League.Name,
		HomeTeam:   upcoming.Home.Name,
		AwayTeam:   upcoming.Away.Name,
		StartTime:  start,
	})
	if err != nil {
		return fmt.Errorf("failed to store event: %w", err)
	}

	odds, err := g.client.Prematch(ctx, upcoming.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch prematch odds: %w", err)
	}

	for _, quote := range odds {
		err := g.events.UpsertMarketLine(ctx, &models.MarketLine{
			EventID:   event.ID,
			Market:    quote.Market,
			Selection: quote.Selection,
			Line:      quote.Line,
			Odds:      quote.Odds,
		})
		if err != nil {
			return fmt.Errorf("failed to store market line: %w", err)
		}
	}
	return nil
}

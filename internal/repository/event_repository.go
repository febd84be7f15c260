package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/evaristomat/lol-v2/internal/database"
	"github.com/evaristomat/lol-v2/internal/models"
)

// EventRepository persists upcoming events and their quoted market lines
type EventRepository struct {
	db *database.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

const eventColumns = `id, external_id, league, home_team, away_team, start_time, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.ExternalID, &e.League, &e.HomeTeam, &e.AwayTeam,
		&e.StartTime, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Upsert stores an event, updating by external id. When the provider
// re-lists the same fixture under a new id, an existing event with the
// same teams within 24 hours is updated instead of duplicated.
func (r *EventRepository) Upsert(ctx context.Context, event *models.Event) (*models.Event, error) {
	if existing, err := r.findSimilar(ctx, event); err == nil && existing.ExternalID != event.ExternalID {
		query := `
			UPDATE events
			SET external_id = $1, league = $2, start_time = $3, updated_at = now()
			WHERE id = $4
			RETURNING ` + eventColumns
		updated, err := scanEvent(r.db.Pool.QueryRow(ctx, query,
			event.ExternalID, event.League, event.StartTime, existing.ID))
		if err != nil {
			return nil, fmt.Errorf("failed to update relisted event: %w", err)
		}
		return updated, nil
	} else if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	query := `
		INSERT INTO events (external_id, league, home_team, away_team, start_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_id) DO UPDATE
		SET league = EXCLUDED.league, start_time = EXCLUDED.start_time, updated_at = now()
		RETURNING ` + eventColumns

	stored, err := scanEvent(r.db.Pool.QueryRow(ctx, query,
		event.ExternalID, event.League, event.HomeTeam, event.AwayTeam, event.StartTime))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert event: %w", err)
	}
	return stored, nil
}

// findSimilar looks for an event with the same teams starting within
// 24 hours of the given one.
func (r *EventRepository) findSimilar(ctx context.Context, event *models.Event) (*models.Event, error) {
	query := `
		SELECT ` + eventColumns + `
		FROM events
		WHERE home_team = $1 AND away_team = $2
		  AND start_time BETWEEN $3 AND $4
		ORDER BY id ASC
		LIMIT 1`

	found, err := scanEvent(r.db.Pool.QueryRow(ctx, query,
		event.HomeTeam, event.AwayTeam,
		event.StartTime.Add(-24*time.Hour), event.StartTime.Add(24*time.Hour)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find similar event: %w", err)
	}
	return found, nil
}

// GetByExternalID returns the event with the given provider id
func (r *EventRepository) GetByExternalID(ctx context.Context, externalID string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE external_id = $1`

	event, err := scanEvent(r.db.Pool.QueryRow(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

// ListUpcoming returns events starting after now, soonest first
func (r *EventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE start_time > $1 ORDER BY start_time ASC`

	rows, err := r.db.Pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// UpsertMarketLine stores the current quote for one selection
func (r *EventRepository) UpsertMarketLine(ctx context.Context, line *models.MarketLine) error {
	query := `
		INSERT INTO current_odds (event_id, market, selection, line, odds)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, market, selection, line) DO UPDATE
		SET odds = EXCLUDED.odds, updated_at = now()`

	_, err := r.db.Pool.Exec(ctx, query,
		line.EventID, line.Market, line.Selection, line.Line, line.Odds)
	if err != nil {
		return fmt.Errorf("failed to upsert market line: %w", err)
	}
	return nil
}

// MarketLines returns all current quotes for an event
func (r *EventRepository) MarketLines(ctx context.Context, eventID int64) ([]*models.MarketLine, error) {
	query := `
		SELECT id, event_id, market, selection, line, odds, updated_at
		FROM current_odds
		WHERE event_id = $1
		ORDER BY market, selection, line`

	rows, err := r.db.Pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list market lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.MarketLine
	for rows.Next() {
		var l models.MarketLine
		if err := rows.Scan(&l.ID, &l.EventID, &l.Market, &l.Selection, &l.Line, &l.Odds, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan market line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

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

// MatchRepository persists finished matches, their maps and per-map
// statistics, and serves the historical lookups used by the stats store
// and the reconciler.
type MatchRepository struct {
	db *database.DB
}

// NewMatchRepository creates a new match repository
func NewMatchRepository(db *database.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

const matchColumns = `id, external_id, league, home_team, away_team, match_date, best_of, created_at`

func scanMatch(row pgx.Row) (*models.Match, error) {
	var m models.Match
	err := row.Scan(&m.ID, &m.ExternalID, &m.League, &m.HomeTeam, &m.AwayTeam,
		&m.MatchDate, &m.BestOf, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByExternalID returns the match recorded under the provider's id
func (r *MatchRepository) FindByExternalID(ctx context.Context, externalID string) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE external_id = $1 ORDER BY id ASC LIMIT 1`

	match, err := scanMatch(r.db.Pool.QueryRow(ctx, query, externalID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find match by external id: %w", err)
	}
	return match, nil
}

// FindFuzzy looks up a match by team names and approximate date. Both
// home/away orders are tried, names match exactly or as substrings, and
// the match date may differ from the target by up to tolerance days.
// Multiple candidates resolve to the lowest match id.
func (r *MatchRepository) FindFuzzy(ctx context.Context, homeTeam, awayTeam string, date time.Time, toleranceDays int) (*models.Match, error) {
	from := date.AddDate(0, 0, -toleranceDays)
	to := date.AddDate(0, 0, toleranceDays+1)

	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE match_date >= $3 AND match_date < $4
		  AND (
			(home_team ILIKE $1 AND away_team ILIKE $2) OR
			(home_team ILIKE $2 AND away_team ILIKE $1) OR
			(home_team ILIKE '%' || $1 || '%' AND away_team ILIKE '%' || $2 || '%') OR
			(home_team ILIKE '%' || $2 || '%' AND away_team ILIKE '%' || $1 || '%')
		  )
		ORDER BY id ASC
		LIMIT 1`

	match, err := scanMatch(r.db.Pool.QueryRow(ctx, query, homeTeam, awayTeam, from, to))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed fuzzy match lookup: %w", err)
	}
	return match, nil
}

// MapStatValue returns the recorded value for one stat on one map of a
// match. Totals are home+away, game duration is the raw value.
func (r *MatchRepository) MapStatValue(ctx context.Context, matchID int64, mapNumber int, statName string) (float64, error) {
	query := `
		SELECT ms.stat_name, ms.home_value, ms.away_value
		FROM map_statistics ms
		JOIN game_maps gm ON gm.id = ms.game_map_id
		WHERE gm.match_id = $1 AND gm.map_number = $2 AND ms.stat_name = $3`

	var stat models.MapStatistic
	err := r.db.Pool.QueryRow(ctx, query, matchID, mapNumber, statName).
		Scan(&stat.StatName, &stat.HomeValue, &stat.AwayValue)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, models.ErrNotFound
		}
		return 0, fmt.Errorf("failed to get map stat: %w", err)
	}
	return stat.Total(), nil
}

// TeamSamples returns the map-level totals of one stat for a team's
// most recent matches inside the horizon, newest match first and maps
// in ascending order inside each match.
func (r *MatchRepository) TeamSamples(ctx context.Context, teamName, statName string, since time.Time, maxMatches int) ([]models.HistoricalSample, error) {
	query := `
		SELECT ms.stat_name, ms.home_value, ms.away_value, gm.map_number, m.match_date
		FROM matches m
		JOIN game_maps gm ON gm.match_id = m.id
		JOIN map_statistics ms ON ms.game_map_id = gm.id
		WHERE ms.stat_name = $2
		  AND m.id IN (
			SELECT id FROM matches
			WHERE (home_team = $1 OR away_team = $1) AND match_date >= $3
			ORDER BY match_date DESC, id DESC
			LIMIT $4
		  )
		ORDER BY m.match_date DESC, m.id DESC, gm.map_number ASC`

	rows, err := r.db.Pool.Query(ctx, query, teamName, statName, since, maxMatches)
	if err != nil {
		return nil, fmt.Errorf("failed to query team samples: %w", err)
	}
	defer rows.Close()

	var samples []models.HistoricalSample
	for rows.Next() {
		var stat models.MapStatistic
		var s models.HistoricalSample
		if err := rows.Scan(&stat.StatName, &stat.HomeValue, &stat.AwayValue, &s.MapNumber, &s.MatchDate); err != nil {
			return nil, fmt.Errorf("failed to scan team sample: %w", err)
		}
		s.Value = stat.Total()
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// PlayerSamples returns the recent per-map values of one stat for a
// player, newest first.
func (r *MatchRepository) PlayerSamples(ctx context.Context, playerName, statName string, since time.Time, limit int) ([]models.HistoricalSample, error) {
	query := `
		SELECT ps.value, gm.map_number, m.match_date
		FROM player_stats ps
		JOIN game_maps gm ON gm.id = ps.game_map_id
		JOIN matches m ON m.id = gm.match_id
		WHERE ps.player_name = $1 AND ps.stat_name = $2 AND m.match_date >= $3
		ORDER BY m.match_date DESC, m.id DESC, gm.map_number ASC
		LIMIT $4`

	rows, err := r.db.Pool.Query(ctx, query, playerName, statName, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query player samples: %w", err)
	}
	defer rows.Close()

	var samples []models.HistoricalSample
	for rows.Next() {
		var s models.HistoricalSample
		if err := rows.Scan(&s.Value, &s.MapNumber, &s.MatchDate); err != nil {
			return nil, fmt.Errorf("failed to scan player sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// PlayerNames returns all player names seen in the stats database.
// The selection parser matches these against market labels.
func (r *MatchRepository) PlayerNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT DISTINCT player_name FROM player_stats ORDER BY player_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list player names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan player name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// SaveMatch persists a finished match with its maps and statistics in
// one transaction. A re-sync of the same provider id updates the match
// row in place; maps and stat rows likewise upsert on conflict.
func (r *MatchRepository) SaveMatch(ctx context.Context, match *models.Match, maps []*models.GameMap, stats map[int][]models.MapStatistic, players map[int][]PlayerStat) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO matches (external_id, league, home_team, away_team, match_date, best_of)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (external_id) WHERE external_id <> '' DO UPDATE
			SET league = EXCLUDED.league, home_team = EXCLUDED.home_team,
				away_team = EXCLUDED.away_team, match_date = EXCLUDED.match_date,
				best_of = EXCLUDED.best_of
			RETURNING id`,
			match.ExternalID, match.League, match.HomeTeam, match.AwayTeam,
			match.MatchDate, match.BestOf,
		).Scan(&match.ID)
		if err != nil {
			return fmt.Errorf("failed to insert match: %w", err)
		}

		for _, gm := range maps {
			gm.MatchID = match.ID
			err := tx.QueryRow(ctx, `
				INSERT INTO game_maps (match_id, map_number, duration)
				VALUES ($1, $2, $3)
				ON CONFLICT (match_id, map_number) DO UPDATE SET duration = EXCLUDED.duration
				RETURNING id`,
				gm.MatchID, gm.MapNumber, gm.Duration,
			).Scan(&gm.ID)
			if err != nil {
				return fmt.Errorf("failed to insert map %d: %w", gm.MapNumber, err)
			}

			for _, st := range stats[gm.MapNumber] {
				_, err := tx.Exec(ctx, `
					INSERT INTO map_statistics (game_map_id, stat_name, home_value, away_value)
					VALUES ($1, $2, $3, $4)
					ON CONFLICT (game_map_id, stat_name) DO UPDATE
					SET home_value = EXCLUDED.home_value, away_value = EXCLUDED.away_value`,
					gm.ID, st.StatName, st.HomeValue, st.AwayValue)
				if err != nil {
					return fmt.Errorf("failed to insert stat %s: %w", st.StatName, err)
				}
			}

			for _, ps := range players[gm.MapNumber] {
				_, err := tx.Exec(ctx, `
					INSERT INTO player_stats (game_map_id, player_name, stat_name, value)
					VALUES ($1, $2, $3, $4)
					ON CONFLICT (game_map_id, player_name, stat_name) DO UPDATE
					SET value = EXCLUDED.value`,
					gm.ID, ps.PlayerName, ps.StatName, ps.Value)
				if err != nil {
					return fmt.Errorf("failed to insert player stat: %w", err)
				}
			}
		}
		return nil
	})
}

// PlayerStat is one per-player value attached to a map during ingestion.
type PlayerStat struct {
	PlayerName string
	StatName   string
	Value      float64
}

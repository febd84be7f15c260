package database

import (
	"context"
	"fmt"
)

// Schema statements are idempotent so the binaries can be pointed at a
// fresh database without a separate migration step.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS team_aliases (
		alias TEXT PRIMARY KEY,
		canonical TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id BIGSERIAL PRIMARY KEY,
		external_id TEXT NOT NULL UNIQUE,
		league TEXT NOT NULL DEFAULT '',
		home_team TEXT NOT NULL,
		away_team TEXT NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS current_odds (
		id BIGSERIAL PRIMARY KEY,
		event_id BIGINT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
		market TEXT NOT NULL,
		selection TEXT NOT NULL,
		line DOUBLE PRECISION NOT NULL DEFAULT 0,
		odds DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (event_id, market, selection, line)
	)`,
	`CREATE TABLE IF NOT EXISTS bets (
		id UUID PRIMARY KEY,
		event_id TEXT NOT NULL,
		league TEXT NOT NULL DEFAULT '',
		home_team TEXT NOT NULL,
		away_team TEXT NOT NULL,
		event_date TIMESTAMPTZ NOT NULL,
		market TEXT NOT NULL,
		selection TEXT NOT NULL,
		line DOUBLE PRECISION NOT NULL DEFAULT 0,
		odds DOUBLE PRECISION NOT NULL,
		stake DOUBLE PRECISION NOT NULL,
		strategy TEXT NOT NULL DEFAULT '',
		expected_roi DOUBLE PRECISION NOT NULL DEFAULT 0,
		fair_odds DOUBLE PRECISION NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		actual_value DOUBLE PRECISION,
		profit DOUBLE PRECISION NOT NULL DEFAULT 0,
		settled_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (event_id, market, selection, line)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bets_status ON bets (status)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id BIGSERIAL PRIMARY KEY,
		external_id TEXT NOT NULL DEFAULT '',
		league TEXT NOT NULL DEFAULT '',
		home_team TEXT NOT NULL,
		away_team TEXT NOT NULL,
		match_date TIMESTAMPTZ NOT NULL,
		best_of INT NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_external_id
		ON matches (external_id) WHERE external_id <> ''`,
	`CREATE INDEX IF NOT EXISTS idx_matches_teams_date ON matches (home_team, away_team, match_date)`,
	`CREATE TABLE IF NOT EXISTS game_maps (
		id BIGSERIAL PRIMARY KEY,
		match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		map_number INT NOT NULL,
		duration INT NOT NULL DEFAULT 0,
		UNIQUE (match_id, map_number)
	)`,
	`CREATE TABLE IF NOT EXISTS map_statistics (
		id BIGSERIAL PRIMARY KEY,
		game_map_id BIGINT NOT NULL REFERENCES game_maps(id) ON DELETE CASCADE,
		stat_name TEXT NOT NULL,
		home_value DOUBLE PRECISION NOT NULL DEFAULT 0,
		away_value DOUBLE PRECISION NOT NULL DEFAULT 0,
		UNIQUE (game_map_id, stat_name)
	)`,
	`CREATE TABLE IF NOT EXISTS player_stats (
		id BIGSERIAL PRIMARY KEY,
		game_map_id BIGINT NOT NULL REFERENCES game_maps(id) ON DELETE CASCADE,
		player_name TEXT NOT NULL,
		stat_name TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL DEFAULT 0,
		UNIQUE (game_map_id, player_name, stat_name)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_player_stats_name ON player_stats (player_name, stat_name)`,
}

// InitSchema creates all tables and indexes if they do not exist.
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}

package models

import "time"

// Canonical stat names tracked per map. Market names are reduced to one
// of these before any historical lookup.
const (
	StatKills        = "kills"
	StatDragons      = "dragons"
	StatBarons       = "barons"
	StatTowers       = "towers"
	StatInhibitors   = "inhibitors"
	StatGameDuration = "game_duration"
)

// Match represents a finished fixture ingested from the results provider
type Match struct {
	ID         int64     `db:"id" json:"id"`
	ExternalID string    `db:"external_id" json:"external_id"`
	League     string    `db:"league" json:"league"`
	HomeTeam   string    `db:"home_team" json:"home_team"`
	AwayTeam   string    `db:"away_team" json:"away_team"`
	MatchDate  time.Time `db:"match_date" json:"match_date"`
	BestOf     int       `db:"best_of" json:"best_of"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// GameMap is one map (game) inside a match, numbered from 1
type GameMap struct {
	ID        int64 `db:"id" json:"id"`
	MatchID   int64 `db:"match_id" json:"match_id"`
	MapNumber int   `db:"map_number" json:"map_number"`
	Duration  int   `db:"duration" json:"duration"` // seconds, 0 when unknown
}

// MapStatistic is one stat row for one map, split by side
type MapStatistic struct {
	ID        int64   `db:"id" json:"id"`
	GameMapID int64   `db:"game_map_id" json:"game_map_id"`
	StatName  string  `db:"stat_name" json:"stat_name"`
	HomeValue float64 `db:"home_value" json:"home_value"`
	AwayValue float64 `db:"away_value" json:"away_value"`
}

// Total returns the combined value for a map-total market.
// Game duration is quoted on the raw clock, not a per-side sum.
func (s MapStatistic) Total() float64 {
	if s.StatName == StatGameDuration {
		return s.HomeValue
	}
	return s.HomeValue + s.AwayValue
}

// HistoricalSample is one observed stat value used by the probability
// model, newest first in every window.
type HistoricalSample struct {
	Value     float64   `json:"value"`
	MatchDate time.Time `json:"match_date"`
	MapNumber int       `json:"map_number"`
}

package models

import "time"

// Team represents a competing team. Aliases are stored separately and
// resolved through the team repository.
type Team struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name" validate:"required"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Event represents an upcoming fixture offered by the odds provider
type Event struct {
	ID         int64     `db:"id" json:"id"`
	ExternalID string    `db:"external_id" json:"external_id" validate:"required"`
	League     string    `db:"league" json:"league"`
	HomeTeam   string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam   string    `db:"away_team" json:"away_team" validate:"required"`
	StartTime  time.Time `db:"start_time" json:"start_time"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// MarketLine is one quoted price for a market selection on an event
type MarketLine struct {
	ID        int64     `db:"id" json:"id"`
	EventID   int64     `db:"event_id" json:"event_id"`
	Market    string    `db:"market" json:"market" validate:"required"`
	Selection string    `db:"selection" json:"selection" validate:"required"`
	Line      float64   `db:"line" json:"line"`
	Odds      float64   `db:"odds" json:"odds" validate:"gt=1"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

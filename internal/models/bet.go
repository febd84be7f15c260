// Package models defines the domain entities shared by repositories,
// strategies and services.
package models

import (
	"time"

	"github.com/google/uuid"
)

// BetStatus represents the lifecycle state of a recorded bet
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
	BetStatusVoid    BetStatus = "void"

	// BetStatusUnknown closes out bets that can never be graded, such as
	// a selection the settlement parser cannot read. Profit is zero.
	BetStatusUnknown BetStatus = "unknown"
)

// IsTerminal reports whether the status is a settled state.
// Settled bets are never updated again.
func (s BetStatus) IsTerminal() bool {
	switch s {
	case BetStatusWon, BetStatusLost, BetStatusVoid, BetStatusUnknown:
		return true
	}
	return false
}

// CanTransition reports whether a bet in status s may move to target.
// The only legal moves are pending -> won|lost|void|unknown.
func (s BetStatus) CanTransition(target BetStatus) bool {
	return s == BetStatusPending && target.IsTerminal()
}

// Bet represents a recorded bet in the ledger
type Bet struct {
	ID          uuid.UUID `db:"id" json:"id"`
	EventID     string    `db:"event_id" json:"event_id" validate:"required"`
	League      string    `db:"league" json:"league"`
	HomeTeam    string    `db:"home_team" json:"home_team" validate:"required"`
	AwayTeam    string    `db:"away_team" json:"away_team" validate:"required"`
	EventDate   time.Time `db:"event_date" json:"event_date"`
	Market      string    `db:"market" json:"market" validate:"required"`
	Selection   string    `db:"selection" json:"selection" validate:"required"`
	Line        float64   `db:"line" json:"line"`
	Odds        float64   `db:"odds" json:"odds" validate:"required,gt=1"`
	Stake       float64   `db:"stake" json:"stake" validate:"required,gt=0"`
	Strategy    string    `db:"strategy" json:"strategy"`
	ExpectedROI float64   `db:"expected_roi" json:"expected_roi"`
	FairOdds    float64   `db:"fair_odds" json:"fair_odds"`
	Status      BetStatus `db:"status" json:"status"`

	// Settlement fields, populated once the bet leaves pending.
	ActualValue *float64   `db:"actual_value" json:"actual_value,omitempty"`
	Profit      float64    `db:"profit" json:"profit"`
	SettledAt   *time.Time `db:"settled_at" json:"settled_at,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SettlementUpdate carries the outcome applied to one pending bet during
// a reconciliation run.
type SettlementUpdate struct {
	BetID       uuid.UUID
	Status      BetStatus
	ActualValue float64
	Profit      float64
}

// ProfitFor computes the profit of a settled bet for the given status.
// Won pays (odds-1)*stake, lost forfeits the stake, void and unknown
// return it.
func ProfitFor(status BetStatus, odds, stake float64) float64 {
	switch status {
	case BetStatusWon:
		return (odds - 1) * stake
	case BetStatusLost:
		return -stake
	default:
		return 0
	}
}

// LedgerStats aggregates settled and pending bets for reporting.
type LedgerStats struct {
	Total      int     `db:"total" json:"total"`
	Pending    int     `db:"pending" json:"pending"`
	Won        int     `db:"won" json:"won"`
	Lost       int     `db:"lost" json:"lost"`
	Void       int     `db:"void" json:"void"`
	Unknown    int     `db:"unknown" json:"unknown"`
	TotalStake float64 `db:"total_stake" json:"total_stake"`
	NetProfit  float64 `db:"net_profit" json:"net_profit"`
	WinRate    float64 `json:"win_rate"`
	ROI        float64 `json:"roi"`
}

// StrategyStats aggregates settled bets for a single strategy tag.
type StrategyStats struct {
	Strategy  string  `db:"strategy" json:"strategy"`
	Total     int     `db:"total" json:"total"`
	Won       int     `db:"won" json:"won"`
	Lost      int     `db:"lost" json:"lost"`
	Void      int     `db:"void" json:"void"`
	Unknown   int     `db:"unknown" json:"unknown"`
	NetProfit float64 `db:"net_profit" json:"net_profit"`
	ROI       float64 `json:"roi"`
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBetStatusTransitions(t *testing.T) {
	// Pending can settle any way, including unknown for bets that can
	// never be graded.
	assert.True(t, BetStatusPending.CanTransition(BetStatusWon))
	assert.True(t, BetStatusPending.CanTransition(BetStatusLost))
	assert.True(t, BetStatusPending.CanTransition(BetStatusVoid))
	assert.True(t, BetStatusPending.CanTransition(BetStatusUnknown))

	// Settled statuses are terminal.
	for _, from := range []BetStatus{BetStatusWon, BetStatusLost, BetStatusVoid, BetStatusUnknown} {
		for _, to := range []BetStatus{BetStatusPending, BetStatusWon, BetStatusLost, BetStatusVoid, BetStatusUnknown} {
			assert.False(t, from.CanTransition(to), "%s -> %s", from, to)
		}
	}

	// Pending never "settles" back to pending.
	assert.False(t, BetStatusPending.CanTransition(BetStatusPending))
}

func TestProfitFor(t *testing.T) {
	assert.InDelta(t, 11.0, ProfitFor(BetStatusWon, 2.10, 10), 1e-9)
	assert.InDelta(t, -10.0, ProfitFor(BetStatusLost, 2.10, 10), 1e-9)
	assert.Equal(t, 0.0, ProfitFor(BetStatusVoid, 2.10, 10))
	assert.Equal(t, 0.0, ProfitFor(BetStatusUnknown, 2.10, 10))
	assert.Equal(t, 0.0, ProfitFor(BetStatusPending, 2.10, 10))
}

func TestMapStatisticTotal(t *testing.T) {
	kills := MapStatistic{StatName: StatKills, HomeValue: 14, AwayValue: 9}
	assert.Equal(t, 23.0, kills.Total())

	// Duration is quoted on the raw clock, never summed.
	duration := MapStatistic{StatName: StatGameDuration, HomeValue: 32.5, AwayValue: 32.5}
	assert.Equal(t, 32.5, duration.Total())
}

package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/evaristomat/lol-v2/internal/config"
	"github.com/evaristomat/lol-v2/internal/models"
	"github.com/evaristomat/lol-v2/internal/stats"
	"github.com/evaristomat/lol-v2/internal/strategy"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var settleNow = time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

func newSettlement(bets *mockBetStore, matches *mockMatchStore, aliases map[string]string) *SettlementService {
	s := NewSettlementService(bets, matches, stats.NewResolver(aliases), config.SettlementConfig{
		Workers:          1,
		DayTolerance:     1,
		OldThresholdDays: 7,
	}, quietLogger())
	s.now = func() time.Time { return settleNow }
	return s
}

func pendingBet(eventID, market, selection string, line, odds float64, eventDate time.Time) *models.Bet {
	return &models.Bet{
		ID:        uuid.New(),
		EventID:   eventID,
		HomeTeam:  "T1",
		AwayTeam:  "Gen.G",
		EventDate: eventDate,
		Market:    market,
		Selection: selection,
		Line:      line,
		Odds:      odds,
		Stake:     10,
		Status:    models.BetStatusPending,
		CreatedAt: eventDate.Add(-24 * time.Hour),
	}
}

func expectLedgerReport(bets *mockBetStore) {
	bets.On("Stats", mock.Anything).Return(&models.LedgerStats{}, nil)
	bets.On("StatsByStrategy", mock.Anything).Return([]*models.StrategyStats{}, nil)
}

func TestSettlementWinLossAndPush(t *testing.T) {
	bets := new(mockBetStore)
	matches := new(mockMatchStore)

	played := settleNow.Add(-20 * time.Hour)
	won := pendingBet("ev1", "Map 1 - Total Kills", "Over", 25.5, 2.10, played)
	lost := pendingBet("ev1", "Map 1 - Total Dragons", "Over", 4.5, 1.90, played)
	push := pendingBet("ev1", "Map 2 - Total Kills", "Under", 28.0, 1.85, played)

	bets.On("GetPending", mock.Anything).Return([]*models.Bet{won, lost, push}, nil)
	matches.On("FindByExternalID", mock.Anything, "ev1").
		Return(&models.Match{ID: 7}, nil)
	matches.On("MapStatValue", mock.Anything, int64(7), 1, models.StatKills).Return(31.0, nil)
	matches.On("MapStatValue", mock.Anything, int64(7), 1, models.StatDragons).Return(3.0, nil)
	matches.On("MapStatValue", mock.Anything, int64(7), 2, models.StatKills).Return(28.0, nil)

	bets.On("BatchUpdateResults", mock.Anything, mock.MatchedBy(func(updates []models.SettlementUpdate) bool {
		if len(updates) != 3 {
			return false
		}
		byID := make(map[uuid.UUID]models.SettlementUpdate)
		for _, u := range updates {
			byID[u.BetID] = u
		}
		w, l, p := byID[won.ID], byID[lost.ID], byID[push.ID]
		return w.Status == models.BetStatusWon && w.Profit == 11.0 && w.ActualValue == 31.0 &&
			l.Status == models.BetStatusLost && l.Profit == -10.0 &&
			p.Status == models.BetStatusVoid && p.Profit == 0.0 && p.ActualValue == 28.0
	})).Return(3, nil)
	expectLedgerReport(bets)

	summary, err := newSettlement(bets, matches, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Settled)
	assert.Equal(t, 1, summary.Won)
	assert.Equal(t, 1, summary.Lost)
	assert.Equal(t, 1, summary.Void)
	assert.Equal(t, 3, summary.Buckets[bucketRecent])
	bets.AssertExpectations(t)
	matches.AssertExpectations(t)
}

func TestSettlementLeavesFutureBetsAlone(t *testing.T) {
	bets := new(mockBetStore)
	matches := new(mockMatchStore)

	future := pendingBet("ev2", "Map 1 - Total Kills", "Over", 25.5, 2.0, settleNow.Add(48*time.Hour))
	bets.On("GetPending", mock.Anything).Return([]*models.Bet{future}, nil)
	bets.On("BatchUpdateResults", mock.Anything, mock.MatchedBy(func(u []models.SettlementUpdate) bool {
		return len(u) == 0
	})).Return(0, nil)
	expectLedgerReport(bets)

	summary, err := newSettlement(bets, matches, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Settled)
	assert.Equal(t, 1, summary.LeftPending)
	assert.Equal(t, 1, summary.Buckets[bucketFuture])
	matches.AssertNotCalled(t, "FindByExternalID", mock.Anything, mock.Anything)
}

func TestSettlementOldBetWithoutResultStaysPending(t *testing.T) {
	bets := new(mockBetStore)
	matches := new(mockMatchStore)

	stale := pendingBet("ev3", "Map 1 - Total Kills", "Over", 25.5, 2.0, settleNow.AddDate(0, 0, -12))
	bets.On("GetPending", mock.Anything).Return([]*models.Bet{stale}, nil)
	matches.On("FindByExternalID", mock.Anything, "ev3").Return(nil, models.ErrNotFound)
	matches.On("FindFuzzy", mock.Anything, "T1", "Gen.G", stale.EventDate, 1).
		Return(nil, models.ErrNotFound)
	bets.On("BatchUpdateResults", mock.Anything, mock.MatchedBy(func(u []models.SettlementUpdate) bool {
		return len(u) == 0
	})).Return(0, nil)
	expectLedgerReport(bets)

	summary, err := newSettlement(bets, matches, nil).Run(context.Background())
	require.NoError(t, err)

	// Missing data never settles a bet, no matter how old.
	assert.Equal(t, 1, summary.LeftPending)
	assert.Equal(t, 0, summary.Settled)
	assert.Equal(t, 1, summary.Buckets[bucketOld])
}

func TestSettlementMissingStatStaysPending(t *testing.T) {
	bets := new(mockBetStore)
	matches := new(mockMatchStore)

	bet := pendingBet("ev4", "Map 3 - Total Barons", "Over", 1.5, 2.0, settleNow.Add(-30*time.Hour))
	bets.On("GetPending", mock.Anything).Return([]*models.Bet{bet}, nil)
	matches.On("FindByExternalID", mock.Anything, "ev4").Return(&models.Match{ID: 9}, nil)
	matches.On("MapStatValue", mock.Anything, int64(9), 3, models.StatBarons).
		Return(0.0, models.ErrNotFound)
	bets.On("BatchUpdateResults", mock.Anything, mock.MatchedBy(func(u []models.SettlementUpdate) bool {
		return len(u) == 0
	})).Return(0, nil)
	expectLedgerReport(bets)

	summary, err := newSettlement(bets, matches, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.LeftPending)
	assert.Equal(t, 1, summary.Buckets[bucketRecentWeek])
}

func TestSettlementFuzzyFallbackResolvesAliases(t *testing.T) {
	bets := new(mockBetStore)
	matches := new(mockMatchStore)

	bet := pendingBet("ev5", "Map 1 - Total Kills", "Under", 24.5, 1.95, settleNow.Add(-10*time.Hour))
	bet.HomeTeam = "T1 Esports"
	bet.AwayTeam = "Gen.G Esports"

	bets.On("GetPending", mock.Anything).Return([]*models.Bet{bet}, nil)
	matches.On("FindByExternalID", mock.Anything, "ev5").Return(nil, models.ErrNotFound)
	matches.On("FindFuzzy", mock.Anything, "T1", "Gen.G", bet.EventDate, 1).
		Return(&models.Match{ID: 11}, nil)
	matches.On("MapStatValue", mock.Anything, int64(11), 1, models.StatKills).Return(22.0, nil)

	bets.On("BatchUpdateResults", mock.Anything, mock.MatchedBy(func(u []models.SettlementUpdate) bool {
		return len(u) == 1 && u[0].Status == models.BetStatusWon
	})).Return(1, nil)
	expectLedgerReport(bets)

	aliases := map[string]string{"T1 Esports": "T1", "Gen.G Esports": "Gen.G"}
	summary, err := newSettlement(bets, matches, aliases).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Won)
	matches.AssertExpectations(t)
}

func TestSettlementLeavesRecentNoInfoBetsAlone(t *testing.T) {
	bets := new(mockBetStore)
	matches := new(mockMatchStore)

	// No event date and only two days old: the creation date is not
	// trusted for a match lookup yet.
	bet := pendingBet("ev6", "Map 1 - Total Kills", "Over", 25.5, 2.0, time.Time{})
	bet.CreatedAt = settleNow.AddDate(0, 0, -2)

	bets.On("GetPending", mock.Anything).Return([]*models.Bet{bet}, nil)
	bets.On("BatchUpdateResults", mock.Anything, mock.MatchedBy(func(u []models.SettlementUpdate) bool {
		return len(u) == 0
	})).Return(0, nil)
	expectLedgerReport(bets)

	summary, err := newSettlement(bets, matches, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Settled)
	assert.Equal(t, 1, summary.LeftPending)
	assert.Equal(t, 1, summary.Buckets[bucketRecentNoInfo])
	matches.AssertNotCalled(t, "FindByExternalID", mock.Anything, mock.Anything)
	matches.AssertNotCalled(t, "FindFuzzy", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSettlementClosesUnreadableSelectionAsUnknown(t *testing.T) {
	bets := new(mockBetStore)
	matches := new(mockMatchStore)

	// The result is recorded but the selection has no Over/Under side,
	// so the bet can never be graded. It settles as unknown instead of
	// erroring on every run.
	bet := pendingBet("ev7", "Map 1 - Total Kills", "Race to 10 Kills", 25.5, 2.0, settleNow.Add(-20*time.Hour))
	bets.On("GetPending", mock.Anything).Return([]*models.Bet{bet}, nil)
	matches.On("FindByExternalID", mock.Anything, "ev7").Return(&models.Match{ID: 13}, nil)
	matches.On("MapStatValue", mock.Anything, int64(13), 1, models.StatKills).Return(27.0, nil)

	bets.On("BatchUpdateResults", mock.Anything, mock.MatchedBy(func(u []models.SettlementUpdate) bool {
		return len(u) == 1 && u[0].BetID == bet.ID &&
			u[0].Status == models.BetStatusUnknown &&
			u[0].Profit == 0.0 && u[0].ActualValue == 27.0
	})).Return(1, nil)
	expectLedgerReport(bets)

	summary, err := newSettlement(bets, matches, nil).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Settled)
	assert.Equal(t, 1, summary.Unknown)
	assert.Equal(t, 0, summary.Errors)
	bets.AssertExpectations(t)
	matches.AssertExpectations(t)
}

func TestClassifyBuckets(t *testing.T) {
	s := newSettlement(new(mockBetStore), new(mockMatchStore), nil)

	tests := []struct {
		name      string
		eventDate time.Time
		createdAt time.Time
		want      string
	}{
		{"future", settleNow.Add(2 * time.Hour), settleNow, bucketFuture},
		{"recent", settleNow.Add(-12 * time.Hour), settleNow, bucketRecent},
		{"recent_week", settleNow.AddDate(0, 0, -3), settleNow, bucketRecentWeek},
		{"old", settleNow.AddDate(0, 0, -10), settleNow, bucketOld},
		{"recent_no_info", time.Time{}, settleNow.AddDate(0, 0, -2), bucketRecentNoInfo},
		{"old_no_info", time.Time{}, settleNow.AddDate(0, 0, -9), bucketOldNoInfo},
	}

	for _, tt := range tests {
		bet := &models.Bet{EventDate: tt.eventDate, CreatedAt: tt.createdAt}
		assert.Equal(t, tt.want, s.classify(bet, settleNow), tt.name)
	}
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, models.BetStatusWon, outcomeForTest(t, "Over", 25.5, 30))
	assert.Equal(t, models.BetStatusLost, outcomeForTest(t, "Over", 25.5, 20))
	assert.Equal(t, models.BetStatusWon, outcomeForTest(t, "Under", 25.5, 20))
	assert.Equal(t, models.BetStatusLost, outcomeForTest(t, "Under", 25.5, 30))
	assert.Equal(t, models.BetStatusVoid, outcomeForTest(t, "Over", 28, 28))
	assert.Equal(t, models.BetStatusVoid, outcomeForTest(t, "Under", 28, 28))
}

func outcomeForTest(t *testing.T, selection string, line, value float64) models.BetStatus {
	t.Helper()
	side, err := strategy.ParseSide(selection)
	require.NoError(t, err)
	return outcome(side, line, value)
}

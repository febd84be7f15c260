package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/evaristomat/lol-v2/internal/models"
	"github.com/evaristomat/lol-v2/internal/probability"
	"github.com/evaristomat/lol-v2/internal/repository"
	"github.com/evaristomat/lol-v2/internal/strategy"
)

type mockBetStore struct {
	mock.Mock
}

func (m *mockBetStore) Exists(ctx context.Context, eventID, market, selection string, line float64) (bool, error) {
	args := m.Called(ctx, eventID, market, selection, line)
	return args.Bool(0), args.Error(1)
}

func (m *mockBetStore) Insert(ctx context.Context, bet *models.Bet) error {
	return m.Called(ctx, bet).Error(0)
}

func (m *mockBetStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Bet), args.Error(1)
}

func (m *mockBetStore) GetPending(ctx context.Context) ([]*models.Bet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Bet), args.Error(1)
}

func (m *mockBetStore) BatchUpdateResults(ctx context.Context, updates []models.SettlementUpdate) (int, error) {
	args := m.Called(ctx, updates)
	return args.Int(0), args.Error(1)
}

func (m *mockBetStore) Stats(ctx context.Context) (*models.LedgerStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerStats), args.Error(1)
}

func (m *mockBetStore) StatsByStrategy(ctx context.Context) ([]*models.StrategyStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StrategyStats), args.Error(1)
}

type mockMatchStore struct {
	mock.Mock
}

func (m *mockMatchStore) FindByExternalID(ctx context.Context, externalID string) (*models.Match, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *mockMatchStore) FindFuzzy(ctx context.Context, homeTeam, awayTeam string, date time.Time, toleranceDays int) (*models.Match, error) {
	args := m.Called(ctx, homeTeam, awayTeam, date, toleranceDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Match), args.Error(1)
}

func (m *mockMatchStore) MapStatValue(ctx context.Context, matchID int64, mapNumber int, statName string) (float64, error) {
	args := m.Called(ctx, matchID, mapNumber, statName)
	return args.Get(0).(float64), args.Error(1)
}

func (m *mockMatchStore) TeamSamples(ctx context.Context, teamName, statName string, since time.Time, maxMatches int) ([]models.HistoricalSample, error) {
	args := m.Called(ctx, teamName, statName, since, maxMatches)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoricalSample), args.Error(1)
}

func (m *mockMatchStore) PlayerSamples(ctx context.Context, playerName, statName string, since time.Time, limit int) ([]models.HistoricalSample, error) {
	args := m.Called(ctx, playerName, statName, since, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoricalSample), args.Error(1)
}

func (m *mockMatchStore) PlayerNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockMatchStore) SaveMatch(ctx context.Context, match *models.Match, maps []*models.GameMap, stats map[int][]models.MapStatistic, players map[int][]repository.PlayerStat) error {
	return m.Called(ctx, match, maps, stats, players).Error(0)
}

type mockEventStore struct {
	mock.Mock
}

func (m *mockEventStore) Upsert(ctx context.Context, event *models.Event) (*models.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *mockEventStore) GetByExternalID(ctx context.Context, externalID string) (*models.Event, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *mockEventStore) ListUpcoming(ctx context.Context, now time.Time) ([]*models.Event, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *mockEventStore) UpsertMarketLine(ctx context.Context, line *models.MarketLine) error {
	return m.Called(ctx, line).Error(0)
}

func (m *mockEventStore) MarketLines(ctx context.Context, eventID int64) ([]*models.MarketLine, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.MarketLine), args.Error(1)
}

type mockStrategy struct {
	mock.Mock
	name string
}

func (m *mockStrategy) Name() string { return m.name }

func (m *mockStrategy) Evaluate(ctx context.Context, event *models.Event, line *models.MarketLine) (*strategy.Candidate, error) {
	args := m.Called(ctx, event, line)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*strategy.Candidate), args.Error(1)
}

type noopCache struct{ cleared int }

func (c *noopCache) Clear() { c.cleared++ }

type recordingNotifier struct {
	bets []*models.Bet
}

func (n *recordingNotifier) BetPlaced(_ context.Context, bet *models.Bet, _ *probability.Assessment) {
	n.bets = append(n.bets, bet)
}

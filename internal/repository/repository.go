package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/evaristomat/lol-v2/internal/database"
	"github.com/evaristomat/lol-v2/internal/models"
)

// BetStore is the ledger surface consumed by services.
type BetStore interface {
	Exists(ctx context.Context, eventID, market, selection string, line float64) (bool, error)
	Insert(ctx context.Context, bet *models.Bet) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error)
	GetPending(ctx context.Context) ([]*models.Bet, error)
	BatchUpdateResults(ctx context.Context, updates []models.SettlementUpdate) (int, error)
	Stats(ctx context.Context) (*models.LedgerStats, error)
	StatsByStrategy(ctx context.Context) ([]*models.StrategyStats, error)
}

// EventStore is the upcoming-events surface consumed by services.
type EventStore interface {
	Upsert(ctx context.Context, event *models.Event) (*models.Event, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.Event, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]*models.Event, error)
	UpsertMarketLine(ctx context.Context, line *models.MarketLine) error
	MarketLines(ctx context.Context, eventID int64) ([]*models.MarketLine, error)
}

// MatchStore is the historical-results surface consumed by the stats
// store and the reconciler.
type MatchStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*models.Match, error)
	FindFuzzy(ctx context.Context, homeTeam, awayTeam string, date time.Time, toleranceDays int) (*models.Match, error)
	MapStatValue(ctx context.Context, matchID int64, mapNumber int, statName string) (float64, error)
	TeamSamples(ctx context.Context, teamName, statName string, since time.Time, maxMatches int) ([]models.HistoricalSample, error)
	PlayerSamples(ctx context.Context, playerName, statName string, since time.Time, limit int) ([]models.HistoricalSample, error)
	PlayerNames(ctx context.Context) ([]string, error)
	SaveMatch(ctx context.Context, match *models.Match, maps []*models.GameMap, stats map[int][]models.MapStatistic, players map[int][]PlayerStat) error
}

// Repositories bundles the concrete repositories behind one constructor.
type Repositories struct {
	Teams   *TeamRepository
	Events  *EventRepository
	Bets    *BetRepository
	Matches *MatchRepository
}

// New creates all repositories over one connection pool
func New(db *database.DB) *Repositories {
	return &Repositories{
		Teams:   NewTeamRepository(db),
		Events:  NewEventRepository(db),
		Bets:    NewBetRepository(db),
		Matches: NewMatchRepository(db),
	}
}

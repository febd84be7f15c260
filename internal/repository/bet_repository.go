package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/evaristomat/lol-v2/internal/database"
	"github.com/evaristomat/lol-v2/internal/models"
)

// BetRepository is the bet ledger
type BetRepository struct {
	db *database.DB
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{db: db}
}

const betColumns = `id, event_id, league, home_team, away_team, event_date, market, selection,
	line, odds, stake, strategy, expected_roi, fair_odds, status, actual_value, profit,
	settled_at, created_at, updated_at`

func scanBet(row pgx.Row) (*models.Bet, error) {
	var b models.Bet
	err := row.Scan(&b.ID, &b.EventID, &b.League, &b.HomeTeam, &b.AwayTeam, &b.EventDate,
		&b.Market, &b.Selection, &b.Line, &b.Odds, &b.Stake, &b.Strategy, &b.ExpectedROI,
		&b.FairOdds, &b.Status, &b.ActualValue, &b.Profit, &b.SettledAt,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Exists reports whether a bet on the same event, market, selection and
// line is already recorded.
func (r *BetRepository) Exists(ctx context.Context, eventID, market, selection string, line float64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bets
			WHERE event_id = $1 AND market = $2 AND selection = $3 AND line = $4
		)`

	var exists bool
	err := r.db.Pool.QueryRow(ctx, query, eventID, market, selection, line).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check bet existence: %w", err)
	}
	return exists, nil
}

// Insert records a new pending bet. A duplicate key maps to
// models.ErrDuplicateBet so callers can skip quietly.
func (r *BetRepository) Insert(ctx context.Context, bet *models.Bet) error {
	if bet.ID == uuid.Nil {
		bet.ID = uuid.New()
	}
	bet.Status = models.BetStatusPending

	query := `
		INSERT INTO bets (id, event_id, league, home_team, away_team, event_date,
			market, selection, line, odds, stake, strategy, expected_roi, fair_odds, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at`

	err := r.db.Pool.QueryRow(ctx, query,
		bet.ID, bet.EventID, bet.League, bet.HomeTeam, bet.AwayTeam, bet.EventDate,
		bet.Market, bet.Selection, bet.Line, bet.Odds, bet.Stake, bet.Strategy,
		bet.ExpectedROI, bet.FairOdds, bet.Status,
	).Scan(&bet.CreatedAt, &bet.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicateBet
		}
		return fmt.Errorf("failed to insert bet: %w", err)
	}
	return nil
}

// GetByID returns one bet
func (r *BetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE id = $1`

	bet, err := scanBet(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	return bet, nil
}

// GetPending returns all pending bets, oldest first
func (r *BetRepository) GetPending(ctx context.Context) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE status = 'pending' ORDER BY created_at ASC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending bets: %w", err)
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

// BatchUpdateResults applies settlement outcomes in a single
// transaction. Only pending bets are touched, so a concurrent or
// repeated run cannot overwrite a settled outcome.
func (r *BetRepository) BatchUpdateResults(ctx context.Context, updates []models.SettlementUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}

	updated := 0
	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, u := range updates {
			if !models.BetStatusPending.CanTransition(u.Status) {
				return fmt.Errorf("bet %s to %s: %w", u.BetID, u.Status, models.ErrInvalidTransition)
			}
			tag, err := tx.Exec(ctx, `
				UPDATE bets
				SET status = $1, actual_value = $2, profit = $3,
					settled_at = now(), updated_at = now()
				WHERE id = $4 AND status = 'pending'`,
				u.Status, u.ActualValue, u.Profit, u.BetID)
			if err != nil {
				return fmt.Errorf("failed to settle bet %s: %w", u.BetID, err)
			}
			updated += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// Stats returns ledger-wide aggregates
func (r *BetRepository) Stats(ctx context.Context) (*models.LedgerStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'won'),
			COUNT(*) FILTER (WHERE status = 'lost'),
			COUNT(*) FILTER (WHERE status = 'void'),
			COUNT(*) FILTER (WHERE status = 'unknown'),
			COALESCE(SUM(stake) FILTER (WHERE status IN ('won', 'lost')), 0),
			COALESCE(SUM(profit), 0)
		FROM bets`

	var s models.LedgerStats
	err := r.db.Pool.QueryRow(ctx, query).Scan(
		&s.Total, &s.Pending, &s.Won, &s.Lost, &s.Void, &s.Unknown, &s.TotalStake, &s.NetProfit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger stats: %w", err)
	}

	finishDerived(&s)
	return &s, nil
}

// StatsByStrategy returns per-strategy aggregates over settled bets
func (r *BetRepository) StatsByStrategy(ctx context.Context) ([]*models.StrategyStats, error) {
	query := `
		SELECT
			strategy,
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'won'),
			COUNT(*) FILTER (WHERE status = 'lost'),
			COUNT(*) FILTER (WHERE status = 'void'),
			COUNT(*) FILTER (WHERE status = 'unknown'),
			COALESCE(SUM(profit), 0),
			COALESCE(SUM(stake) FILTER (WHERE status IN ('won', 'lost')), 0)
		FROM bets
		WHERE status != 'pending'
		GROUP BY strategy
		ORDER BY strategy`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get strategy stats: %w", err)
	}
	defer rows.Close()

	var stats []*models.StrategyStats
	for rows.Next() {
		var s models.StrategyStats
		var stake float64
		if err := rows.Scan(&s.Strategy, &s.Total, &s.Won, &s.Lost, &s.Void, &s.Unknown, &s.NetProfit, &stake); err != nil {
			return nil, fmt.Errorf("failed to scan strategy stats: %w", err)
		}
		s.ROI = roiPercent(s.NetProfit, stake)
		stats = append(stats, &s)
	}
	return stats, rows.Err()
}

// finishDerived fills the ratio fields with exact decimal arithmetic.
func finishDerived(s *models.LedgerStats) {
	settled := s.Won + s.Lost
	if settled > 0 {
		rate, _ := decimal.NewFromInt(int64(s.Won)).
			Div(decimal.NewFromInt(int64(settled))).
			Mul(decimal.NewFromInt(100)).
			Round(2).Float64()
		s.WinRate = rate
	}
	s.ROI = roiPercent(s.NetProfit, s.TotalStake)
}

func roiPercent(profit, stake float64) float64 {
	if stake <= 0 {
		return 0
	}
	roi, _ := decimal.NewFromFloat(profit).
		Div(decimal.NewFromFloat(stake)).
		Mul(decimal.NewFromInt(100)).
		Round(2).Float64()
	return roi
}

// isUniqueViolation checks for the Postgres duplicate-key error code.
func isUniqueViolation(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}

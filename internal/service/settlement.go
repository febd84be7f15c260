package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/evaristomat/lol-v2/internal/config"
	"github.com/evaristomat/lol-v2/internal/metrics"
	"github.com/evaristomat/lol-v2/internal/models"
	"github.com/evaristomat/lol-v2/internal/probability"
	"github.com/evaristomat/lol-v2/internal/repository"
	"github.com/evaristomat/lol-v2/internal/stats"
	"github.com/evaristomat/lol-v2/internal/strategy"
)

// Age buckets for pending bets. Bets with no usable event date are
// bucketed by when they were recorded.
const (
	bucketFuture       = "future"
	bucketRecent       = "recent"
	bucketRecentWeek   = "recent_week"
	bucketOld          = "old"
	bucketRecentNoInfo = "recent_no_info"
	bucketOldNoInfo    = "old_no_info"
)

// SettlementService reconciles pending bets against recorded match
// results. A bet is only settled when its result is unambiguous;
// anything else stays pending for the next run.
type SettlementService struct {
	bets     repository.BetStore
	matches  repository.MatchStore
	resolver *stats.Resolver
	cfg      config.SettlementConfig
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewSettlementService creates the settlement service
func NewSettlementService(
	bets repository.BetStore,
	matches repository.MatchStore,
	resolver *stats.Resolver,
	cfg config.SettlementConfig,
	log logrus.FieldLogger,
) *SettlementService {
	return &SettlementService{
		bets:     bets,
		matches:  matches,
		resolver: resolver,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// SettlementSummary reports one reconciliation run
type SettlementSummary struct {
	Pending     int
	Settled     int
	Won         int
	Lost        int
	Void        int
	Unknown     int
	LeftPending int
	Errors      int
	Buckets     map[string]int
	Elapsed     time.Duration
}

// Run settles every pending bet it can and reports what it did.
func (s *SettlementService) Run(ctx context.Context) (*SettlementSummary, error) {
	start := s.now()

	pending, err := s.bets.GetPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending bets: %w", err)
	}

	summary := &SettlementSummary{
		Pending: len(pending),
		Buckets: make(map[string]int),
	}

	var mu sync.Mutex
	var updates []models.SettlementUpdate

	forEach(ctx, s.cfg.Workers, len(pending), func(ctx context.Context, i int) {
		bet := pending[i]
		bucket := s.classify(bet, start)

		update, err := s.settleOne(ctx, bet, bucket)

		mu.Lock()
		defer mu.Unlock()
		summary.Buckets[bucket]++
		if err != nil {
			summary.Errors++
			s.log.WithFields(logrus.Fields{
				"bet_id":   bet.ID,
				"event_id": bet.EventID,
				"bucket":   bucket,
			}).Warnf("Settlement attempt failed: %v", err)
			return
		}
		if update == nil {
			summary.LeftPending++
			if bucket == bucketOld || bucket == bucketOldNoInfo {
				// Week-old bets with no result need a human look.
				s.log.WithFields(logrus.Fields{
					"bet_id":   bet.ID,
					"event_id": bet.EventID,
					"home":     bet.HomeTeam,
					"away":     bet.AwayTeam,
					"market":   bet.Market,
				}).Warn("Old bet still has no result")
			}
			return
		}
		updates = append(updates, *update)
	})

	settled, err := s.bets.BatchUpdateResults(ctx, updates)
	if err != nil {
		return nil, fmt.Errorf("failed to apply settlements: %w", err)
	}
	summary.Settled = settled
	for _, u := range updates {
		switch u.Status {
		case models.BetStatusWon:
			summary.Won++
		case models.BetStatusLost:
			summary.Lost++
		case models.BetStatusVoid:
			summary.Void++
		case models.BetStatusUnknown:
			summary.Unknown++
		}
	}

	summary.Elapsed = time.Since(start)
	metrics.SettlementRuns.Inc()
	metrics.BetsSettled.WithLabelValues(string(models.BetStatusWon)).Add(float64(summary.Won))
	metrics.BetsSettled.WithLabelValues(string(models.BetStatusLost)).Add(float64(summary.Lost))
	metrics.BetsSettled.WithLabelValues(string(models.BetStatusVoid)).Add(float64(summary.Void))
	metrics.BetsSettled.WithLabelValues(string(models.BetStatusUnknown)).Add(float64(summary.Unknown))

	s.logSummary(ctx, summary)
	return summary, nil
}

// settleOne resolves one pending bet. A nil update means the bet stays
// pending: the fixture has not been played, the match is not recorded
// yet, or the stat is missing. Missing data never settles a bet.
// Bets without an event date get a week of grace before the creation
// date is trusted enough for a fuzzy lookup.
func (s *SettlementService) settleOne(ctx context.Context, bet *models.Bet, bucket string) (*models.SettlementUpdate, error) {
	if bucket == bucketFuture || bucket == bucketRecentNoInfo {
		return nil, nil
	}

	match, err := s.resolveMatch(ctx, bet)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	mapNumber := strategy.MapNumber(bet.Market)
	statName := strategy.MarketStat(bet.Market)

	value, err := s.matches.MapStatValue(ctx, match.ID, mapNumber, statName)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	side, err := strategy.ParseSide(bet.Selection)
	if err != nil {
		// The result is in but the selection cannot be graded against
		// it. Retrying will never help, so close the bet out instead of
		// carrying it forever.
		s.log.WithFields(logrus.Fields{
			"bet_id":    bet.ID,
			"selection": bet.Selection,
		}).Warnf("Selection cannot be graded, closing as unknown: %v", err)
		return &models.SettlementUpdate{
			BetID:       bet.ID,
			Status:      models.BetStatusUnknown,
			ActualValue: value,
			Profit:      0,
		}, nil
	}

	status := outcome(side, bet.Line, value)
	return &models.SettlementUpdate{
		BetID:       bet.ID,
		Status:      status,
		ActualValue: value,
		Profit:      models.ProfitFor(status, bet.Odds, bet.Stake),
	}, nil
}

// resolveMatch tries the provider id first, then a fuzzy team+date
// lookup with alias-resolved names.
func (s *SettlementService) resolveMatch(ctx context.Context, bet *models.Bet) (*models.Match, error) {
	match, err := s.matches.FindByExternalID(ctx, bet.EventID)
	if err == nil {
		return match, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	date := bet.EventDate
	if date.IsZero() {
		date = bet.CreatedAt
	}
	return s.matches.FindFuzzy(ctx,
		s.resolver.Resolve(bet.HomeTeam),
		s.resolver.Resolve(bet.AwayTeam),
		date, s.cfg.DayTolerance)
}

// classify buckets a pending bet by how stale it is.
func (s *SettlementService) classify(bet *models.Bet, now time.Time) string {
	ref := bet.EventDate
	noInfo := ref.IsZero()
	if noInfo {
		ref = bet.CreatedAt
	}

	if !noInfo && ref.After(now) {
		return bucketFuture
	}

	age := now.Sub(ref)
	old := age > time.Duration(s.cfg.OldThresholdDays)*24*time.Hour

	if noInfo {
		if old {
			return bucketOldNoInfo
		}
		return bucketRecentNoInfo
	}
	if old {
		return bucketOld
	}
	if age > 24*time.Hour {
		return bucketRecentWeek
	}
	return bucketRecent
}

// outcome decides a settled bet. A value exactly on the line is a push
// and voids the bet with the stake returned.
func outcome(side probability.Side, line, value float64) models.BetStatus {
	if value == line {
		return models.BetStatusVoid
	}
	over := value > line
	if (side == probability.SideOver) == over {
		return models.BetStatusWon
	}
	return models.BetStatusLost
}

func (s *SettlementService) logSummary(ctx context.Context, summary *SettlementSummary) {
	fields := logrus.Fields{
		"pending":      summary.Pending,
		"settled":      summary.Settled,
		"won":          summary.Won,
		"lost":         summary.Lost,
		"void":         summary.Void,
		"unknown":      summary.Unknown,
		"left_pending": summary.LeftPending,
		"errors":       summary.Errors,
		"elapsed":      summary.Elapsed.Round(time.Millisecond).String(),
	}
	for bucket, count := range summary.Buckets {
		fields["bucket_"+bucket] = count
	}
	s.log.WithFields(fields).Info("Settlement run finished")

	ledger, err := s.bets.Stats(ctx)
	if err != nil {
		s.log.Warnf("Failed to load ledger stats: %v", err)
		return
	}
	s.log.WithFields(logrus.Fields{
		"total":      ledger.Total,
		"won":        ledger.Won,
		"lost":       ledger.Lost,
		"void":       ledger.Void,
		"unknown":    ledger.Unknown,
		"win_rate":   ledger.WinRate,
		"net_profit": ledger.NetProfit,
		"roi":        ledger.ROI,
	}).Info("Ledger performance")

	byStrategy, err := s.bets.StatsByStrategy(ctx)
	if err != nil {
		s.log.Warnf("Failed to load strategy stats: %v", err)
		return
	}
	for _, st := range byStrategy {
		s.log.WithFields(logrus.Fields{
			"strategy":   st.Strategy,
			"total":      st.Total,
			"won":        st.Won,
			"lost":       st.Lost,
			"void":       st.Void,
			"net_profit": st.NetProfit,
			"roi":        st.ROI,
		}).Info("Strategy performance")
	}
}

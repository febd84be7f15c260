package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/evaristomat/lol-v2/internal/config"
	"github.com/evaristomat/lol-v2/internal/metrics"
	"github.com/evaristomat/lol-v2/internal/models"
	"github.com/evaristomat/lol-v2/internal/repository"
	"github.com/evaristomat/lol-v2/internal/strategy"
)

// SampleCache is the slice of the stats store the analysis run manages.
type SampleCache interface {
	Clear()
}

// AnalysisService evaluates upcoming events against the registered
// strategies and records qualifying bets in the ledger.
type AnalysisService struct {
	events     repository.EventStore
	bets       repository.BetStore
	cache      SampleCache
	strategies []strategy.Strategy
	notifier   Notifier
	cfg        config.AnalysisConfig
	log        logrus.FieldLogger
}

// NewAnalysisService creates the analysis service. Strategies are
// consulted in registration order; the first one claiming a line wins.
func NewAnalysisService(
	events repository.EventStore,
	bets repository.BetStore,
	cache SampleCache,
	strategies []strategy.Strategy,
	notifier Notifier,
	cfg config.AnalysisConfig,
	log logrus.FieldLogger,
) *AnalysisService {
	return &AnalysisService{
		events:     events,
		bets:       bets,
		cache:      cache,
		strategies: strategies,
		notifier:   notifier,
		cfg:        cfg,
		log:        log,
	}
}

// AnalysisSummary reports one analysis run
type AnalysisSummary struct {
	Events     int
	Lines      int
	Candidates int
	Recorded   int
	Duplicates int
	Errors     int
	Elapsed    time.Duration
}

// Run evaluates every upcoming event once. Per-event failures are
// logged and skipped so one bad payload cannot sink the run.
func (s *AnalysisService) Run(ctx context.Context) (*AnalysisSummary, error) {
	start := time.Now()

	// Each run works from a fresh snapshot of the sample windows.
	s.cache.Clear()

	events, err := s.events.ListUpcoming(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("failed to list upcoming events: %w", err)
	}

	summary := &AnalysisSummary{Events: len(events)}
	var mu sync.Mutex

	forEach(ctx, s.cfg.Workers, len(events), func(ctx context.Context, i int) {
		event := events[i]
		res, err := s.analyzeEvent(ctx, event)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			summary.Errors++
			s.log.WithFields(logrus.Fields{
				"event_id": event.ExternalID,
				"home":     event.HomeTeam,
				"away":     event.AwayTeam,
			}).Warnf("Event analysis failed: %v", err)
			return
		}
		summary.Lines += res.Lines
		summary.Candidates += res.Candidates
		summary.Recorded += res.Recorded
		summary.Duplicates += res.Duplicates
	})

	summary.Elapsed = time.Since(start)
	metrics.AnalysisRuns.Inc()
	metrics.BetsRecorded.Add(float64(summary.Recorded))

	s.log.WithFields(logrus.Fields{
		"events":     summary.Events,
		"lines":      summary.Lines,
		"candidates": summary.Candidates,
		"recorded":   summary.Recorded,
		"duplicates": summary.Duplicates,
		"errors":     summary.Errors,
		"elapsed":    summary.Elapsed.Round(time.Millisecond).String(),
	}).Info("Analysis run finished")

	return summary, nil
}

type eventResult struct {
	Lines      int
	Candidates int
	Recorded   int
	Duplicates int
}

func (s *AnalysisService) analyzeEvent(ctx context.Context, event *models.Event) (*eventResult, error) {
	lines, err := s.events.MarketLines(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load market lines: %w", err)
	}

	res := &eventResult{Lines: len(lines)}

	var candidates []*strategy.Candidate
	for _, line := range lines {
		if !s.oddsInRange(line.Odds) {
			continue
		}
		candidate, err := s.evaluateLine(ctx, event, line)
		if err != nil {
			// One unreadable line should not discard the event.
			s.log.WithFields(logrus.Fields{
				"event_id":  event.ExternalID,
				"market":    line.Market,
				"selection": line.Selection,
			}).Debugf("Line skipped: %v", err)
			continue
		}
		if candidate != nil && candidate.Assessment.HasEdge(s.cfg.MinROI) {
			candidates = append(candidates, candidate)
		}
	}

	res.Candidates = len(candidates)

	// Best value first, capped per event.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Assessment.ROI > candidates[j].Assessment.ROI
	})
	if len(candidates) > s.cfg.MaxBetsPerEvent {
		candidates = candidates[:s.cfg.MaxBetsPerEvent]
	}

	for _, candidate := range candidates {
		recorded, err := s.record(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if recorded {
			res.Recorded++
		} else {
			res.Duplicates++
		}
	}

	return res, nil
}

// evaluateLine consults strategies in order, first claim wins.
func (s *AnalysisService) evaluateLine(ctx context.Context, event *models.Event, line *models.MarketLine) (*strategy.Candidate, error) {
	for _, st := range s.strategies {
		candidate, err := st.Evaluate(ctx, event, line)
		if err != nil {
			return nil, fmt.Errorf("strategy %s: %w", st.Name(), err)
		}
		if candidate != nil {
			return candidate, nil
		}
	}
	return nil, nil
}

func (s *AnalysisService) record(ctx context.Context, candidate *strategy.Candidate) (bool, error) {
	event, line, a := candidate.Event, candidate.Line, candidate.Assessment

	exists, err := s.bets.Exists(ctx, event.ExternalID, line.Market, line.Selection, line.Line)
	if err != nil {
		return false, fmt.Errorf("failed to check for duplicate: %w", err)
	}
	if exists {
		return false, nil
	}

	bet := &models.Bet{
		EventID:     event.ExternalID,
		League:      event.League,
		HomeTeam:    event.HomeTeam,
		AwayTeam:    event.AwayTeam,
		EventDate:   event.StartTime,
		Market:      line.Market,
		Selection:   line.Selection,
		Line:        line.Line,
		Odds:        line.Odds,
		Stake:       s.cfg.Stake,
		Strategy:    candidate.Strategy,
		ExpectedROI: a.ROI,
		FairOdds:    a.FairOdds,
	}

	if err := s.bets.Insert(ctx, bet); err != nil {
		if errors.Is(err, models.ErrDuplicateBet) {
			// Lost the race against a concurrent worker.
			return false, nil
		}
		return false, fmt.Errorf("failed to record bet: %w", err)
	}

	s.notifier.BetPlaced(ctx, bet, a)
	return true, nil
}

func (s *AnalysisService) oddsInRange(odds float64) bool {
	if s.cfg.MinOdds > 0 && odds < s.cfg.MinOdds {
		return false
	}
	if s.cfg.MaxOdds > 0 && odds > s.cfg.MaxOdds {
		return false
	}
	return true
}

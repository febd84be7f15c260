package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/evaristomat/lol-v2/internal/models"
	"github.com/evaristomat/lol-v2/internal/probability"
)

// TotalsStrategy assesses map-total markets (kills, dragons, barons,
// towers, inhibitors, game duration) from both teams' recent histories.
type TotalsStrategy struct {
	model   *probability.Model
	samples SampleSource
}

// NewTotalsStrategy creates the map-totals strategy
func NewTotalsStrategy(model *probability.Model, samples SampleSource) *TotalsStrategy {
	return &TotalsStrategy{model: model, samples: samples}
}

// Name implements Strategy
func (s *TotalsStrategy) Name() string {
	return "map_totals"
}

// Evaluate implements Strategy. Both teams' windows feed the averaged
// model; an unfillable window means no opinion, not an error.
func (s *TotalsStrategy) Evaluate(ctx context.Context, event *models.Event, line *models.MarketLine) (*Candidate, error) {
	side, err := ParseSide(line.Selection)
	if err != nil {
		// Moneyline and handicap selections land here. Not ours.
		return nil, nil
	}

	stat := MarketStat(line.Market)
	window := s.model.WindowLong

	home, err := s.samples.TeamSamples(ctx, event.HomeTeam, stat, window)
	if err != nil {
		return nil, fmt.Errorf("home samples for %s: %w", event.HomeTeam, err)
	}
	away, err := s.samples.TeamSamples(ctx, event.AwayTeam, stat, window)
	if err != nil {
		return nil, fmt.Errorf("away samples for %s: %w", event.AwayTeam, err)
	}

	assessment, err := s.model.EvaluateDual(side, line.Line, line.Odds, home, away)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientSamples) {
			return nil, nil
		}
		return nil, err
	}

	return &Candidate{
		Strategy:   s.Name(),
		Event:      event,
		Line:       line,
		Assessment: assessment,
	}, nil
}

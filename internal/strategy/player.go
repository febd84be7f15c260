package strategy

import (
	"context"
	"errors"
	"fmt"

	"github.com/evaristomat/lol-v2/internal/models"
	"github.com/evaristomat/lol-v2/internal/probability"
)

// PlayerPropsStrategy assesses per-player markets (player kills and the
// like) from the player's own recent maps.
type PlayerPropsStrategy struct {
	model   *probability.Model
	samples SampleSource
	players []string
}

// NewPlayerPropsStrategy creates the player-props strategy. players is
// the list of known names the market labels are matched against.
func NewPlayerPropsStrategy(model *probability.Model, samples SampleSource, players []string) *PlayerPropsStrategy {
	return &PlayerPropsStrategy{model: model, samples: samples, players: players}
}

// Name implements Strategy
func (s *PlayerPropsStrategy) Name() string {
	return "player_props"
}

// Evaluate implements Strategy
func (s *PlayerPropsStrategy) Evaluate(ctx context.Context, event *models.Event, line *models.MarketLine) (*Candidate, error) {
	player := MatchPlayer(line.Market, s.players)
	if player == "" {
		return nil, nil
	}

	side, err := ParseSide(line.Selection)
	if err != nil {
		return nil, nil
	}

	stat := MarketStat(line.Market)
	samples, err := s.samples.PlayerSamples(ctx, player, stat, s.model.WindowLong)
	if err != nil {
		return nil, fmt.Errorf("player samples for %s: %w", player, err)
	}

	assessment, err := s.model.Evaluate(side, line.Line, line.Odds, samples)
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

package strategy

import (
	"context"

	"github.com/evaristomat/lol-v2/internal/models"
	"github.com/evaristomat/lol-v2/internal/probability"
)

// Candidate is a market line a strategy considers worth betting
type Candidate struct {
	Strategy   string
	Event      *models.Event
	Line       *models.MarketLine
	Assessment *probability.Assessment
}

// Strategy assesses one quoted line for one event. A nil candidate with
// a nil error means the strategy has no opinion on the line (wrong
// market shape or not enough history).
type Strategy interface {
	Name() string
	Evaluate(ctx context.Context, event *models.Event, line *models.MarketLine) (*Candidate, error)
}

// SampleSource is the slice of the stats store strategies consume.
type SampleSource interface {
	TeamSamples(ctx context.Context, teamName, statName string, windowSize int) ([]models.HistoricalSample, error)
	PlayerSamples(ctx context.Context, playerName, statName string, windowSize int) ([]models.HistoricalSample, error)
}

// Package probability turns quoted odds and historical samples into a
// posterior probability, a fair price and an expected ROI.
package probability

import (
	"fmt"

	"github.com/evaristomat/lol-v2/internal/models"
)

// Side is the direction of a totals selection
type Side string

const (
	SideOver  Side = "over"
	SideUnder Side = "under"
)

// Default model parameters.
const (
	DefaultWindowShort = 10
	DefaultWindowLong  = 20
	DefaultMinSamples  = 20

	weightShort = 0.6
	weightLong  = 0.4
	priorWeight = 0.5

	probFloor = 1e-6
)

// Model blends the market-implied prior with historical hit rates
type Model struct {
	WindowShort int
	WindowLong  int
	MinSamples  int
}

// NewModel creates a model with the default windows
func NewModel() *Model {
	return &Model{
		WindowShort: DefaultWindowShort,
		WindowLong:  DefaultWindowLong,
		MinSamples:  DefaultMinSamples,
	}
}

// Assessment is the model's opinion on one priced selection
type Assessment struct {
	Side         Side    `json:"side"`
	Line         float64 `json:"line"`
	Odds         float64 `json:"odds"`
	Prior        float64 `json:"prior"`
	Likelihood   float64 `json:"likelihood"`
	Posterior    float64 `json:"posterior"`
	FairOdds     float64 `json:"fair_odds"`
	ROI          float64 `json:"roi"`
	SampleSize   int     `json:"sample_size"`
	HitRateShort float64 `json:"hit_rate_short"`
	HitRateLong  float64 `json:"hit_rate_long"`
}

// HasEdge reports whether the assessment clears both value criteria:
// the projected ROI meets the threshold and the posterior moved above
// the market-implied prior.
func (a *Assessment) HasEdge(minROI float64) bool {
	return a.ROI >= minROI && a.Posterior > a.Prior
}

// Evaluate assesses a single participant's selection. It refuses to
// produce an opinion on fewer than MinSamples samples.
func (m *Model) Evaluate(side Side, line, odds float64, samples []models.HistoricalSample) (*Assessment, error) {
	if len(samples) < m.MinSamples {
		return nil, fmt.Errorf("%d of %d samples: %w", len(samples), m.MinSamples, models.ErrInsufficientSamples)
	}

	likelihood, hrShort, hrLong := m.likelihood(side, line, samples)
	return m.finish(side, line, odds, likelihood, hrShort, hrLong, len(samples)), nil
}

// EvaluateDual assesses a match-total selection from both teams'
// histories. The likelihoods are averaged; both sides must carry the
// minimum sample count.
func (m *Model) EvaluateDual(side Side, line, odds float64, home, away []models.HistoricalSample) (*Assessment, error) {
	if len(home) < m.MinSamples || len(away) < m.MinSamples {
		return nil, fmt.Errorf("%d/%d of %d samples: %w", len(home), len(away), m.MinSamples, models.ErrInsufficientSamples)
	}

	lh, hrShortH, hrLongH := m.likelihood(side, line, home)
	la, hrShortA, hrLongA := m.likelihood(side, line, away)

	likelihood := (lh + la) / 2
	hrShort := (hrShortH + hrShortA) / 2
	hrLong := (hrLongH + hrLongA) / 2

	n := len(home)
	if len(away) < n {
		n = len(away)
	}
	return m.finish(side, line, odds, likelihood, hrShort, hrLong, n), nil
}

func (m *Model) finish(side Side, line, odds, likelihood, hrShort, hrLong float64, sampleSize int) *Assessment {
	prior := ImpliedProbability(odds)
	posterior := priorWeight*prior + (1-priorWeight)*likelihood
	posterior = clamp(posterior)

	fair := 1 / posterior
	roi := (odds/fair - 1) * 100

	return &Assessment{
		Side:         side,
		Line:         line,
		Odds:         odds,
		Prior:        prior,
		Likelihood:   likelihood,
		Posterior:    posterior,
		FairOdds:     fair,
		ROI:          roi,
		SampleSize:   sampleSize,
		HitRateShort: hrShort,
		HitRateLong:  hrLong,
	}
}

// likelihood blends the short and long window hit rates 0.6/0.4. When
// the history cannot fill the long window the blend collapses onto the
// short window alone.
func (m *Model) likelihood(side Side, line float64, samples []models.HistoricalSample) (likelihood, hrShort, hrLong float64) {
	hrShort = HitRate(side, line, window(samples, m.WindowShort))
	if len(samples) < m.WindowLong {
		return hrShort, hrShort, hrShort
	}
	hrLong = HitRate(side, line, window(samples, m.WindowLong))
	return weightShort*hrShort + weightLong*hrLong, hrShort, hrLong
}

// HitRate computes the fraction of samples beating the line for the
// given side. Pushes (value equal to the line) carry no information
// about either side and are excluded from numerator and denominator.
func HitRate(side Side, line float64, samples []models.HistoricalSample) float64 {
	hits, decisive := 0, 0
	for _, s := range samples {
		if s.Value == line {
			continue
		}
		decisive++
		if side == SideOver && s.Value > line {
			hits++
		}
		if side == SideUnder && s.Value < line {
			hits++
		}
	}
	if decisive == 0 {
		return 0
	}
	return float64(hits) / float64(decisive)
}

// ImpliedProbability converts decimal odds to the market-implied
// probability, clamped away from 0 and 1.
func ImpliedProbability(odds float64) float64 {
	if odds <= 0 {
		return 1 - probFloor
	}
	return clamp(1 / odds)
}

func clamp(p float64) float64 {
	if p < probFloor {
		return probFloor
	}
	if p > 1-probFloor {
		return 1 - probFloor
	}
	return p
}

func window(samples []models.HistoricalSample, n int) []models.HistoricalSample {
	if len(samples) <= n {
		return samples
	}
	return samples[:n]
}

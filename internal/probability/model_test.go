package probability

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evaristomat/lol-v2/internal/models"
)

func samplesOf(values ...float64) []models.HistoricalSample {
	date := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.HistoricalSample, len(values))
	for i, v := range values {
		out[i] = models.HistoricalSample{Value: v, MatchDate: date.AddDate(0, 0, -i), MapNumber: 1}
	}
	return out
}

// repeatSamples builds n samples where the first hits values cross the
// line and the rest stay under it.
func repeatSamples(n, hits int, line float64) []models.HistoricalSample {
	values := make([]float64, n)
	for i := range values {
		if i < hits {
			values[i] = line + 2
		} else {
			values[i] = line - 2
		}
	}
	return samplesOf(values...)
}

// uniformSamples builds n samples where every block of ten carries
// hitsPerTen values over the line, so the 10 and 20 windows agree.
func uniformSamples(n, hitsPerTen int, line float64) []models.HistoricalSample {
	values := make([]float64, n)
	for i := range values {
		if i%10 < hitsPerTen {
			values[i] = line + 2
		} else {
			values[i] = line - 2
		}
	}
	return samplesOf(values...)
}

func TestImpliedProbability(t *testing.T) {
	assert.InDelta(t, 0.5, ImpliedProbability(2.0), 1e-9)
	assert.InDelta(t, 0.47619, ImpliedProbability(2.10), 1e-4)

	// Degenerate odds clamp instead of exploding.
	assert.Equal(t, 1-probFloor, ImpliedProbability(0))
	assert.Equal(t, 1-probFloor, ImpliedProbability(0.5))
}

func TestHitRateExcludesPushes(t *testing.T) {
	line := 25.5

	// 2 over, 1 push, 1 under: the push drops out of both sides.
	samples := samplesOf(30, 27, 25.5, 20)

	assert.InDelta(t, 2.0/3.0, HitRate(SideOver, line, samples), 1e-9)
	assert.InDelta(t, 1.0/3.0, HitRate(SideUnder, line, samples), 1e-9)
}

func TestHitRateAllPushes(t *testing.T) {
	samples := samplesOf(10, 10, 10)
	assert.Equal(t, 0.0, HitRate(SideOver, 10, samples))
}

func TestEvaluateScenarioNumbers(t *testing.T) {
	m := NewModel()

	// 14 hits over 25.5 in both windows at odds 2.10.
	samples := make([]models.HistoricalSample, 0, 20)
	for i := 0; i < 20; i++ {
		v := 30.0
		// Interleave so both the 10 and 20 window sit at 0.7.
		if i%10 >= 7 {
			v = 20.0
		}
		samples = append(samples, models.HistoricalSample{Value: v})
	}

	a, err := m.Evaluate(SideOver, 25.5, 2.10, samples)
	require.NoError(t, err)

	assert.InDelta(t, 0.7, a.HitRateShort, 1e-9)
	assert.InDelta(t, 0.7, a.HitRateLong, 1e-9)
	assert.InDelta(t, 0.588, a.Posterior, 0.001)
	assert.InDelta(t, 1.701, a.FairOdds, 0.001)
	assert.InDelta(t, 23.5, a.ROI, 0.1)
	assert.True(t, a.HasEdge(5.0))
	assert.Greater(t, a.Posterior, a.Prior)
}

func TestEvaluateRefusesThinHistory(t *testing.T) {
	m := NewModel()

	_, err := m.Evaluate(SideOver, 25.5, 2.0, repeatSamples(19, 15, 25.5))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrInsufficientSamples))
}

func TestLikelihoodCollapsesOnShortHistory(t *testing.T) {
	m := NewModel()

	// 12 samples cannot fill the long window, so the blend is the
	// short-window rate alone.
	samples := repeatSamples(12, 8, 25.5)
	likelihood, hrShort, hrLong := m.likelihood(SideOver, 25.5, samples)

	assert.Equal(t, hrShort, likelihood)
	assert.Equal(t, hrShort, hrLong)
	assert.InDelta(t, 0.8, hrShort, 1e-9)
}

func TestLikelihoodBlend(t *testing.T) {
	m := NewModel()

	// Short window 8/10, long window 14/20.
	values := make([]float64, 20)
	for i := range values {
		switch {
		case i < 8:
			values[i] = 30
		case i < 10:
			values[i] = 20
		case i < 16:
			values[i] = 30
		default:
			values[i] = 20
		}
	}
	likelihood, hrShort, hrLong := m.likelihood(SideOver, 25.5, samplesOf(values...))

	assert.InDelta(t, 0.8, hrShort, 1e-9)
	assert.InDelta(t, 0.7, hrLong, 1e-9)
	assert.InDelta(t, 0.6*0.8+0.4*0.7, likelihood, 1e-9)
}

func TestEvaluateDualAveragesBothTeams(t *testing.T) {
	m := NewModel()

	home := uniformSamples(20, 8, 25.5) // 0.8 in both windows
	away := uniformSamples(20, 6, 25.5) // 0.6 in both windows

	a, err := m.EvaluateDual(SideOver, 25.5, 2.0, home, away)
	require.NoError(t, err)

	assert.InDelta(t, 0.7, a.Likelihood, 1e-9)
	assert.InDelta(t, 0.5*0.5+0.5*0.7, a.Posterior, 1e-9)
}

func TestEvaluateDualRefusesWhenEitherSideThin(t *testing.T) {
	m := NewModel()

	_, err := m.EvaluateDual(SideOver, 25.5, 2.0,
		uniformSamples(20, 5, 25.5), uniformSamples(5, 3, 25.5))
	assert.True(t, errors.Is(err, models.ErrInsufficientSamples))
}

func TestHasEdgeRequiresBothCriteria(t *testing.T) {
	a := &Assessment{ROI: 10, Posterior: 0.55, Prior: 0.5}
	assert.True(t, a.HasEdge(5))

	// Enough ROI on paper but the posterior moved the wrong way.
	b := &Assessment{ROI: 10, Posterior: 0.45, Prior: 0.5}
	assert.False(t, b.HasEdge(5))

	c := &Assessment{ROI: 3, Posterior: 0.55, Prior: 0.5}
	assert.False(t, c.HasEdge(5))
}

func TestFairPriceRoundTrip(t *testing.T) {
	m := NewModel()

	// When the market already prices the history, ROI sits at zero.
	samples := uniformSamples(20, 5, 25.5) // hit rate 0.5 in both windows
	a, err := m.Evaluate(SideOver, 25.5, 2.0, samples)
	require.NoError(t, err)

	assert.InDelta(t, 0.5, a.Posterior, 1e-9)
	assert.InDelta(t, 2.0, a.FairOdds, 1e-9)
	assert.InDelta(t, 0.0, a.ROI, 1e-9)
	assert.False(t, a.HasEdge(0.0001))
}

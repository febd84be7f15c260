package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evaristomat/lol-v2/internal/models"
)

func TestParseStatValue(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"23", 23, false},
		{"4.5", 4.5, false},
		{"11.5k", 11500, false},
		{"11.5K", 11500, false},
		{" 2k ", 2000, false},
		{"0", 0, false},
		{"", 0, true},
		{"n/a", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseStatValue(tt.raw)
		if tt.wantErr {
			require.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestCanonicalStat(t *testing.T) {
	assert.Equal(t, models.StatKills, canonicalStat("kills"))
	assert.Equal(t, models.StatDragons, canonicalStat("Dragons"))
	assert.Equal(t, models.StatBarons, canonicalStat("barons"))
	assert.Equal(t, models.StatTowers, canonicalStat("towers"))
	assert.Equal(t, models.StatTowers, canonicalStat("turrets"))
	assert.Equal(t, models.StatInhibitors, canonicalStat("inhibitors"))
	assert.Equal(t, models.StatGameDuration, canonicalStat("game_duration"))

	// Untracked stats map to empty and are skipped.
	assert.Equal(t, "", canonicalStat("gold"))
	assert.Equal(t, "", canonicalStat("wards"))
}

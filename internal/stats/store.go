package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/evaristomat/lol-v2/internal/models"
	"github.com/evaristomat/lol-v2/internal/repository"
)

// matchesPerWindow caps how many matches are scanned to fill a window.
// A best-of series yields several maps, so window*3 matches is always
// enough to produce window samples.
const matchesPerWindow = 3

// Store serves historical samples keyed by (participant, stat). Entries
// never expire on their own; callers clear the cache between analysis
// runs so every run sees a consistent snapshot.
type Store struct {
	matches  repository.MatchStore
	resolver *Resolver
	cache    *gocache.Cache
	horizon  time.Duration
	log      logrus.FieldLogger

	mu     sync.Mutex
	hits   int64
	misses int64
}

// NewStore creates a sample store over the match repository
func NewStore(matches repository.MatchStore, resolver *Resolver, horizon time.Duration, log logrus.FieldLogger) *Store {
	return &Store{
		matches:  matches,
		resolver: resolver,
		cache:    gocache.New(gocache.NoExpiration, 0),
		horizon:  horizon,
		log:      log,
	}
}

// TeamSamples returns up to windowSize*3 matches worth of per-map
// totals for a team, newest match first. Provider spellings are
// resolved to canonical names before the lookup. Zero-valued inhibitor
// samples are dropped as unrecorded.
func (s *Store) TeamSamples(ctx context.Context, teamName, statName string, windowSize int) ([]models.HistoricalSample, error) {
	canonical := s.resolver.Resolve(teamName)
	key := fmt.Sprintf("team|%s|%s|%d", canonical, statName, windowSize)

	if cached, ok := s.cache.Get(key); ok {
		s.recordHit()
		return cached.([]models.HistoricalSample), nil
	}
	s.recordMiss()

	since := time.Now().Add(-s.horizon)
	samples, err := s.matches.TeamSamples(ctx, canonical, statName, since, windowSize*matchesPerWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load team samples: %w", err)
	}

	samples = filterUnrecorded(statName, samples)
	s.cache.Set(key, samples, gocache.NoExpiration)

	s.log.WithFields(logrus.Fields{
		"team":    canonical,
		"stat":    statName,
		"samples": len(samples),
	}).Debug("Loaded team samples")

	return samples, nil
}

// PlayerSamples returns the recent per-map values of one stat for a
// player, newest first.
func (s *Store) PlayerSamples(ctx context.Context, playerName, statName string, windowSize int) ([]models.HistoricalSample, error) {
	key := fmt.Sprintf("player|%s|%s|%d", playerName, statName, windowSize)

	if cached, ok := s.cache.Get(key); ok {
		s.recordHit()
		return cached.([]models.HistoricalSample), nil
	}
	s.recordMiss()

	since := time.Now().Add(-s.horizon)
	samples, err := s.matches.PlayerSamples(ctx, playerName, statName, since, windowSize*matchesPerWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load player samples: %w", err)
	}

	s.cache.Set(key, samples, gocache.NoExpiration)
	return samples, nil
}

// PlayerNames lists known players for selection parsing.
func (s *Store) PlayerNames(ctx context.Context) ([]string, error) {
	return s.matches.PlayerNames(ctx)
}

// Clear drops every cached window. Called between analysis runs.
func (s *Store) Clear() {
	s.cache.Flush()
}

// CacheStats returns hit/miss counters since startup.
func (s *Store) CacheStats() (hits, misses int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.misses
}

func (s *Store) recordHit() {
	s.mu.Lock()
	s.hits++
	s.mu.Unlock()
}

func (s *Store) recordMiss() {
	s.mu.Lock()
	s.misses++
	s.mu.Unlock()
}

// filterUnrecorded drops samples that encode "not recorded" rather than
// a real zero. Older map records omit inhibitor counts and store 0.
func filterUnrecorded(statName string, samples []models.HistoricalSample) []models.HistoricalSample {
	if statName != models.StatInhibitors {
		return samples
	}
	kept := samples[:0]
	for _, sample := range samples {
		if sample.Value == 0 {
			continue
		}
		kept = append(kept, sample)
	}
	return kept
}

package core

import (
	"encoding/json"
	"fmt"

	"github.com/huangsam/pulse/core/algo"
	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
	"go.uber.org/zap"
)

// TrendingCalculator ranks artifacts and caches the ranking per window.
type TrendingCalculator struct {
	cache    contract.TTLCache
	clock    contract.Clock
	observer contract.Observer
	logger   *zap.Logger
}

// NewTrendingCalculator creates a calculator. A nil cache disables caching.
func NewTrendingCalculator(cache contract.TTLCache, clock contract.Clock, observer contract.Observer, logger *zap.Logger) *TrendingCalculator {
	if clock == nil {
		clock = contract.SystemClock{}
	}
	if observer == nil {
		observer = contract.NopObserver{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrendingCalculator{cache: cache, clock: clock, observer: observer, logger: logger}
}

// trendingCacheKey is the cache key of the ranking for a window.
func trendingCacheKey(windowDays int) string {
	return fmt.Sprintf("trending:%d", windowDays)
}

// Rank scores every candidate active within the last windowDays days and
// returns them ordered by total score. A cached ranking for the same window is
// returned while fresh unless force is set. The cache is keyed by window only,
// so callers switching candidate sets must force or Invalidate.
func (tc *TrendingCalculator) Rank(candidates []schema.EngagementCounters, windowDays int, force bool) ([]schema.TrendingScore, error) {
	if _, ok := schema.ValidTrendingWindows[windowDays]; !ok {
		return nil, fmt.Errorf("%w: %d days (must be 1, 7 or 30)", contract.ErrInvalidWindow, windowDays)
	}
	key := trendingCacheKey(windowDays)

	if !force && tc.cache != nil {
		if data, ok := tc.cache.Get(key); ok {
			var cached []schema.TrendingScore
			if err := json.Unmarshal(data, &cached); err == nil {
				tc.observer.TrendingCacheResult(true)
				return cached, nil
			}
			tc.logger.Debug("discarding unreadable trending cache entry", zap.String("key", key))
		}
		tc.observer.TrendingCacheResult(false)
	}

	now := tc.clock.Now()
	cutoff := now.AddDate(0, 0, -windowDays)
	scores := make([]schema.TrendingScore, 0, len(candidates))
	for _, c := range candidates {
		if c.ActivityTime().Before(cutoff) {
			continue
		}
		scores = append(scores, algo.ScoreArtifact(c, now))
	}
	scores = algo.RankTrending(scores)

	if tc.cache != nil {
		data, err := json.Marshal(scores)
		if err == nil {
			err = tc.cache.Set(key, data)
		}
		if err != nil {
			contract.LogWarn("Cannot cache trending ranking", err)
		}
	}
	return scores, nil
}

// Invalidate drops every cached ranking.
func (tc *TrendingCalculator) Invalidate() error {
	if tc.cache == nil {
		return nil
	}
	return tc.cache.Invalidate()
}

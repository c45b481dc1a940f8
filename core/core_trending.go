package core

import (
	"context"
	"fmt"

	"github.com/huangsam/pulse/core/algo"
	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/internal/iocache"
	"github.com/huangsam/pulse/internal/statefile"
	"github.com/huangsam/pulse/schema"
)

// trendingServices bundles the trending calculator with the stores it ranks.
type trendingServices struct {
	calculator *TrendingCalculator
	registry   *ArtifactRegistry
	featured   *FeaturedList
}

// newTrendingServices wires the trending cache store of mgr and the state
// directory of cfg into the trending services.
func newTrendingServices(cfg *contract.Config, mgr contract.CacheManager, observer contract.Observer) *trendingServices {
	cache := iocache.NewTTLCache(mgr.GetTrendingStore(), cfg.TrendingTTL, clock)
	calculator := NewTrendingCalculator(cache, clock, observer, logger)
	store := statefile.New(cfg.StateDir, clock)
	return &trendingServices{
		calculator: calculator,
		registry:   NewArtifactRegistry(store, calculator, clock),
		featured:   NewFeaturedList(store, cfg.Admins, clock),
	}
}

// RankArtifacts ranks every registered artifact active within windowDays days.
// A positive limit keeps only the top entries.
func RankArtifacts(cfg *contract.Config, mgr contract.CacheManager, observer contract.Observer, windowDays int, force bool, limit int) ([]schema.TrendingScore, error) {
	svc := newTrendingServices(cfg, mgr, observer)
	candidates, err := svc.registry.List()
	if err != nil {
		return nil, err
	}
	scores, err := svc.calculator.Rank(candidates, windowDays, force)
	if err != nil {
		return nil, err
	}
	return algo.TopTrending(scores, limit), nil
}

// ExecuteTrendingRank prints the trending ranking for a window.
func ExecuteTrendingRank(_ context.Context, cfg *contract.Config, mgr contract.CacheManager, windowDays int, force bool, limit int) error {
	scores, err := RankArtifacts(cfg, mgr, nil, windowDays, force, limit)
	if err != nil {
		return err
	}
	return writer.WriteTrending(scores, windowDays, cfg)
}

// ExecuteTrendingRegister adds an artifact or replaces its counters.
func ExecuteTrendingRegister(_ context.Context, cfg *contract.Config, mgr contract.CacheManager, counters schema.EngagementCounters) error {
	svc := newTrendingServices(cfg, mgr, nil)
	if err := svc.registry.Register(counters); err != nil {
		return err
	}
	fmt.Printf("Registered artifact %s\n", counters.ArtifactID)
	return nil
}

// ExecuteTrendingImport registers every artifact listed in a JSON or YAML file.
func ExecuteTrendingImport(_ context.Context, cfg *contract.Config, mgr contract.CacheManager, file string) error {
	var artifacts []schema.EngagementCounters
	if err := decodeFile(file, &artifacts); err != nil {
		return fmt.Errorf("failed to read artifacts: %w", err)
	}
	svc := newTrendingServices(cfg, mgr, nil)
	for _, c := range artifacts {
		if err := svc.registry.Register(c); err != nil {
			return err
		}
	}
	fmt.Printf("Imported %d artifacts\n", len(artifacts))
	return nil
}

// ExecuteTrendingDownload counts one download of an artifact.
func ExecuteTrendingDownload(_ context.Context, cfg *contract.Config, mgr contract.CacheManager, artifactID string) error {
	c, err := newTrendingServices(cfg, mgr, nil).registry.RecordDownload(artifactID)
	if err != nil {
		return err
	}
	fmt.Printf("Artifact %s now has %d downloads\n", c.ArtifactID, c.Downloads)
	return nil
}

// ExecuteTrendingRate records a 1-5 star rating of an artifact.
func ExecuteTrendingRate(_ context.Context, cfg *contract.Config, mgr contract.CacheManager, artifactID string, stars float64) error {
	c, err := newTrendingServices(cfg, mgr, nil).registry.RecordRating(artifactID, stars)
	if err != nil {
		return err
	}
	fmt.Printf("Artifact %s is rated %.2f from %d ratings\n", c.ArtifactID, c.Rating, c.RatingCount)
	return nil
}

// ExecuteTrendingComment counts one comment on an artifact.
func ExecuteTrendingComment(_ context.Context, cfg *contract.Config, mgr contract.CacheManager, artifactID string) error {
	c, err := newTrendingServices(cfg, mgr, nil).registry.RecordComment(artifactID)
	if err != nil {
		return err
	}
	fmt.Printf("Artifact %s now has %d comments\n", c.ArtifactID, c.CommentCount)
	return nil
}

// ExecuteTrendingFeature adds an artifact to the featured list as cfg.User.
func ExecuteTrendingFeature(_ context.Context, cfg *contract.Config, mgr contract.CacheManager, artifactID string) error {
	if err := newTrendingServices(cfg, mgr, nil).featured.Feature(cfg.User, artifactID); err != nil {
		return err
	}
	fmt.Printf("Featured artifact %s\n", artifactID)
	return nil
}

// ExecuteTrendingUnfeature removes an artifact from the featured list as cfg.User.
func ExecuteTrendingUnfeature(_ context.Context, cfg *contract.Config, mgr contract.CacheManager, artifactID string) error {
	if err := newTrendingServices(cfg, mgr, nil).featured.Unfeature(cfg.User, artifactID); err != nil {
		return err
	}
	fmt.Printf("Unfeatured artifact %s\n", artifactID)
	return nil
}

// ExecuteTrendingFeatured prints the featured list.
func ExecuteTrendingFeatured(_ context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	entries, err := newTrendingServices(cfg, mgr, nil).featured.List()
	if err != nil {
		return err
	}
	return writer.WriteFeatured(entries, cfg)
}

package core

import (
	"errors"
	"fmt"
	"sort"

	"github.com/huangsam/pulse/internal/contract"
	"github.com/huangsam/pulse/schema"
)

// artifactsDocument is the name of the document holding engagement counters.
const artifactsDocument = "artifacts"

// artifactsState is the persisted shape of the artifact registry.
type artifactsState struct {
	Artifacts map[string]schema.EngagementCounters `json:"artifacts"`
}

// ArtifactRegistry keeps engagement counters of community artifacts and
// invalidates the trending cache whenever they change.
type ArtifactRegistry struct {
	store    contract.DocumentStore
	trending *TrendingCalculator
	clock    contract.Clock
}

// NewArtifactRegistry creates a registry persisted in store.
func NewArtifactRegistry(store contract.DocumentStore, trending *TrendingCalculator, clock contract.Clock) *ArtifactRegistry {
	if clock == nil {
		clock = contract.SystemClock{}
	}
	return &ArtifactRegistry{store: store, trending: trending, clock: clock}
}

func (r *ArtifactRegistry) load() (artifactsState, error) {
	state := artifactsState{}
	if err := r.store.Load(artifactsDocument, &state); err != nil && !errors.Is(err, contract.ErrNotFound) {
		return state, err
	}
	if state.Artifacts == nil {
		state.Artifacts = map[string]schema.EngagementCounters{}
	}
	return state, nil
}

// save persists state and drops cached rankings.
func (r *ArtifactRegistry) save(state artifactsState) error {
	if err := r.store.Save(artifactsDocument, state); err != nil {
		return err
	}
	if r.trending != nil {
		return r.trending.Invalidate()
	}
	return nil
}

// List returns all artifacts ordered by ID.
func (r *ArtifactRegistry) List() ([]schema.EngagementCounters, error) {
	state, err := r.load()
	if err != nil {
		return nil, err
	}
	out := make([]schema.EngagementCounters, 0, len(state.Artifacts))
	for _, c := range state.Artifacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArtifactID < out[j].ArtifactID })
	return out, nil
}

// Register adds an artifact or replaces its counters.
func (r *ArtifactRegistry) Register(c schema.EngagementCounters) error {
	if c.ArtifactID == "" {
		return fmt.Errorf("artifact id is required")
	}
	state, err := r.load()
	if err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.clock.Now().UTC()
	}
	state.Artifacts[c.ArtifactID] = c
	return r.save(state)
}

// update applies fn to an existing artifact and stamps its activity time.
func (r *ArtifactRegistry) update(id string, fn func(*schema.EngagementCounters) error) (schema.EngagementCounters, error) {
	state, err := r.load()
	if err != nil {
		return schema.EngagementCounters{}, err
	}
	c, ok := state.Artifacts[id]
	if !ok {
		return schema.EngagementCounters{}, fmt.Errorf("artifact %s: %w", id, contract.ErrNotFound)
	}
	if err := fn(&c); err != nil {
		return schema.EngagementCounters{}, err
	}
	c.LastActivityAt = r.clock.Now().UTC()
	state.Artifacts[id] = c
	return c, r.save(state)
}

// RecordDownload counts one download.
func (r *ArtifactRegistry) RecordDownload(id string) (schema.EngagementCounters, error) {
	return r.update(id, func(c *schema.EngagementCounters) error {
		c.Downloads++
		return nil
	})
}

// RecordRating folds a 1-5 star rating into the running average.
func (r *ArtifactRegistry) RecordRating(id string, stars float64) (schema.EngagementCounters, error) {
	if stars < 1 || stars > 5 {
		return schema.EngagementCounters{}, fmt.Errorf("rating must be between 1 and 5 (received %g)", stars)
	}
	return r.update(id, func(c *schema.EngagementCounters) error {
		c.Rating = (c.Rating*float64(c.RatingCount) + stars) / float64(c.RatingCount+1)
		c.RatingCount++
		return nil
	})
}

// RecordComment counts one comment.
func (r *ArtifactRegistry) RecordComment(id string) (schema.EngagementCounters, error) {
	return r.update(id, func(c *schema.EngagementCounters) error {
		c.CommentCount++
		return nil
	})
}

package schema

import "time"

// EngagementCounters are the raw engagement numbers of a community artifact.
type EngagementCounters struct {
	ArtifactID     string    `json:"artifact_id" yaml:"artifact_id"`
	Name           string    `json:"name" yaml:"name"`
	Downloads      int       `json:"downloads" yaml:"downloads"`
	Rating         float64   `json:"rating" yaml:"rating"` // 1-5 stars, 0 if unrated
	RatingCount    int       `json:"rating_count" yaml:"rating_count"`
	CommentCount   int       `json:"comment_count" yaml:"comment_count"`
	CreatedAt      time.Time `json:"created_at" yaml:"created_at"`
	LastActivityAt time.Time `json:"last_activity_at,omitzero" yaml:"last_activity_at,omitempty"`
}

// ActivityTime returns the last activity time, falling back to the creation time.
func (c EngagementCounters) ActivityTime() time.Time {
	if c.LastActivityAt.IsZero() {
		return c.CreatedAt
	}
	return c.LastActivityAt
}

// ComponentScores are the normalized [0,1] parts of a trending score.
type ComponentScores struct {
	Download float64 `json:"download" yaml:"download"`
	Rating   float64 `json:"rating" yaml:"rating"`
	Comment  float64 `json:"comment" yaml:"comment"`
	Recency  float64 `json:"recency" yaml:"recency"`
}

// TrendingScore is the composite ranking of one artifact.
type TrendingScore struct {
	ArtifactID      string          `json:"artifact_id" yaml:"artifact_id"`
	Name            string          `json:"name" yaml:"name"`
	TotalScore      float64         `json:"total_score" yaml:"total_score"`
	ComponentScores ComponentScores `json:"component_scores" yaml:"component_scores"`
	Rank            int             `json:"rank" yaml:"rank"`
	Trend           Trend           `json:"trend" yaml:"trend"`
}

// FeaturedEntry is a manually curated artifact on the featured list.
type FeaturedEntry struct {
	ArtifactID string    `json:"artifact_id" yaml:"artifact_id"`
	FeaturedBy string    `json:"featured_by" yaml:"featured_by"`
	FeaturedAt time.Time `json:"featured_at" yaml:"featured_at"`
}

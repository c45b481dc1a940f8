package algo

import (
	"math"
	"time"

	"github.com/huangsam/pulse/schema"
)

// Trending component weights. They sum to 1 so the total stays within 0-100.
const (
	wDownload = 0.40
	wRating   = 0.30
	wComment  = 0.20
	wRecency  = 0.10
)

// Tunable saturation points for the log-scaled components.
const (
	maxDownloads   = 1000.0 // downloads beyond this saturate
	maxComments    = 100.0  // comments beyond this saturate
	fullRatingVote = 10.0   // rating count at which the rating is fully trusted
	recencyDays    = 30.0   // e-folding time of the recency decay
)

// Trend label cut-offs on the recency component.
const (
	risingRecency    = 0.8
	decliningRecency = 0.3
)

// ScoreArtifact computes the composite trending score of one artifact at now.
// Rank is left at 0 for RankTrending to fill in.
func ScoreArtifact(c schema.EngagementCounters, now time.Time) schema.TrendingScore {
	components := schema.ComponentScores{
		Download: logScale(float64(c.Downloads), maxDownloads),
		Rating:   Clamp01((c.Rating-1)/4) * Clamp01(float64(c.RatingCount)/fullRatingVote),
		Comment:  logScale(float64(c.CommentCount), maxComments),
		Recency:  recencyScore(c.CreatedAt, now),
	}

	raw := wDownload*components.Download +
		wRating*components.Rating +
		wComment*components.Comment +
		wRecency*components.Recency

	return schema.TrendingScore{
		ArtifactID:      c.ArtifactID,
		Name:            c.Name,
		TotalScore:      Clamp01(raw) * 100,
		ComponentScores: components,
		Trend:           TrendLabel(components.Recency),
	}
}

// TrendLabel classifies the recency component. It is a presentation
// heuristic over age alone and does not measure engagement velocity.
func TrendLabel(recency float64) schema.Trend {
	switch {
	case recency > risingRecency:
		return schema.RisingTrend
	case recency < decliningRecency:
		return schema.DecliningTrend
	default:
		return schema.StableTrend
	}
}

// logScale returns min(1, ln(v+1)/ln(max+1)); negative counts score 0.
func logScale(v, limit float64) float64 {
	if v <= 0 {
		return 0
	}
	return Clamp01(math.Log1p(v) / math.Log1p(limit))
}

// recencyScore decays as e^(-age/30 days). Creation times in the future count as age 0.
func recencyScore(createdAt, now time.Time) float64 {
	ageDays := now.Sub(createdAt).Hours() / 24
	if ageDays < 0 {
		ageDays = 0
	}
	return Clamp01(math.Exp(-ageDays / recencyDays))
}

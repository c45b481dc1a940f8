package algo

import (
	"sort"

	"github.com/huangsam/pulse/schema"
)

// RankTrending sorts scores by total score in descending order, breaking ties
// by artifact ID, and assigns 1-based ranks. The slice is sorted in place.
func RankTrending(scores []schema.TrendingScore) []schema.TrendingScore {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].TotalScore != scores[j].TotalScore {
			return scores[i].TotalScore > scores[j].TotalScore
		}
		return scores[i].ArtifactID < scores[j].ArtifactID
	})
	for i := range scores {
		scores[i].Rank = i + 1
	}
	return scores
}

// TopTrending returns at most limit scores. A non-positive limit keeps all of them.
func TopTrending(scores []schema.TrendingScore, limit int) []schema.TrendingScore {
	if limit > 0 && len(scores) > limit {
		return scores[:limit]
	}
	return scores
}

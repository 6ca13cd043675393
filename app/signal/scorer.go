package signal

import (
	"math"
	"sort"
)

// Scorer converts an already-filtered batch into a descending-ranked list
// of scored posts. Normalization is batch-relative: each influence and
// engagement value is log-normalized against the maximum observed in the
// current batch, so scores are not comparable across batches.
type Scorer struct {
	registry         *Registry
	influenceWeight  float64
	engagementWeight float64
}

// NewScorer builds a scorer sharing the filter pipeline's registry (needed
// to re-derive maintainer signal counts for the boost).
func NewScorer(registry *Registry, influenceWeight, engagementWeight float64) *Scorer {
	return &Scorer{
		registry:         registry,
		influenceWeight:  influenceWeight,
		engagementWeight: engagementWeight,
	}
}

// ScoreBatch scores the whole batch and returns it sorted descending by
// final score. Ties keep the original relative order (stable sort). An
// empty batch returns an empty result without computing norms.
func (s *Scorer) ScoreBatch(posts []*Post) []*ScoredPost {
	if len(posts) == 0 {
		return nil
	}

	maxInfluence := 0.0
	maxEngagement := 0.0
	for _, post := range posts {
		if v := float64(post.Followers); v > maxInfluence {
			maxInfluence = v
		}
		if v := float64(post.Engagement()); v > maxEngagement {
			maxEngagement = v
		}
	}

	scored := make([]*ScoredPost, 0, len(posts))
	for _, post := range posts {
		influenceNorm := log10Norm(float64(post.Followers), maxInfluence)
		engagementNorm := log10Norm(float64(post.Engagement()), maxEngagement)

		painFactor := painFactor(len(post.PainCategories))
		sentimentFactor := 1.0 + math.Abs(post.Sentiment)
		maintainerBoost := s.maintainerBoost(post)

		base := s.influenceWeight*influenceNorm + s.engagementWeight*engagementNorm

		copied := *post
		copied.FinalScore = base * painFactor * sentimentFactor * maintainerBoost

		scored = append(scored, &ScoredPost{
			Post:            copied,
			InfluenceNorm:   influenceNorm,
			EngagementNorm:  engagementNorm,
			PainFactor:      painFactor,
			SentimentFactor: sentimentFactor,
			MaintainerBoost: maintainerBoost,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})
	return scored
}

// log10Norm is log10(value+1) / log10(max+1), clamped to [0, 1]. A
// non-positive maximum yields 0.
func log10Norm(value, maxValue float64) float64 {
	if maxValue <= 0 {
		return 0
	}
	denom := math.Log10(maxValue + 1)
	if denom == 0 {
		return 0
	}
	result := math.Log10(value+1) / denom
	return math.Max(0, math.Min(1, result))
}

// painFactor is 1.0 for one matched category, 1.2 for 2-3, 1.5 for 4+.
func painFactor(categories int) float64 {
	switch {
	case categories >= 4:
		return 1.5
	case categories >= 2:
		return 1.2
	default:
		return 1.0
	}
}

// maintainerBoost is 1.25 when the post carries at least two distinct
// maintainer signals, else 1.0.
func (s *Scorer) maintainerBoost(post *Post) float64 {
	if !post.IsMaintainer {
		return 1.0
	}
	if s.registry.CountSignals(post.Text()) >= 2 {
		return 1.25
	}
	return 1.0
}

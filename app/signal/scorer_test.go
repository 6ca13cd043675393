package signal

import (
	"testing"
)

func scoredPost(title string, followers, upvotes, comments int, categories []PainCategory, sentiment float64) *Post {
	post := NewPost("https://example.com/"+title, title, "", "hackernews", "alice")
	post.Followers = followers
	post.Upvotes = upvotes
	post.Comments = comments
	post.PainCategories = categories
	post.Sentiment = sentiment
	return post
}

func TestScorer_ScoreBatch_Empty(t *testing.T) {
	scorer := NewScorer(NewRegistry(), 0.4, 0.6)

	if result := scorer.ScoreBatch(nil); result != nil {
		t.Errorf("Expected nil result for empty batch, got %v", result)
	}
}

func TestScorer_ScoreBatch_DescendingOrder(t *testing.T) {
	scorer := NewScorer(NewRegistry(), 0.4, 0.6)

	posts := []*Post{
		scoredPost("low", 10, 5, 2, []PainCategory{CategoryBurnout}, -0.1),
		scoredPost("high", 5000, 800, 300, []PainCategory{CategoryBurnout}, -0.1),
		scoredPost("mid", 200, 50, 20, []PainCategory{CategoryBurnout}, -0.1),
	}

	result := scorer.ScoreBatch(posts)

	if len(result) != 3 {
		t.Fatalf("Expected 3 scored posts, got %d", len(result))
	}
	for i := 1; i < len(result); i++ {
		if result[i].FinalScore > result[i-1].FinalScore {
			t.Errorf("Batch not sorted descending at position %d: %v > %v",
				i, result[i].FinalScore, result[i-1].FinalScore)
		}
	}
	if result[0].Title != "high" || result[2].Title != "low" {
		t.Errorf("Expected high..low ordering, got %s..%s", result[0].Title, result[2].Title)
	}
}

func TestScorer_NormsWithinUnitInterval(t *testing.T) {
	scorer := NewScorer(NewRegistry(), 0.4, 0.6)

	posts := []*Post{
		scoredPost("a", 0, 0, 0, []PainCategory{CategoryBurnout}, -0.2),
		scoredPost("b", 123456, 9999, 5000, []PainCategory{CategoryBurnout}, -0.2),
		scoredPost("c", 42, 17, 3, []PainCategory{CategoryBurnout}, -0.2),
	}

	for _, sp := range scorer.ScoreBatch(posts) {
		if sp.InfluenceNorm < 0 || sp.InfluenceNorm > 1 {
			t.Errorf("Influence norm out of [0,1] for %s: %v", sp.Title, sp.InfluenceNorm)
		}
		if sp.EngagementNorm < 0 || sp.EngagementNorm > 1 {
			t.Errorf("Engagement norm out of [0,1] for %s: %v", sp.Title, sp.EngagementNorm)
		}
	}
}

func TestScorer_SinglePostBatchNorms(t *testing.T) {
	scorer := NewScorer(NewRegistry(), 0.4, 0.6)

	// The sole post defines the batch maximum, so its norms are exactly 1.
	result := scorer.ScoreBatch([]*Post{
		scoredPost("solo", 100, 40, 10, []PainCategory{CategoryBurnout}, -0.1),
	})

	if result[0].InfluenceNorm != 1.0 {
		t.Errorf("Expected influence norm 1.0 for batch maximum, got %v", result[0].InfluenceNorm)
	}
	if result[0].EngagementNorm != 1.0 {
		t.Errorf("Expected engagement norm 1.0 for batch maximum, got %v", result[0].EngagementNorm)
	}
}

func TestScorer_AllZeroMetrics(t *testing.T) {
	scorer := NewScorer(NewRegistry(), 0.4, 0.6)

	result := scorer.ScoreBatch([]*Post{
		scoredPost("zero", 0, 0, 0, []PainCategory{CategoryBurnout}, -0.1),
	})

	if result[0].InfluenceNorm != 0 || result[0].EngagementNorm != 0 {
		t.Errorf("Zero metrics should normalize to 0, got %v/%v",
			result[0].InfluenceNorm, result[0].EngagementNorm)
	}
	if result[0].FinalScore != 0 {
		t.Errorf("Zero base should yield a zero final score, got %v", result[0].FinalScore)
	}
}

func TestScorer_PainFactorThresholds(t *testing.T) {
	cases := []struct {
		categories int
		expected   float64
	}{
		{0, 1.0},
		{1, 1.0},
		{2, 1.2},
		{3, 1.2},
		{4, 1.5},
		{7, 1.5},
	}

	for _, tc := range cases {
		if got := painFactor(tc.categories); got != tc.expected {
			t.Errorf("painFactor(%d) = %v, expected %v", tc.categories, got, tc.expected)
		}
	}
}

func TestScorer_SentimentFactor(t *testing.T) {
	scorer := NewScorer(NewRegistry(), 0.4, 0.6)

	result := scorer.ScoreBatch([]*Post{
		scoredPost("p", 100, 40, 10, []PainCategory{CategoryBurnout}, -0.8),
	})

	want := 1.0 + 0.8
	if result[0].SentimentFactor != want {
		t.Errorf("Expected sentiment factor %v, got %v", want, result[0].SentimentFactor)
	}
}

func TestScorer_MaintainerBoost(t *testing.T) {
	scorer := NewScorer(NewRegistry(), 0.4, 0.6)

	strong := scoredPost("strong", 100, 40, 10, []PainCategory{CategoryBurnout}, -0.1)
	strong.Body = "I maintain my project and it is exhausting"
	strong.IsMaintainer = true

	weak := scoredPost("weak", 100, 40, 10, []PainCategory{CategoryBurnout}, -0.1)
	weak.Body = "I maintain this thing"
	weak.IsMaintainer = true

	none := scoredPost("none", 100, 40, 10, []PainCategory{CategoryBurnout}, -0.1)
	none.Body = "I maintain my project and it is exhausting"
	none.IsMaintainer = false

	result := scorer.ScoreBatch([]*Post{strong, weak, none})

	boosts := make(map[string]float64, len(result))
	for _, sp := range result {
		boosts[sp.Title] = sp.MaintainerBoost
	}

	if boosts["strong"] != 1.25 {
		t.Errorf("Two maintainer signals should earn the 1.25 boost, got %v", boosts["strong"])
	}
	if boosts["weak"] != 1.0 {
		t.Errorf("A single maintainer signal earns no boost, got %v", boosts["weak"])
	}
	if boosts["none"] != 1.0 {
		t.Errorf("Non-maintainer posts earn no boost, got %v", boosts["none"])
	}
}

func TestScorer_MoreCategoriesScoreHigher(t *testing.T) {
	scorer := NewScorer(NewRegistry(), 0.4, 0.6)

	one := scoredPost("one", 100, 40, 10, []PainCategory{CategoryBurnout}, -0.1)
	four := scoredPost("four", 100, 40, 10,
		[]PainCategory{CategoryBurnout, CategoryFunding, CategoryAbuse, CategoryCICD}, -0.1)

	result := scorer.ScoreBatch([]*Post{one, four})

	if result[0].Title != "four" {
		t.Errorf("Post with more categories should rank first, got %s", result[0].Title)
	}
	if result[0].FinalScore <= result[1].FinalScore {
		t.Errorf("Expected strictly higher score for more categories: %v vs %v",
			result[0].FinalScore, result[1].FinalScore)
	}
}

package signal

// SentimentThreshold is the strict upper bound a combined sentiment score
// must stay below for a post to count as a pain signal.
const SentimentThreshold = -0.05

// Pipeline composes the three filter gates: keyword, maintainer context,
// sentiment. A post must pass all three, in order, to reach the scorer.
// Gates enrich surviving posts in place and never reorder them.
type Pipeline struct {
	registry      *Registry
	vader         SentimentBackend
	lexicon       SentimentBackend
	vaderWeight   float64
	lexiconWeight float64
}

// NewPipeline builds a pipeline around a shared registry. Either sentiment
// backend may be nil; a nil backend contributes 0.0 to the combined score.
func NewPipeline(registry *Registry, vader, lexicon SentimentBackend, vaderWeight, lexiconWeight float64) *Pipeline {
	return &Pipeline{
		registry:      registry,
		vader:         vader,
		lexicon:       lexicon,
		vaderWeight:   vaderWeight,
		lexiconWeight: lexiconWeight,
	}
}

// Run applies all three gates and returns the survivors in input order.
// An empty batch returns an empty result.
func (p *Pipeline) Run(posts []*Post) []*Post {
	passed, _ := p.RunPartial(posts)
	return passed
}

// RunPartial applies all three gates and additionally returns the posts
// that passed the keyword gate but were dropped by a later one. Those
// partial posts keep their keyword enrichment and serve as last-resort
// backfill candidates.
func (p *Pipeline) RunPartial(posts []*Post) (passed, partial []*Post) {
	afterKeyword := p.applyKeywordGate(posts)
	afterMaintainer := p.applyMaintainerGate(afterKeyword)
	passed = p.applySentimentGate(afterMaintainer)

	kept := make(map[*Post]bool, len(passed))
	for _, post := range passed {
		kept[post] = true
	}
	for _, post := range afterKeyword {
		if !kept[post] {
			partial = append(partial, post)
		}
	}

	return passed, partial
}

// applyKeywordGate keeps posts matching at least one keyword across all
// categories and records the matched categories and summed weight on the
// post. Dropped posts are left untouched.
func (p *Pipeline) applyKeywordGate(posts []*Post) []*Post {
	passing := make([]*Post, 0, len(posts))
	for _, post := range posts {
		hits := p.registry.CountKeywordHits(post.Text())
		if len(hits) == 0 {
			continue
		}
		categories := make([]PainCategory, 0, len(hits))
		total := 0.0
		for _, category := range AllCategories {
			if weight, ok := hits[category]; ok {
				categories = append(categories, category)
				total += weight
			}
		}
		post.PainCategories = categories
		post.PainScore = total
		passing = append(passing, post)
	}
	return passing
}

// applyMaintainerGate keeps posts with at least one maintainer-context
// signal, via either the phrase patterns or the author/GitHub-URL check.
func (p *Pipeline) applyMaintainerGate(posts []*Post) []*Post {
	passing := make([]*Post, 0, len(posts))
	for _, post := range posts {
		if !p.registry.HasMaintainerSignal(post.Text(), post.Author) {
			continue
		}
		post.IsMaintainer = true
		passing = append(passing, post)
	}
	return passing
}

// applySentimentGate stores the combined sentiment on every post and keeps
// only those scoring strictly below the threshold.
func (p *Pipeline) applySentimentGate(posts []*Post) []*Post {
	passing := make([]*Post, 0, len(posts))
	for _, post := range posts {
		combined := p.CombinedScore(post.Text())
		post.Sentiment = combined
		if combined < SentimentThreshold {
			passing = append(passing, post)
		}
	}
	return passing
}

// CombinedScore returns the weighted sum of both backend scores. Missing
// backends contribute zero rather than an error.
func (p *Pipeline) CombinedScore(text string) float64 {
	combined := 0.0
	if p.vader != nil {
		combined += p.vaderWeight * clampUnit(p.vader.Score(text))
	}
	if p.lexicon != nil {
		combined += p.lexiconWeight * clampUnit(p.lexicon.Score(text))
	}
	return combined
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

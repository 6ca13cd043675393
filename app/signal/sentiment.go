package signal

import (
	"strings"

	"github.com/jonreiter/govader"
)

// SentimentBackend scores free text in [-1, 1]; negative values indicate
// pain. Backends are injected into the sentiment gate so a missing or
// broken analyzer degrades to a zero contribution instead of failing the
// pipeline.
type SentimentBackend interface {
	Score(text string) float64
}

// VaderBackend wraps the govader intensity analyzer and reports its
// compound score.
type VaderBackend struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderBackend() *VaderBackend {
	return &VaderBackend{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (b *VaderBackend) Score(text string) float64 {
	if b == nil || b.analyzer == nil {
		return 0
	}
	return b.analyzer.PolarityScores(text).Compound
}

// LexiconBackend is a small polarity lexicon averaged over matched tokens,
// filling the second sentiment slot alongside VADER. Polarity values are
// in [-1, 1] per word; the text score is the mean polarity of the words
// found, or 0 when none match.
type LexiconBackend struct {
	polarity map[string]float64
}

var lexiconPolarity = map[string]float64{
	"abandoned":   -0.6,
	"angry":       -0.7,
	"awful":       -1.0,
	"broken":      -0.6,
	"burnout":     -0.8,
	"crash":       -0.5,
	"disaster":    -0.9,
	"exhausted":   -0.8,
	"fail":        -0.6,
	"failed":      -0.6,
	"failing":     -0.6,
	"frustrated":  -0.7,
	"frustrating": -0.7,
	"hate":        -0.8,
	"horrible":    -1.0,
	"hostile":     -0.7,
	"impossible":  -0.5,
	"miserable":   -0.9,
	"nightmare":   -0.9,
	"painful":     -0.7,
	"quit":        -0.5,
	"sick":        -0.6,
	"terrible":    -1.0,
	"tired":       -0.5,
	"toxic":       -0.8,
	"unusable":    -0.7,
	"useless":     -0.7,
	"worst":       -1.0,
	"wrong":       -0.4,

	"amazing":   0.8,
	"awesome":   0.9,
	"excellent": 0.9,
	"fantastic": 0.9,
	"glad":      0.6,
	"good":      0.5,
	"great":     0.7,
	"happy":     0.7,
	"love":      0.8,
	"perfect":   0.9,
	"solid":     0.4,
	"stable":    0.4,
	"thanks":    0.5,
	"wonderful": 0.9,
}

func NewLexiconBackend() *LexiconBackend {
	return &LexiconBackend{polarity: lexiconPolarity}
}

func (b *LexiconBackend) Score(text string) float64 {
	if b == nil {
		return 0
	}
	total := 0.0
	matched := 0
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,!?;:'\"()[]")
		if p, ok := b.polarity[token]; ok {
			total += p
			matched++
		}
	}
	if matched == 0 {
		return 0
	}
	score := total / float64(matched)
	if score > 1 {
		score = 1
	}
	if score < -1 {
		score = -1
	}
	return score
}

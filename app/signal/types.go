package signal

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// PainCategory is one of the 15 topical tags describing a maintainer's
// expressed hardship.
type PainCategory string

const (
	CategoryBurnout               PainCategory = "burnout"
	CategoryFunding               PainCategory = "funding"
	CategoryToxicUsers            PainCategory = "toxic_users"
	CategoryMaintenanceBurden     PainCategory = "maintenance_burden"
	CategoryDependencyHell        PainCategory = "dependency_hell"
	CategorySecurityPressure      PainCategory = "security_pressure"
	CategoryBreakingChanges       PainCategory = "breaking_changes"
	CategoryDocumentation         PainCategory = "documentation"
	CategoryContributorFriction   PainCategory = "contributor_friction"
	CategoryCorporateExploitation PainCategory = "corporate_exploitation"
	CategoryScopeCreep            PainCategory = "scope_creep"
	CategoryToolingFatigue        PainCategory = "tooling_fatigue"
	CategoryGovernance            PainCategory = "governance"
	CategoryAbuse                 PainCategory = "abuse"
	CategoryCICD                  PainCategory = "ci_cd"
)

// AllCategories lists every tracked category in a fixed order.
var AllCategories = []PainCategory{
	CategoryBurnout,
	CategoryFunding,
	CategoryToxicUsers,
	CategoryMaintenanceBurden,
	CategoryDependencyHell,
	CategorySecurityPressure,
	CategoryBreakingChanges,
	CategoryDocumentation,
	CategoryContributorFriction,
	CategoryCorporateExploitation,
	CategoryScopeCreep,
	CategoryToolingFatigue,
	CategoryGovernance,
	CategoryAbuse,
	CategoryCICD,
}

// Source tiers assigned by the backfill ladder.
const (
	TierLive      = "live"
	TierArchive7d = "archive-7d"
	TierArchive30 = "archive-30d"
	TierPartial   = "partial"
)

// HashURL returns the SHA-256 hex digest of a normalized URL. The digest is
// the dedup key for posts across the whole system: lowercased, surrounding
// whitespace and trailing slashes stripped.
func HashURL(url string) string {
	normalized := strings.TrimRight(strings.ToLower(strings.TrimSpace(url)), "/")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// Post is a post fetched from one platform. Scrapers construct it via
// NewPost; the filter gates enrich it in place before scoring.
type Post struct {
	URL      string
	URLHash  string
	Title    string
	Body     string
	Platform string
	Author   string

	// Influence signal: Reddit karma, HN points of the author, etc.
	Followers int
	// Engagement signals.
	Upvotes  int
	Comments int

	Tags []string

	// Populated by the keyword gate.
	PainCategories []PainCategory
	PainScore      float64
	// Populated by the sentiment gate.
	Sentiment float64
	// Populated by the maintainer gate.
	IsMaintainer bool
	// Populated by the scorer.
	FinalScore float64

	ScrapedAt  time.Time
	CreatedUTC time.Time

	SourceTier string
}

// NewPost builds a Post with the URL hash derived from the URL.
func NewPost(url, title, body, platform, author string) *Post {
	return &Post{
		URL:        url,
		URLHash:    HashURL(url),
		Title:      title,
		Body:       body,
		Platform:   platform,
		Author:     author,
		ScrapedAt:  time.Now().UTC(),
		SourceTier: TierLive,
	}
}

// Text returns the title and body joined for pattern matching.
func (p *Post) Text() string {
	return p.Title + " " + p.Body
}

// Engagement returns the combined engagement value used for normalization.
func (p *Post) Engagement() int {
	return p.Upvotes + p.Comments
}

// ScoredPost is a Post plus the derived ranking factors. FinalScore lives on
// the embedded Post so it survives persistence. After scoring only
// SourceTier may be rewritten (by the backfill ladder).
type ScoredPost struct {
	Post

	InfluenceNorm   float64
	EngagementNorm  float64
	PainFactor      float64
	SentimentFactor float64
	MaintainerBoost float64
}

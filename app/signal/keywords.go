package signal

import (
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// weightedPattern pairs a compiled pattern with its hand-tuned severity
// weight. Weights range from 1.0 (weak hint) to 3.0 (strong signal).
type weightedPattern struct {
	re     *regexp.Regexp
	weight float64
}

// Registry maps free text to weighted pain-category matches and detects
// maintainer-context signals. All patterns are compiled once in NewRegistry
// and the registry is read-only afterwards, so a single instance can be
// shared across the filter pipeline and the scorer.
type Registry struct {
	categories map[PainCategory][]weightedPattern
	factors    map[PainCategory]float64
	maintainer []*regexp.Regexp
}

var rawPatterns = map[PainCategory][]struct {
	pattern string
	weight  float64
}{
	CategoryBurnout: {
		{`\bburnou?t\b`, 3.0},
		{`\bburnt\b`, 3.0},
		{`\bburned?\s+out\b`, 3.0},
		{`\bexhausted?\b`, 2.5},
		{`\bquitting\b`, 2.5},
		{`\bstepping down\b`, 2.5},
		{`\bgiving up\b`, 2.0},
		{`\bno longer maintain`, 3.0},
		{`\btoo tired\b`, 2.0},
		{`\bmentally drained\b`, 2.5},
		{`\bunpaid work\b`, 2.0},
		{`\bsolo maintainer\b`, 2.0},
		{`\bworn out\b`, 2.0},
		{`\boverwhel`, 2.0},
		{`\bno time\b`, 1.5},
		{`\bfree time\b`, 1.5},
	},
	CategoryFunding: {
		{`\bfunding\b`, 2.5},
		{`\bsustainab`, 2.5},
		{`\bdonat`, 2.0},
		{`\bsponsorship\b`, 2.0},
		{`\bopen collective\b`, 2.0},
		{`\bgithub sponsors\b`, 2.0},
		{`\bpatreon\b`, 1.5},
		{`\bno budget\b`, 2.5},
		{`\bunfunded\b`, 2.5},
		{`\bvolunteer work\b`, 2.0},
		{`\bfinancially\b`, 1.5},
		{`\bpaid maintainer\b`, 2.0},
		{`\bfull[ -]time oss\b`, 2.5},
		{`\bmonetary support\b`, 2.0},
	},
	CategoryToxicUsers: {
		{`\btoxic\b`, 3.0},
		{`\bharassment\b`, 3.0},
		{`\babusive user`, 3.0},
		{`\bentitled user`, 2.5},
		{`\brude\b`, 2.0},
		{`\bdisrespect`, 2.5},
		{`\binsult`, 2.0},
		{`\baggressive comment`, 2.5},
		{`\bnasty\b`, 2.0},
		{`\bdemanding user`, 2.5},
		{`\bthreat`, 2.0},
		{`\bhostile`, 2.0},
	},
	CategoryMaintenanceBurden: {
		{`\bmaintenance burden\b`, 3.0},
		{`\btoo many issues\b`, 2.0},
		{`\bpr backlog\b`, 2.5},
		{`\bpull request backlog\b`, 2.5},
		{`\bissue backlog\b`, 2.0},
		{`\blegacy code\b`, 2.0},
		{`\btechnical debt\b`, 2.5},
		{`\brefactor\b`, 1.5},
		{`\buntestable\b`, 2.0},
		{`\bhard to maintain\b`, 2.5},
		{`\bnobody reviews\b`, 2.0},
		{`\bstale pr\b`, 2.0},
		{`\bbandaid fix\b`, 1.5},
		{`\bmemory leak\b`, 2.5},
		{`\bperformance regression\b`, 2.5},
		{`\bregression\b`, 2.0},
	},
	CategoryDependencyHell: {
		{`\bdependency hell\b`, 3.0},
		{`\bdep conflict\b`, 2.5},
		{`\bdependency conflicts?\b`, 2.5},
		{`\bbroken dependency\b`, 2.5},
		{`\bupper bound\b`, 2.0},
		{`\bversion pinning\b`, 2.0},
		{`\bdiamond dependency\b`, 3.0},
		{`\btransitive dep`, 2.0},
		{`\bincompatible ver`, 2.0},
		{`\bdependabot\b`, 1.5},
		{`\brenovate\b`, 1.5},
		{`\bpeer dep`, 2.0},
		{`\b(npm|pip|cargo|maven) install fail`, 2.5},
		{`\bdependency audit\b`, 2.5},
		{`\bdependency management\b`, 2.0},
	},
	CategorySecurityPressure: {
		{`\bsecurity vulner`, 3.0},
		{`\bvulnerabilit`, 2.5},
		{`\bcve-\d{4}`, 3.0},
		{`\bsecurity patch\b`, 2.5},
		{`\bsecurity audit\b`, 2.5},
		{`\bsecurity disclosure\b`, 2.5},
		{`\bresponsible disclos`, 2.5},
		{`\bzero[ -]day\b`, 3.0},
		{`\brce\b`, 3.0},
		{`\bsecurity report\b`, 2.5},
		{`\bsupply chain attack\b`, 3.0},
		{`\bmalicious package\b`, 3.0},
		{`\btyposquat`, 2.5},
		{`\bsast\b`, 2.0},
		{`\bsnyk\b`, 1.5},
	},
	CategoryBreakingChanges: {
		{`\bbreaking changes?\b`, 3.0},
		{`\bbreaking api\b`, 2.5},
		{`\bapi breaking\b`, 2.5},
		{`\bbc\b`, 1.0},
		{`\bapi break`, 2.5},
		{`\bdeprecated\b`, 2.0},
		{`\bmajor version\b`, 2.0},
		{`\bsemver\b`, 1.5},
		{`\bbackwards? compat`, 2.5},
		{`\bremoved in v\d`, 2.5},
		{`\bremoved api\b`, 2.5},
		{`\bmigration guide\b`, 2.0},
		{`\bupgrade guide\b`, 2.0},
		{`\bno longer support`, 2.5},
	},
	CategoryDocumentation: {
		{`\bdocumentation\b`, 2.0},
		{`\bdocs are\b`, 2.0},
		{`\bpoor docs\b`, 2.5},
		{`\bno docs\b`, 3.0},
		{`\bmissing docs\b`, 2.5},
		{`\bwrong docs\b`, 2.5},
		{`\bstale docs\b`, 2.5},
		{`\bno readme\b`, 2.5},
		{`\bno example`, 2.0},
		{`\bconfusing docs\b`, 2.5},
		{`\bhard to understand\b`, 2.0},
		{`\bwhere is the docs\b`, 2.0},
		{`\bcan'?t find doc`, 2.0},
	},
	CategoryContributorFriction: {
		{`\bcontribut`, 2.0},
		{`\bfirst pr\b`, 1.5},
		{`\bno contributors\b`, 2.5},
		{`\bcontribution guide\b`, 2.0},
		{`\bhigh barrier\b`, 2.5},
		{`\bdev setup\b`, 1.5},
		{`\bdev environment\b`, 1.5},
		{`\bwelcoming community\b`, 1.5},
		{`\bignored pr\b`, 2.5},
		{`\bgood first issue\b`, 1.5},
		{`\bno review\b`, 2.0},
	},
	CategoryCorporateExploitation: {
		{`\bcorporate exploit`, 3.0},
		{`\bfree rider\b`, 2.5},
		{`\bfree[ -]riding\b`, 2.5},
		{`(?s)\bexploit.*open source\b`, 3.0},
		{`\bno contribution back\b`, 2.5},
		{`\bnot giving back\b`, 2.5},
		{`(?s)\bbig (company|corp|tech).*use\b`, 2.0},
		{`\bno upstream\b`, 2.0},
		{`(?s)\blicens.*violat`, 3.0},
		{`\bwhite[ -]label\b`, 2.0},
		{`(?s)\bsteal.*code\b`, 3.0},
	},
	CategoryScopeCreep: {
		{`\bscope creep\b`, 3.0},
		{`\bfeature creep\b`, 3.0},
		{`\btoo many features\b`, 2.5},
		{`\bbloat\b`, 2.0},
		{`\bfeature request flood\b`, 2.5},
		{`\bnot designed for\b`, 2.0},
		{`\bout of scope\b`, 2.5},
		{`\bdo one thing\b`, 1.5},
		{`\bfeature fatigue\b`, 2.5},
		{`\bunix philosophy\b`, 1.5},
	},
	CategoryToolingFatigue: {
		{`\btooling fatigue\b`, 3.0},
		{`\bbuild tool`, 1.5},
		{`\bgithub actions\b`, 1.5},
		{`\bflaky test`, 2.5},
		{`(?s)\bci.*fail`, 2.0},
		{`(?s)\bbuild.*fail`, 2.0},
		{`\bbroken build\b`, 2.5},
		{`\binfrastructure cost\b`, 2.5},
		{`\bcloud cost\b`, 2.0},
		{`\bpipeline\b`, 1.5},
		{`\btoo many tools\b`, 2.5},
		{`\bpackage manager hell\b`, 2.5},
		{`\btest coverage\b`, 2.0},
		{`\brelease process\b`, 2.0},
		{`(?s)\brelease.*pain\b`, 2.5},
	},
	CategoryGovernance: {
		{`\bgovernance\b`, 2.5},
		{`\bcode of conduct\b`, 2.0},
		{`\bproject direction\b`, 2.0},
		{`\bbenevolent dict`, 2.5},
		{`\bbdfl\b`, 2.5},
		{`\bdecision making\b`, 2.0},
		{`\bfork\b`, 1.5},
		{`\bcore team\b`, 1.5},
		{`\bsteering commit`, 2.0},
		{`\bdispute\b`, 2.0},
		{`\bcontro?vers`, 2.0},
	},
	CategoryAbuse: {
		{`\babuse\b`, 3.0},
		{`\bspam\b`, 2.5},
		{`\bbot attack\b`, 2.5},
		{`\btroll\b`, 2.5},
		{`\bmalicious\b`, 2.5},
		{`\bdmca\b`, 2.5},
		{`\bcopyright claim\b`, 2.5},
		{`(?s)\blegal.*threat\b`, 2.5},
		{`\blitigat`, 2.5},
	},
	CategoryCICD: {
		{`\bci[/ _-]?cd\b`, 2.5},
		{`\bcontinuous integrat`, 2.0},
		{`\bcontinuous deliver`, 2.0},
		{`(?s)\bpipeline.*fail`, 2.5},
		{`(?s)\bfailed.*pipeline\b`, 2.5},
		{`(?s)\bgithub actions.*fail`, 2.5},
		{`(?s)\bflaky.*ci\b`, 2.5},
		{`(?s)\bci.*broken\b`, 2.5},
		{`(?s)\bdeploy.*fail`, 2.0},
		{`(?s)\brelease.*fail`, 2.0},
		{`(?s)\btest.*fail\b`, 2.0},
		{`(?s)\bbuild.*fail\b`, 2.0},
		{`(?s)\bnightly.*fail`, 2.0},
	},
}

// Per-category base multipliers. Categories empirically correlated with
// high-value pain (burnout, abuse, security, toxicity) rank above
// lower-signal ones (tooling fatigue).
var baseFactors = map[PainCategory]float64{
	CategoryBurnout:               1.5,
	CategoryAbuse:                 1.5,
	CategorySecurityPressure:      1.4,
	CategoryToxicUsers:            1.4,
	CategoryCorporateExploitation: 1.3,
	CategoryFunding:               1.3,
	CategoryDependencyHell:        1.2,
	CategoryCICD:                  1.2,
	CategoryBreakingChanges:       1.2,
	CategoryGovernance:            1.2,
	CategoryMaintenanceBurden:     1.2,
	CategoryContributorFriction:   1.1,
	CategoryDocumentation:         1.1,
	CategoryScopeCreep:            1.1,
	CategoryToolingFatigue:        1.0,
}

// First-person ownership phrases indicating the author speaks as a
// maintainer of the project discussed, not a mere user.
var rawMaintainerPatterns = []string{
	`\bmy repo\b`,
	`\bmy project\b`,
	`\bi maintain\b`,
	`\bwe maintain\b`,
	`\bour library\b`,
	`\bi'?m the author\b`,
	`\bi released\b`,
	`\bour maintainers?\b`,
	`\bpull request\b`,
	`\bmerged\b`,
	`\bopened an issue\b`,
	`\breleased v\d`,
	`\bas (the|a) maintainer\b`,
	`\bsole maintainer\b`,
	`\bproject maintainer\b`,
	`\bi authored\b`,
	`\bmy library\b`,
	`\bmy package\b`,
	`\bmy crate\b`,
	`\bmy gem\b`,
	`\bi created\b`,
	`\bwe released\b`,
	`\bour project\b`,
	`\bour repo\b`,
	`\bwe published\b`,
	`\bi published\b`,
}

// NewRegistry compiles every keyword and maintainer pattern once. The
// returned registry is safe for concurrent use.
func NewRegistry() *Registry {
	r := &Registry{
		categories: make(map[PainCategory][]weightedPattern, len(rawPatterns)),
		factors:    baseFactors,
		maintainer: make([]*regexp.Regexp, 0, len(rawMaintainerPatterns)),
	}

	for category, patterns := range rawPatterns {
		compiled := make([]weightedPattern, 0, len(patterns))
		for _, p := range patterns {
			compiled = append(compiled, weightedPattern{
				re:     regexp.MustCompile(`(?i)` + p.pattern),
				weight: p.weight,
			})
		}
		r.categories[category] = compiled
	}

	for _, p := range rawMaintainerPatterns {
		r.maintainer = append(r.maintainer, regexp.MustCompile(`(?i)`+p))
	}

	return r
}

// CountKeywordHits sums the weights of every matching pattern per category.
// Categories with no matches are omitted from the result.
func (r *Registry) CountKeywordHits(text string) map[PainCategory]float64 {
	text = normalizeText(text)
	hits := make(map[PainCategory]float64)
	for category, patterns := range r.categories {
		total := 0.0
		for _, p := range patterns {
			if p.re.MatchString(text) {
				total += p.weight
			}
		}
		if total > 0 {
			hits[category] = total
		}
	}
	return hits
}

// CountSignals returns the number of distinct maintainer-context patterns
// matching text. The scorer uses the count for its boost calculation.
func (r *Registry) CountSignals(text string) int {
	text = normalizeText(text)
	count := 0
	for _, re := range r.maintainer {
		if re.MatchString(text) {
			count++
		}
	}
	return count
}

// HasMaintainerSignal reports whether text carries any maintainer-context
// signal. Besides the phrase patterns, an author handle appearing as a
// GitHub URL path component (github.com/<author>/) counts as a signal.
func (r *Registry) HasMaintainerSignal(text, author string) bool {
	text = normalizeText(text)
	for _, re := range r.maintainer {
		if re.MatchString(text) {
			return true
		}
	}
	if author != "" {
		authorURL := regexp.MustCompile(`(?i)github\.com/` + regexp.QuoteMeta(author) + `/`)
		if authorURL.MatchString(text) {
			return true
		}
	}
	return false
}

// BaseFactor returns the static multiplier for a category, or 1.0 for an
// unknown one.
func (r *Registry) BaseFactor(category PainCategory) float64 {
	if f, ok := r.factors[category]; ok {
		return f
	}
	return 1.0
}

// normalizeText applies Unicode NFC normalization so that visually identical
// text matches the same patterns regardless of how the platform encoded it.
func normalizeText(text string) string {
	return norm.NFC.String(text)
}

package enrich

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/blackwell-systems/contentlens/internal/catalog"
	"github.com/blackwell-systems/contentlens/internal/scoring"
)

var (
	benefitWords = []string{"improve", "enhance", "better", "perfect", "ideal", "excellent", "superior"}
	casualWords  = []string{"awesome", "cool", "super", "amazing"}
)

// qualityStage scores the current working copy. It never rewrites fields.
type qualityStage struct{}

func (qualityStage) ID() PassID { return QualityScoring }

func (qualityStage) Apply(p *catalog.ProductRecord, env Env) (Outcome, error) {
	var out Outcome
	cfg := env.Config

	if p.Title != "" {
		q := titleQuality(p.Title, cfg.SEOKeywords)
		out.metric("title_quality", q)
		if q < cfg.threshold("title_quality") {
			out.suggest("Title quality could be improved - consider adding more descriptive keywords")
		}
	}

	if p.Description != "" {
		q := descriptionQuality(p.Description, cfg.SEOKeywords)
		out.metric("description_quality", q)
		if q < cfg.threshold("description_quality") {
			out.suggest("Description quality could be improved - add more details and benefits")
		}
	}

	c := scoring.GradedCompleteness(p)
	out.metric("completeness_score", c)
	if c < cfg.threshold("completeness_score") {
		out.suggest("Product information is incomplete - consider adding missing fields")
	}

	if cfg.BrandGuidelines.Configured() {
		b := brandCompliance(p, cfg.BrandGuidelines)
		out.metric("brand_compliance", b)
		if b < cfg.threshold("brand_compliance") {
			out.suggest("Content may not fully comply with brand guidelines")
		}
	}

	sum := 0.0
	for _, v := range out.Metrics {
		sum += v
	}
	out.metric("overall_quality", sum/float64(len(out.Metrics)))
	return out, nil
}

// titleQuality scores a title out of 100.
//
// Scoring breakdown:
//   - Length:      30 (30-60 chars), 20 (20-29 or 61-80), else 10
//   - Word count:  25 (4-8 words), 15 (3 or 9-10), else 5
//   - Keywords:    8 per configured keyword found, max 25; 15 when none configured
//   - Capitalized: 10
//   - At most one "!" and one "?": 10
func titleQuality(title string, seo []string) float64 {
	if title == "" {
		return 0
	}
	score := 0.0

	switch n := runeLen(title); {
	case n >= 30 && n <= 60:
		score += 30
	case (n >= 20 && n < 30) || (n > 60 && n <= 80):
		score += 20
	default:
		score += 10
	}

	switch n := len(strings.Fields(title)); {
	case n >= 4 && n <= 8:
		score += 25
	case n == 3 || (n > 8 && n <= 10):
		score += 15
	default:
		score += 5
	}

	if len(seo) > 0 {
		matches := 0
		for _, kw := range seo {
			if kw != "" && containsFold(title, kw) {
				matches++
			}
		}
		score += min(25, float64(matches)*8)
	} else {
		score += 15
	}

	if r, _ := utf8.DecodeRuneInString(title); unicode.IsUpper(r) {
		score += 10
	}
	if strings.Count(title, "!") <= 1 && strings.Count(title, "?") <= 1 {
		score += 10
	}
	return min(100, score)
}

// descriptionQuality scores a description out of 100.
//
// Scoring breakdown:
//   - Length:          25 (150-300 chars), 20 (100-149 or 301-500), else 10
//   - Sentences:       20 (2-5), else 10
//   - Keyword density: 20 (0.01-0.03), 10 (any), else 0
//   - Readability:     20 (60+), 15 (40+), else 5
//   - Benefit words:   3 each, max 15
func descriptionQuality(desc string, seo []string) float64 {
	if desc == "" {
		return 0
	}
	score := 0.0

	switch n := runeLen(desc); {
	case n >= 150 && n <= 300:
		score += 25
	case (n >= 100 && n < 150) || (n > 300 && n <= 500):
		score += 20
	default:
		score += 10
	}

	if n := len(sentences(desc)); n >= 2 && n <= 5 {
		score += 20
	} else {
		score += 10
	}

	switch d := keywordDensity(desc, seo); {
	case d >= 0.01 && d <= 0.03:
		score += 20
	case d > 0:
		score += 10
	}

	switch r := readability(desc); {
	case r >= 60:
		score += 20
	case r >= 40:
		score += 15
	default:
		score += 5
	}

	lower := strings.ToLower(desc)
	benefits := 0
	for _, w := range benefitWords {
		if strings.Contains(lower, w) {
			benefits++
		}
	}
	score += min(15, float64(benefits)*3)
	return min(100, score)
}

// brandCompliance starts at 100 and deducts 20 for a missing required
// mention, 10 per forbidden word, and 5 per casual word under a
// professional tone.
func brandCompliance(p *catalog.ProductRecord, g BrandGuidelines) float64 {
	text := strings.ToLower(p.Title + " " + p.Description)
	score := 100.0

	if g.RequiredBrandMention != "" && !strings.Contains(text, strings.ToLower(g.RequiredBrandMention)) {
		score -= 20
	}
	for _, w := range g.ForbiddenWords {
		if w != "" && strings.Contains(text, strings.ToLower(w)) {
			score -= 10
		}
	}
	if strings.EqualFold(g.Tone, "professional") {
		for _, w := range casualWords {
			if strings.Contains(text, w) {
				score -= 5
			}
		}
	}
	return max(0, score)
}

package enrich

import (
	"sort"
	"strings"

	"github.com/blackwell-systems/contentlens/internal/catalog"
)

const (
	channelTitleMax    = 200
	channelTitleFill   = 150
	channelAttrMax     = 3
	searchTermsMax     = 250
	searchTermCountMax = 20
)

var (
	channelTitleAttributes  = []string{"color", "size", "model", "pack_size", "quantity"}
	channelBulletAttributes = []string{"material", "dimensions", "weight", "warranty", "compatibility"}
)

// channelStage derives marketplace listing fields and scores them against
// the signals an A9-style ranking uses.
type channelStage struct{}

func (channelStage) ID() PassID { return ChannelOptimization }

func (channelStage) Apply(p *catalog.ProductRecord, env Env) (Outcome, error) {
	var out Outcome

	if p.Title != "" {
		if t := channelTitle(p); t != p.Title {
			p.Attributes["marketplace_title"] = t
			out.metric("marketplace_title_length", float64(runeLen(t)))
			out.suggest("Created marketplace-optimized title")
		}
	}

	if bullets := channelBullets(p); len(bullets) > 0 {
		p.Attributes["marketplace_bullet_points"] = strings.Join(bullets, "\n")
		out.metric("marketplace_bullet_count", float64(len(bullets)))
		out.suggest("Generated marketplace-style bullet points")
	}

	if terms := searchTerms(p); terms != "" {
		p.Attributes["marketplace_search_terms"] = terms
		out.suggest("Generated marketplace backend search terms")
	}

	score := a9Score(p)
	out.metric("marketplace_a9_score", score)
	if score < env.Config.threshold("marketplace_a9_score") {
		out.suggest("Marketplace A9 optimization score: %.1f/100 - Consider improving keywords and content", score)
	}
	return out, nil
}

// channelTitle is brand, then the title without the brand, then up to three
// listing attributes while the title is under 150 characters.
func channelTitle(p *catalog.ProductRecord) string {
	var parts []string
	if p.Brand != "" {
		parts = append(parts, p.Brand)
	}
	if p.Title != "" {
		clean := p.Title
		if p.Brand != "" && containsFold(clean, p.Brand) {
			clean = strings.TrimSpace(strings.ReplaceAll(clean, p.Brand, ""))
		}
		parts = append(parts, clean)
	}
	added := 0
	for _, key := range channelTitleAttributes {
		if added == channelAttrMax {
			break
		}
		if v, ok := p.Attributes[key]; ok && runeLen(strings.Join(parts, " ")) < channelTitleFill {
			parts = append(parts, v)
			added++
		}
	}
	return truncate(strings.Join(parts, " "), channelTitleMax)
}

// channelBullets takes up to three description sentences, then priority
// attributes, and backfills with category and brand lines when fewer than
// three exist.
func channelBullets(p *catalog.ProductRecord) []string {
	var bullets []string
	if p.Description != "" {
		parts := strings.Split(p.Description, ".")
		for _, s := range parts[:min(3, len(parts))] {
			if s = strings.TrimSpace(s); runeLen(s) > 10 {
				bullets = append(bullets, "• "+s)
			}
		}
	}
	for _, key := range channelBulletAttributes {
		if v, ok := p.Attributes[key]; ok && len(bullets) < maxBullets {
			bullets = append(bullets, "• "+labelize(key)+": "+v)
		}
	}
	if len(bullets) < 3 {
		if p.Category != "" {
			bullets = append(bullets, "• Perfect for "+strings.ToLower(p.Category)+" applications")
		}
		if p.Brand != "" {
			bullets = append(bullets, "• Trusted "+p.Brand+" quality and reliability")
		}
	}
	return bullets[:min(maxBullets, len(bullets))]
}

// searchTerms collects distinct lowercase terms from the title, category,
// brand, and short attribute values.
func searchTerms(p *catalog.ProductRecord) string {
	seen := make(map[string]bool)
	var terms []string
	terms = appendUnique(terms, seen, keywords(p.Title)...)
	terms = appendUnique(terms, seen, categoryKeywords(p.Category)...)
	if p.Brand != "" {
		terms = appendUnique(terms, seen, strings.ToLower(p.Brand))
	}

	keys := make([]string, 0, len(p.Attributes))
	for k := range p.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := p.Attributes[k]; len(strings.Fields(v)) <= 2 {
			terms = appendUnique(terms, seen, strings.ToLower(v))
		}
	}

	var kept []string
	for _, t := range terms {
		if n := runeLen(t); n > 2 && n < 20 {
			kept = append(kept, t)
		}
		if len(kept) == searchTermCountMax {
			break
		}
	}
	return truncate(strings.Join(kept, " "), searchTermsMax)
}

// a9Score estimates marketplace search ranking readiness.
//
// Scoring breakdown:
//   - Title length:  25 (150-200 chars), 20 (100-149), else 10
//   - Bullets:       20 (exactly 5), 15 (3+), else 5
//   - Search terms:  15 (over 100 chars), 10 (over 50), else 5
//   - Images:        15 (7+), 12 (5+), 8 (3+), else 3
//   - Price:         10
//   - Category:      10
//   - Brand:         5
func a9Score(p *catalog.ProductRecord) float64 {
	score := 0.0

	if p.Title != "" {
		switch n := runeLen(p.Title); {
		case n >= 150 && n <= 200:
			score += 25
		case n >= 100 && n < 150:
			score += 20
		default:
			score += 10
		}
	}

	if b, ok := p.Attributes["marketplace_bullet_points"]; ok {
		switch n := len(strings.Split(b, "\n")); {
		case n == 5:
			score += 20
		case n >= 3:
			score += 15
		default:
			score += 5
		}
	}

	if t, ok := p.Attributes["marketplace_search_terms"]; ok {
		switch n := runeLen(t); {
		case n > 100:
			score += 15
		case n > 50:
			score += 10
		default:
			score += 5
		}
	}

	if len(p.Images) > 0 {
		switch n := len(p.Images); {
		case n >= 7:
			score += 15
		case n >= 5:
			score += 12
		case n >= 3:
			score += 8
		default:
			score += 3
		}
	}

	if p.HasPrice() {
		score += 10
	}
	if p.Category != "" {
		score += 10
	}
	if p.Brand != "" {
		score += 5
	}
	return min(100, score)
}

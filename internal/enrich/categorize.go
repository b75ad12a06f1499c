package enrich

import (
	"strings"

	"github.com/blackwell-systems/contentlens/internal/catalog"
)

// categoryKeywordTable drives category inference. Order breaks ties.
var categoryKeywordTable = []struct {
	category string
	keywords []string
}{
	{"Electronics", []string{"electronic", "digital", "computer", "phone", "tablet", "camera", "audio", "video"}},
	{"Clothing & Apparel", []string{"shirt", "pants", "dress", "shoes", "jacket", "clothing", "apparel", "fashion"}},
	{"Home & Garden", []string{"home", "garden", "furniture", "decor", "kitchen", "bathroom", "bedroom"}},
	{"Sports & Outdoors", []string{"sports", "outdoor", "fitness", "exercise", "camping", "hiking", "athletic"}},
	{"Books & Media", []string{"book", "dvd", "cd", "magazine", "media", "entertainment"}},
	{"Health & Beauty", []string{"health", "beauty", "cosmetic", "skincare", "wellness", "medical"}},
	{"Automotive", []string{"car", "auto", "vehicle", "automotive", "parts", "accessories"}},
	{"Tools & Hardware", []string{"tool", "hardware", "construction", "repair", "maintenance"}},
}

// confidenceKeywords are matched against the text when the category
// contains the key.
var confidenceKeywords = []struct {
	key      string
	keywords []string
}{
	{"electronics", []string{"electronic", "digital", "computer", "tech"}},
	{"clothing", []string{"shirt", "pants", "dress", "apparel"}},
	{"home", []string{"home", "house", "furniture", "decor"}},
	{"sports", []string{"sports", "fitness", "athletic", "outdoor"}},
}

type attr struct{ key, value string }

var categoryDefaults = []struct {
	key   string
	attrs []attr
}{
	{"electronics", []attr{{"power_source", "Electric"}, {"warranty", "1 Year"}, {"connectivity", "Wired/Wireless"}}},
	{"clothing", []attr{{"care_instructions", "Machine Washable"}, {"fit", "Regular"}, {"season", "All Season"}}},
	{"home", []attr{{"room_type", "Living Room"}, {"assembly_required", "Yes"}, {"style", "Modern"}}},
}

var vagueCategories = map[string]bool{"uncategorized": true, "other": true, "misc": true}

// categorizationStage infers missing categories, scores confidence, and
// adds category default attributes.
type categorizationStage struct{}

func (categorizationStage) ID() PassID { return Categorization }

func (categorizationStage) Apply(p *catalog.ProductRecord, env Env) (Outcome, error) {
	var out Outcome

	if p.Category == "" || vagueCategories[strings.ToLower(p.Category)] {
		if c := inferCategory(p); c != "" {
			before := p.Category
			if before == "" {
				before = "No category"
			}
			p.Category = c
			out.suggest("Suggested category: '%s' → '%s'", before, c)
		}
	}

	if p.Category != "" {
		conf := categoryConfidence(p)
		out.metric("category_confidence", conf)
		if conf < env.Config.threshold("category_confidence") {
			out.suggest("Category confidence is low (%.1f%%) - manual review recommended", conf)
		}
	}

	added := 0
	for _, a := range defaultAttributes(p.Category) {
		if _, exists := p.Attributes[a.key]; exists {
			continue
		}
		p.Attributes[a.key] = a.value
		added++
	}
	if added > 0 {
		out.suggest("Added %d category-specific attributes", added)
	}
	return out, nil
}

func productText(p *catalog.ProductRecord) string {
	return strings.ToLower(p.Title + " " + p.Description)
}

// inferCategory picks the category whose keywords appear most often in the
// title and description; empty when nothing matches.
func inferCategory(p *catalog.ProductRecord) string {
	text := productText(p)
	best, bestScore := "", 0
	for _, entry := range categoryKeywordTable {
		score := 0
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = entry.category, score
		}
	}
	return best
}

// categoryConfidence is 30 plus 20 per matched keyword for a recognized
// category, 50 for an unrecognized one, capped at 100.
func categoryConfidence(p *catalog.ProductRecord) float64 {
	if p.Category == "" {
		return 0
	}
	lower := strings.ToLower(p.Category)
	text := productText(p)
	for _, entry := range confidenceKeywords {
		if !strings.Contains(lower, entry.key) {
			continue
		}
		matches := 0
		for _, kw := range entry.keywords {
			if strings.Contains(text, kw) {
				matches++
			}
		}
		return min(100, 30+float64(matches)*20)
	}
	return 50
}

func defaultAttributes(category string) []attr {
	if category == "" {
		return nil
	}
	lower := strings.ToLower(category)
	for _, entry := range categoryDefaults {
		if strings.Contains(lower, entry.key) {
			return entry.attrs
		}
	}
	return nil
}

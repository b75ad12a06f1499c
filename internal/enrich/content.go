package enrich

import (
	"sort"
	"strings"

	"github.com/blackwell-systems/contentlens/internal/catalog"
	"github.com/blackwell-systems/contentlens/internal/scoring"
)

var (
	titleAttributes   = []string{"color", "size", "model", "type", "material"}
	specAttributes    = []string{"material", "color", "size", "weight", "dimensions", "capacity"}
	featureAttributes = []string{
		"material", "color", "size", "weight", "dimensions",
		"capacity", "power", "warranty", "compatibility",
	}
)

const maxBullets = 5

// usageScenarios maps a category substring to its scenarios. The first
// entry with a matching substring wins.
var usageScenarios = []struct {
	match     []string
	scenarios []string
}{
	{[]string{"electronics"}, []string{"Home entertainment", "Office productivity", "Travel companion"}},
	{[]string{"clothing", "apparel"}, []string{"Casual wear", "Professional settings", "Special occasions"}},
	{[]string{"kitchen", "cooking"}, []string{"Daily meal preparation", "Special occasions", "Professional cooking"}},
	{[]string{"tools"}, []string{"Professional projects", "Home improvement", "Maintenance tasks"}},
}

var defaultScenarios = []string{"Daily use", "Special projects", "Professional applications"}

// contentStage fills thin titles and descriptions from structured fields
// and writes feature bullets and usage scenarios.
type contentStage struct{}

func (contentStage) ID() PassID { return ContentGeneration }

func (contentStage) Apply(p *catalog.ProductRecord, _ Env) (Outcome, error) {
	var out Outcome

	if runeLen(p.Title) < 20 {
		if t := generateTitle(p); t != "" {
			before := p.Title
			if before == "" {
				before = "No title"
			}
			p.Title = t
			out.suggest("Generated enhanced title: '%s' → '%s'", before, t)
		}
	}

	if runeLen(p.Description) < 100 {
		if d := generateDescription(p); d != "" {
			p.Description = d
			out.suggest("Generated comprehensive product description")
		}
	}

	if bullets := featureBullets(p); len(bullets) > 0 {
		p.Attributes["key_features"] = strings.Join(bullets, "\n")
		out.metric("feature_count", float64(len(bullets)))
		out.suggest("Generated %d key feature bullet points", len(bullets))
	}

	if s := scenarios(p.Category); s != "" {
		p.Attributes["usage_scenarios"] = s
		out.suggest("Generated product usage scenarios")
	}

	out.metric("content_richness", richness(p.Title, p.Description, len(p.Attributes), len(p.Images)))
	out.metric("content_completeness", scoring.GradedCompleteness(p))
	return out, nil
}

func generateTitle(p *catalog.ProductRecord) string {
	var parts []string
	// The SEO pass may already have prefixed the brand.
	if p.Brand != "" && !containsFold(p.Title, p.Brand) {
		parts = append(parts, p.Brand)
	}
	switch {
	case p.Title != "":
		parts = append(parts, p.Title)
	case p.SKU != "":
		parts = append(parts, "Product "+p.SKU)
	}
	for _, key := range titleAttributes {
		if v, ok := p.Attributes[key]; ok && runeLen(strings.Join(parts, " ")) < 40 {
			parts = append(parts, v)
		}
	}
	if p.Category != "" && runeLen(strings.Join(parts, " ")) < 45 {
		parts = append(parts, p.Category)
	}
	return strings.Join(parts, " ")
}

func generateDescription(p *catalog.ProductRecord) string {
	if p.Title == "" && p.Brand == "" {
		return ""
	}
	name := p.Title
	if name == "" {
		name = p.Brand + " Product"
	}
	parts := []string{"Discover the exceptional " + name + "."}

	var specs []string
	for _, key := range specAttributes {
		if v, ok := p.Attributes[key]; ok {
			specs = append(specs, key+": "+v)
		}
	}
	if len(specs) > 0 {
		parts = append(parts, "Key specifications include "+strings.Join(specs[:min(3, len(specs))], ", ")+".")
	}
	if p.Category != "" {
		parts = append(parts, "Perfect for "+strings.ToLower(p.Category)+" applications.")
	}
	if p.Brand != "" {
		parts = append(parts, "Backed by "+p.Brand+"'s commitment to quality and performance.")
	}
	parts = append(parts, "Experience the difference today.")
	return strings.Join(parts, " ")
}

// featureBullets lists priority attributes first, then any other attribute
// with a short value in key order, up to five.
func featureBullets(p *catalog.ProductRecord) []string {
	if len(p.Attributes) == 0 {
		return nil
	}
	var bullets []string
	priority := make(map[string]bool, len(featureAttributes))
	for _, key := range featureAttributes {
		priority[key] = true
		if v, ok := p.Attributes[key]; ok && len(bullets) < maxBullets {
			bullets = append(bullets, "• "+labelize(key)+": "+v)
		}
	}

	keys := make([]string, 0, len(p.Attributes))
	for k := range p.Attributes {
		if !priority[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(bullets) >= maxBullets {
			break
		}
		if v := p.Attributes[k]; runeLen(v) < 50 {
			bullets = append(bullets, "• "+labelize(k)+": "+v)
		}
	}
	return bullets
}

func scenarios(category string) string {
	if category == "" {
		return ""
	}
	lower := strings.ToLower(category)
	picked := defaultScenarios
	for _, entry := range usageScenarios {
		if matchesAny(lower, entry.match) {
			picked = entry.scenarios
			break
		}
	}
	return "Ideal for: " + strings.Join(picked, ", ")
}

func matchesAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

package enrich

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/contentlens/internal/catalog"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func apply(t *testing.T, s Stage, p *catalog.ProductRecord, cfg Config) Outcome {
	t.Helper()
	p.Normalize()
	out, err := s.Apply(p, Env{Config: &cfg, Now: testNow})
	require.NoError(t, err)
	return out
}

func TestSEOTitle(t *testing.T) {
	got := seoTitle("wireless headphones", "Electronics > Audio", "Acme")
	assert.Equal(t, "Acme Wireless Headphones Electronics Audio", got)
}

func TestSEOTitle_BrandAlreadyPresent(t *testing.T) {
	assert.Equal(t, "Acme Speaker", seoTitle("ACME speaker", "", "Acme"))
}

func TestSEOTitle_CappedAt60(t *testing.T) {
	long := strings.Repeat("word ", 20)
	assert.Equal(t, 60, runeLen(seoTitle(long, "", "")))
}

func TestSEODescription(t *testing.T) {
	got := seoDescription("Great sound.", "Acme Speaker", "", nil)
	assert.Equal(t, "Great sound with acme with speaker.", got)
}

func TestSEODescription_StopsAt500(t *testing.T) {
	desc := strings.Repeat("x", 120) + "."
	desc = strings.Repeat(desc, 5)
	got := seoDescription(desc, "", "", []string{"alpha", "beta"})
	assert.Equal(t, desc, got)
}

func TestMetaDescription(t *testing.T) {
	p := &catalog.ProductRecord{
		ID:          "p",
		Title:       "Acme Speaker",
		Description: "Loud and clear. Second sentence.",
		Brand:       "Acme",
		Price:       catalog.Float(49.99),
	}
	assert.Equal(t, "Acme Speaker. Loud and clear. by Acme. $49.99", metaDescription(p))
}

func TestMetaDescription_Truncated(t *testing.T) {
	p := &catalog.ProductRecord{ID: "p", Title: strings.Repeat("a", 170)}
	meta := metaDescription(p)
	assert.Equal(t, 160, runeLen(meta))
	assert.True(t, strings.HasSuffix(meta, "..."))
}

func TestMetaDescription_NothingToSay(t *testing.T) {
	assert.Empty(t, metaDescription(&catalog.ProductRecord{ID: "p", Brand: "Acme"}))
}

func TestSEOStage(t *testing.T) {
	p := &catalog.ProductRecord{
		ID:          "p1",
		Title:       "wireless speaker",
		Description: "Great sound.",
		Brand:       "Acme",
	}
	out := apply(t, seoStage{}, p, Config{SEOKeywords: []string{"portable"}})

	assert.Equal(t, "Acme Wireless Speaker", p.Title)
	assert.Equal(t, "true", p.Attributes["seo_optimized"])
	assert.Equal(t, "2026-03-10T12:00:00Z", p.Attributes["seo_timestamp"])
	assert.Contains(t, p.Attributes["meta_description"], "Acme Wireless Speaker")
	assert.Contains(t, p.Description, "portable")
	for _, k := range []string{"title_length", "title_keyword_density", "description_length",
		"description_keyword_density", "readability_score", "meta_description_length"} {
		assert.Contains(t, out.Metrics, k)
	}
	assert.Contains(t, out.Suggestions, "Optimized title for SEO: 'wireless speaker' → 'Acme Wireless Speaker'")
}

func TestSEOStage_KeepsExistingMeta(t *testing.T) {
	p := &catalog.ProductRecord{ID: "p1", Title: "Speaker", Attributes: map[string]string{"meta_description": "keep"}}
	out := apply(t, seoStage{}, p, Config{})
	assert.Equal(t, "keep", p.Attributes["meta_description"])
	assert.NotContains(t, out.Metrics, "meta_description_length")
}

func TestGenerateTitle(t *testing.T) {
	p := &catalog.ProductRecord{
		ID:         "p",
		Brand:      "Acme",
		SKU:        "X1",
		Category:   "Electronics",
		Attributes: map[string]string{"color": "Black", "size": "Large"},
	}
	assert.Equal(t, "Acme Product X1 Black Large Electronics", generateTitle(p))
}

func TestGenerateTitle_BrandAlreadyPresent(t *testing.T) {
	p := &catalog.ProductRecord{
		ID:         "p",
		Title:      "Acme Tv",
		Brand:      "Acme",
		Category:   "Misc",
		Attributes: map[string]string{"color": "red"},
	}
	assert.Equal(t, "Acme Tv red Misc", generateTitle(p))

	p.Title = "ACME tv"
	assert.Equal(t, "ACME tv red Misc", generateTitle(p))
}

func TestGenerateDescription(t *testing.T) {
	p := &catalog.ProductRecord{
		ID:       "p",
		Title:    "Acme Speaker",
		Brand:    "Acme",
		Category: "Electronics",
		Attributes: map[string]string{
			"material": "Aluminum", "color": "Black", "size": "Small", "weight": "1kg",
		},
	}
	want := "Discover the exceptional Acme Speaker. " +
		"Key specifications include material: Aluminum, color: Black, size: Small. " +
		"Perfect for electronics applications. " +
		"Backed by Acme's commitment to quality and performance. " +
		"Experience the difference today."
	assert.Equal(t, want, generateDescription(p))
}

func TestGenerateDescription_NeedsTitleOrBrand(t *testing.T) {
	assert.Empty(t, generateDescription(&catalog.ProductRecord{ID: "p", Category: "Tools"}))
}

func TestFeatureBullets(t *testing.T) {
	p := &catalog.ProductRecord{
		ID: "p",
		Attributes: map[string]string{
			"material":  "Steel",
			"warranty":  "2 Years",
			"finish":    "Matte",
			"long_note": strings.Repeat("n", 60),
			"zeta":      "z",
		},
	}
	assert.Equal(t, []string{
		"• Material: Steel",
		"• Warranty: 2 Years",
		"• Finish: Matte",
		"• Zeta: z",
	}, featureBullets(p))
}

func TestFeatureBullets_CappedAtFive(t *testing.T) {
	attrs := map[string]string{}
	for _, k := range featureAttributes {
		attrs[k] = "v"
	}
	assert.Len(t, featureBullets(&catalog.ProductRecord{ID: "p", Attributes: attrs}), 5)
}

func TestScenarios(t *testing.T) {
	assert.Equal(t, "Ideal for: Daily meal preparation, Special occasions, Professional cooking", scenarios("Home Kitchen"))
	assert.Equal(t, "Ideal for: Home entertainment, Office productivity, Travel companion", scenarios("Consumer Electronics"))
	assert.Equal(t, "Ideal for: Casual wear, Professional settings, Special occasions", scenarios("Women's Apparel"))
	assert.Equal(t, "Ideal for: Daily use, Special projects, Professional applications", scenarios("Garden"))
	assert.Empty(t, scenarios(""))
}

func TestContentStage(t *testing.T) {
	p := &catalog.ProductRecord{
		ID:         "p1",
		Title:      "Speaker",
		Brand:      "Acme",
		Category:   "Electronics",
		Attributes: map[string]string{"color": "Black"},
	}
	out := apply(t, contentStage{}, p, Config{})

	assert.Equal(t, "Acme Speaker Black Electronics", p.Title)
	assert.True(t, strings.HasPrefix(p.Description, "Discover the exceptional Acme Speaker Black Electronics."))
	assert.Equal(t, "• Color: Black", p.Attributes["key_features"])
	assert.Equal(t, 1.0, out.Metrics["feature_count"])
	assert.Contains(t, p.Attributes["usage_scenarios"], "Home entertainment")
	assert.Contains(t, out.Metrics, "content_richness")
	assert.Contains(t, out.Metrics, "content_completeness")
	assert.Contains(t, out.Suggestions, "Generated enhanced title: 'Speaker' → 'Acme Speaker Black Electronics'")
}

func TestChannelTitle(t *testing.T) {
	p := &catalog.ProductRecord{
		ID:    "p",
		Brand: "Acme",
		Title: "Acme Wireless Speaker",
		Attributes: map[string]string{
			"color": "Black", "size": "Large", "model": "S1", "quantity": "2",
		},
	}
	assert.Equal(t, "Acme Wireless Speaker Black Large S1", channelTitle(p))
}

func TestChannelBullets(t *testing.T) {
	p := &catalog.ProductRecord{
		ID:          "p",
		Description: "Short. This sentence is long enough. Another long sentence here. Fourth sentence is long too.",
		Attributes:  map[string]string{"material": "Oak"},
	}
	assert.Equal(t, []string{
		"• This sentence is long enough",
		"• Another long sentence here",
		"• Material: Oak",
	}, channelBullets(p))
}

func TestChannelBullets_Backfill(t *testing.T) {
	p := &catalog.ProductRecord{ID: "p", Category: "Tools", Brand: "Acme", Attributes: map[string]string{}}
	assert.Equal(t, []string{
		"• Perfect for tools applications",
		"• Trusted Acme quality and reliability",
	}, channelBullets(p))
}

func TestSearchTerms(t *testing.T) {
	p := &catalog.ProductRecord{
		ID:       "p",
		Title:    "Wireless Speaker",
		Category: "Audio",
		Brand:    "Acme",
		Attributes: map[string]string{
			"color": "Black",
			"note":  "a very long value here",
		},
	}
	assert.Equal(t, "wireless speaker audio acme black", searchTerms(p))
}

func TestSearchTerms_Bounded(t *testing.T) {
	var words []string
	for i := 0; i < 40; i++ {
		words = append(words, "term"+strings.Repeat(string(rune('a'+i%26)), 1+i/26))
	}
	p := &catalog.ProductRecord{ID: "p", Title: strings.Join(words, " "), Attributes: map[string]string{}}
	terms := searchTerms(p)
	assert.LessOrEqual(t, len(strings.Fields(terms)), 20)
	assert.LessOrEqual(t, runeLen(terms), 250)
}

func TestA9Score(t *testing.T) {
	p := &catalog.ProductRecord{
		ID:       "p",
		Title:    strings.Repeat("t", 160),
		Price:    catalog.Float(10),
		Category: "Audio",
		Brand:    "Acme",
		Images:   []string{"1", "2", "3", "4", "5", "6", "7"},
		Attributes: map[string]string{
			"marketplace_bullet_points": "a\nb\nc\nd\ne",
			"marketplace_search_terms":  strings.Repeat("s", 120),
		},
	}
	assert.Equal(t, 100.0, a9Score(p))
	assert.Equal(t, 0.0, a9Score(&catalog.ProductRecord{ID: "p"}))
}

func TestChannelStage_LowScoreSuggestion(t *testing.T) {
	p := &catalog.ProductRecord{ID: "p", Title: "Speaker"}
	out := apply(t, channelStage{}, p, Config{})
	require.Contains(t, out.Metrics, "marketplace_a9_score")
	assert.Less(t, out.Metrics["marketplace_a9_score"], 70.0)
	assert.Contains(t, strings.Join(out.Suggestions, "\n"), "Marketplace A9 optimization score:")
}

func TestTitleQuality(t *testing.T) {
	// 30 length + 25 words + 15 no keywords + 10 capitalized + 10 punctuation
	assert.Equal(t, 90.0, titleQuality("Acme Wireless Bluetooth Speaker Black", nil))
	// Two keyword matches give 16 instead of the default 15.
	assert.Equal(t, 91.0, titleQuality("Acme Wireless Bluetooth Speaker Black", []string{"wireless", "speaker"}))
	// 10 length + 5 words + 15 default, no capital, too many "!"
	assert.Equal(t, 30.0, titleQuality("cheap!!", nil))
	assert.Equal(t, 0.0, titleQuality("", nil))
}

func TestDescriptionQuality(t *testing.T) {
	// 10 length + 20 sentences + 0 density + 15 readability + 6 benefit words
	desc := "This speaker delivers excellent sound. It is perfect for parties."
	assert.Equal(t, 51.0, descriptionQuality(desc, nil))
	assert.Equal(t, 0.0, descriptionQuality("", nil))
}

func TestBrandCompliance(t *testing.T) {
	g := BrandGuidelines{
		Tone:                 "professional",
		RequiredBrandMention: "Acme",
		ForbiddenWords:       []string{"cheap", "knockoff"},
	}
	p := &catalog.ProductRecord{ID: "p", Title: "Awesome cheap speaker", Description: "Super cool sound"}
	// 100 - 20 mention - 10 cheap - 15 casual words
	assert.Equal(t, 55.0, brandCompliance(p, g))

	many := BrandGuidelines{ForbiddenWords: strings.Fields("a b c d e f g h i j k")}
	assert.Equal(t, 0.0, brandCompliance(&catalog.ProductRecord{ID: "p", Title: "abcdefghijk"}, many))
}

func TestQualityStage(t *testing.T) {
	p := &catalog.ProductRecord{ID: "p", Title: "Acme Wireless Bluetooth Speaker Black"}
	out := apply(t, qualityStage{}, p, Config{})

	assert.Equal(t, 90.0, out.Metrics["title_quality"])
	assert.NotContains(t, out.Metrics, "description_quality")
	assert.NotContains(t, out.Metrics, "brand_compliance")
	// completeness: id + title = 28
	assert.Equal(t, 28.0, out.Metrics["completeness_score"])
	assert.Equal(t, 59.0, out.Metrics["overall_quality"])
	assert.Contains(t, out.Suggestions, "Product information is incomplete - consider adding missing fields")
}

func TestQualityStage_Thresholds(t *testing.T) {
	p := &catalog.ProductRecord{ID: "p", Title: "Acme Wireless Bluetooth Speaker Black"}
	out := apply(t, qualityStage{}, p, Config{QualityThresholds: map[string]float64{
		"title_quality":      95,
		"completeness_score": 10,
	}})
	assert.Contains(t, out.Suggestions, "Title quality could be improved - consider adding more descriptive keywords")
	assert.NotContains(t, out.Suggestions, "Product information is incomplete - consider adding missing fields")
}

func TestQualityStage_BrandCompliance(t *testing.T) {
	p := &catalog.ProductRecord{ID: "p", Title: "Cheap speaker"}
	out := apply(t, qualityStage{}, p, Config{BrandGuidelines: BrandGuidelines{ForbiddenWords: []string{"cheap"}}})
	assert.Equal(t, 90.0, out.Metrics["brand_compliance"])
}

func TestInferCategory(t *testing.T) {
	assert.Equal(t, "Electronics", inferCategory(&catalog.ProductRecord{Title: "Digital camera with audio"}))
	// Ties go to the earlier table entry.
	assert.Equal(t, "Home & Garden", inferCategory(&catalog.ProductRecord{Title: "garden hiking"}))
	assert.Empty(t, inferCategory(&catalog.ProductRecord{Title: "zzz"}))
}

func TestCategoryConfidence(t *testing.T) {
	assert.Equal(t, 70.0, categoryConfidence(&catalog.ProductRecord{Category: "Electronics", Title: "digital computer"}))
	assert.Equal(t, 50.0, categoryConfidence(&catalog.ProductRecord{Category: "Toys"}))
	assert.Equal(t, 100.0, categoryConfidence(&catalog.ProductRecord{Category: "Home & Garden", Title: "home furniture decor house"}))
	assert.Equal(t, 0.0, categoryConfidence(&catalog.ProductRecord{}))
}

func TestCategorizationStage(t *testing.T) {
	p := &catalog.ProductRecord{
		ID:         "p",
		Title:      "Digital camera",
		Category:   "misc",
		Attributes: map[string]string{"warranty": "2 Years"},
	}
	out := apply(t, categorizationStage{}, p, Config{})

	assert.Equal(t, "Electronics", p.Category)
	assert.Equal(t, 50.0, out.Metrics["category_confidence"])
	assert.Equal(t, "2 Years", p.Attributes["warranty"])
	assert.Equal(t, "Electric", p.Attributes["power_source"])
	assert.Equal(t, "Wired/Wireless", p.Attributes["connectivity"])
	assert.Equal(t, []string{
		"Suggested category: 'misc' → 'Electronics'",
		"Category confidence is low (50.0%) - manual review recommended",
		"Added 2 category-specific attributes",
	}, out.Suggestions)
}

func TestCategorizationStage_KeepsSpecificCategory(t *testing.T) {
	p := &catalog.ProductRecord{ID: "p", Title: "Digital camera", Category: "Cameras"}
	out := apply(t, categorizationStage{}, p, Config{})
	assert.Equal(t, "Cameras", p.Category)
	assert.Equal(t, 50.0, out.Metrics["category_confidence"])
}

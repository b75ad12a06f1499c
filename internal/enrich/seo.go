package enrich

import (
	"strings"
	"time"

	"github.com/blackwell-systems/contentlens/internal/catalog"
)

const (
	seoTitleMax       = 60
	seoDescriptionMax = 500
	metaMax           = 160
)

// seoStage rewrites title and description around keywords and adds a meta
// description.
type seoStage struct{}

func (seoStage) ID() PassID { return SEOOptimization }

func (seoStage) Apply(p *catalog.ProductRecord, env Env) (Outcome, error) {
	var out Outcome
	seo := env.Config.SEOKeywords

	if p.Title != "" {
		before := p.Title
		p.Title = seoTitle(p.Title, p.Category, p.Brand)
		out.metric("title_length", float64(runeLen(p.Title)))
		out.metric("title_keyword_density", keywordDensity(p.Title, seo))
		if p.Title != before {
			out.suggest("Optimized title for SEO: '%s' → '%s'", before, p.Title)
		}
	}

	if p.Description != "" {
		before := p.Description
		p.Description = seoDescription(p.Description, p.Title, p.Category, seo)
		out.metric("description_length", float64(runeLen(p.Description)))
		out.metric("description_keyword_density", keywordDensity(p.Description, seo))
		out.metric("readability_score", readability(p.Description))
		if p.Description != before {
			out.suggest("Enhanced description with SEO keywords and improved readability")
		}
	}

	if _, ok := p.Attributes["meta_description"]; !ok {
		if meta := metaDescription(p); meta != "" {
			p.Attributes["meta_description"] = meta
			out.metric("meta_description_length", float64(runeLen(meta)))
			out.suggest("Generated SEO meta description")
		}
	}

	p.Attributes["seo_optimized"] = "true"
	p.Attributes["seo_timestamp"] = env.Now.Format(time.RFC3339)
	return out, nil
}

// seoTitle prefixes a missing brand, fills short titles with category
// keywords, title-cases the result, and caps it at 60 characters.
func seoTitle(title, category, brand string) string {
	t := strings.TrimSpace(title)
	if brand != "" && !containsFold(t, brand) {
		t = brand + " " + t
	}
	if category != "" && runeLen(t) < 50 {
		for _, kw := range categoryKeywords(category) {
			if !containsFold(t, kw) && runeLen(t)+runeLen(kw) < seoTitleMax {
				t = t + " " + kw
			}
		}
	}
	return truncate(titleCase(t), seoTitleMax)
}

// seoDescription inserts keywords from the title, category, and config that
// the description lacks, while it stays under 500 characters.
func seoDescription(desc, title, category string, seo []string) string {
	seen := make(map[string]bool)
	var kws []string
	kws = appendUnique(kws, seen, keywords(title)...)
	kws = appendUnique(kws, seen, categoryKeywords(category)...)
	kws = appendUnique(kws, seen, seo...)

	out := desc
	for _, kw := range kws {
		if kw == "" {
			continue
		}
		if !containsFold(out, kw) && runeLen(out) < seoDescriptionMax {
			out = addKeyword(out, kw)
		}
	}
	return out
}

// metaDescription joins the title, the first description sentence, brand,
// and price, capped at 160 characters. Empty when there is neither title nor
// description.
func metaDescription(p *catalog.ProductRecord) string {
	if p.Title == "" && p.Description == "" {
		return ""
	}
	var parts []string
	if p.Title != "" {
		parts = append(parts, p.Title)
	}
	if p.Description != "" {
		first, _, _ := strings.Cut(p.Description, ".")
		if runeLen(first) > 100 {
			first = truncate(first, 100) + "..."
		}
		parts = append(parts, first)
	}
	if p.Brand != "" {
		parts = append(parts, "by "+p.Brand)
	}
	if p.HasPrice() {
		parts = append(parts, "$"+p.PriceString())
	}
	meta := strings.Join(parts, ". ")
	if runeLen(meta) > metaMax {
		meta = truncate(meta, metaMax-3) + "..."
	}
	return meta
}

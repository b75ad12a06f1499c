// Package scoring computes deterministic 0-100 content scores for product
// records.
package scoring

import (
	"unicode/utf8"

	"github.com/blackwell-systems/contentlens/internal/catalog"
)

// Quality calculates a 0-100 content quality score.
//
// Scoring breakdown:
//   - Title:        up to 25 (30-60 chars: 25, 20-29 or 61-80: 20, else 10)
//   - Description:  up to 35 (150-500 chars: 35, 100-149 or 501-1000: 25, else 15)
//   - Attributes:   2 per attribute, max 20
//   - Images:       2 per image, max 10
//   - Basic fields: (present of price, category, brand) / 3 * 10
func Quality(p *catalog.ProductRecord) float64 {
	score := 0.0

	if p.Title != "" {
		n := runeLen(p.Title)
		switch {
		case n >= 30 && n <= 60:
			score += 25
		case (n >= 20 && n < 30) || (n > 60 && n <= 80):
			score += 20
		default:
			score += 10
		}
	}

	if p.Description != "" {
		n := runeLen(p.Description)
		switch {
		case n >= 150 && n <= 500:
			score += 35
		case (n >= 100 && n < 150) || (n > 500 && n <= 1000):
			score += 25
		default:
			score += 15
		}
	}

	score += min(20, float64(len(p.Attributes))*2)
	score += min(10, float64(len(p.Images))*2)

	basic := 0
	if p.HasPrice() {
		basic++
	}
	if p.Category != "" {
		basic++
	}
	if p.Brand != "" {
		basic++
	}
	score += float64(basic) / 3 * 10

	return clamp(score)
}

// SEO calculates a 0-100 search optimization score.
//
// Scoring breakdown:
//   - Title:       up to 30 (30-60 chars: 30, 20-80: 20, else 10)
//   - Description: up to 30 (150-300 chars: 30, 100-500: 20, else 10)
//   - Category:    20
//   - Brand:       10
//   - Meta keys:   (present of meta_description, keywords, tags) / 3 * 10
func SEO(p *catalog.ProductRecord) float64 {
	score := 0.0

	if p.Title != "" {
		n := runeLen(p.Title)
		switch {
		case n >= 30 && n <= 60:
			score += 30
		case n >= 20 && n <= 80:
			score += 20
		default:
			score += 10
		}
	}

	if p.Description != "" {
		n := runeLen(p.Description)
		switch {
		case n >= 150 && n <= 300:
			score += 30
		case n >= 100 && n <= 500:
			score += 20
		default:
			score += 10
		}
	}

	if p.Category != "" {
		score += 20
	}
	if p.Brand != "" {
		score += 10
	}

	matched := 0
	for _, key := range seoMetaKeys {
		if _, ok := p.Attributes[key]; ok {
			matched++
		}
	}
	score += float64(matched) / float64(len(seoMetaKeys)) * 10

	return clamp(score)
}

var seoMetaKeys = []string{"meta_description", "keywords", "tags"}

func clamp(v float64) float64 {
	return max(0, min(100, v))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

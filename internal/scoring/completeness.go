package scoring

import "github.com/blackwell-systems/contentlens/internal/catalog"

// weightedField pairs a record field with the points it contributes.
type weightedField struct {
	field  string
	weight float64

	// graded, when set, scales the points by collection size for
	// GradedCompleteness. It receives the record and returns points.
	graded func(p *catalog.ProductRecord) float64
}

// completenessTable lists required fields (14 points each, 70 total) followed
// by optional fields (7.5 points each, 30 total).
var completenessTable = []weightedField{
	{field: "id", weight: 14},
	{field: "title", weight: 14},
	{field: "description", weight: 14},
	{field: "price", weight: 14},
	{field: "category", weight: 14},
	{field: "brand", weight: 7.5},
	{field: "sku", weight: 7.5},
	{field: "images", weight: 7.5, graded: func(p *catalog.ProductRecord) float64 {
		return min(7.5, float64(len(p.Images))*2.5)
	}},
	{field: "attributes", weight: 7.5, graded: func(p *catalog.ProductRecord) float64 {
		return min(7.5, float64(len(p.Attributes))*1.5)
	}},
}

// Completeness scores how many expected fields are populated. Images and
// attributes count when the collection is non-empty.
func Completeness(p *catalog.ProductRecord) float64 {
	return completeness(p, false)
}

// GradedCompleteness is Completeness with images and attributes scaled by
// collection size (2.5 per image, 1.5 per attribute, each capped at 7.5).
func GradedCompleteness(p *catalog.ProductRecord) float64 {
	return completeness(p, true)
}

func completeness(p *catalog.ProductRecord, graded bool) float64 {
	score := 0.0
	for _, wf := range completenessTable {
		f, ok := catalog.LookupField(wf.field)
		if !ok {
			continue
		}
		if _, present := f.Value(p); !present {
			continue
		}
		if graded && wf.graded != nil {
			score += wf.graded(p)
			continue
		}
		score += wf.weight
	}
	return clamp(score)
}

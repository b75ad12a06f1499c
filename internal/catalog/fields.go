package catalog

import "strings"

// Field describes one record field for table-driven lookups.
type Field struct {
	Name string

	// Value returns the field as a string and whether it is present.
	// Presence follows listing semantics: empty strings, zero prices, and
	// empty collections are absent.
	Value func(p *ProductRecord) (string, bool)
}

// Fields is the descriptor table for every top-level record field.
var Fields = []Field{
	{Name: "id", Value: func(p *ProductRecord) (string, bool) { return p.ID, p.ID != "" }},
	{Name: "title", Value: func(p *ProductRecord) (string, bool) { return p.Title, p.Title != "" }},
	{Name: "description", Value: func(p *ProductRecord) (string, bool) { return p.Description, p.Description != "" }},
	{Name: "price", Value: func(p *ProductRecord) (string, bool) { return p.PriceString(), p.HasPrice() }},
	{Name: "category", Value: func(p *ProductRecord) (string, bool) { return p.Category, p.Category != "" }},
	{Name: "brand", Value: func(p *ProductRecord) (string, bool) { return p.Brand, p.Brand != "" }},
	{Name: "sku", Value: func(p *ProductRecord) (string, bool) { return p.SKU, p.SKU != "" }},
	{Name: "images", Value: func(p *ProductRecord) (string, bool) {
		return strings.Join(p.Images, ","), len(p.Images) > 0
	}},
	{Name: "attributes", Value: func(p *ProductRecord) (string, bool) { return "", len(p.Attributes) > 0 }},
}

var fieldsByName = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

// LookupField returns the descriptor for name. Names of the form
// "attributes.<key>" resolve to a single attribute value.
func LookupField(name string) (Field, bool) {
	if key, ok := strings.CutPrefix(name, "attributes."); ok && key != "" {
		return Field{
			Name: name,
			Value: func(p *ProductRecord) (string, bool) {
				v, ok := p.Attributes[key]
				return v, ok && v != ""
			},
		}, true
	}
	f, ok := fieldsByName[name]
	return f, ok
}

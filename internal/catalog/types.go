// Package catalog defines the normalized product record shared by the
// enrichment and analytics engines.
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMissingID is returned when a record has no identifier.
var ErrMissingID = errors.New("record missing required id")

// ValidationError describes why a record was rejected.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid record: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ProductRecord is a normalized product as emitted by the ingestion
// collaborators. Empty strings mean the field is absent.
type ProductRecord struct {
	// ID is the stable, required key.
	ID string `json:"id"`

	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// Price is nil when unknown. A zero price is treated as absent by the
	// scoring functions.
	Price *float64 `json:"price,omitempty"`

	Category string `json:"category,omitempty"`
	Brand    string `json:"brand,omitempty"`
	SKU      string `json:"sku,omitempty"`

	// Attributes is never nil after Normalize or Clone.
	Attributes map[string]string `json:"attributes"`

	// Images holds deduplicated URLs in source order. Never nil after
	// Normalize or Clone.
	Images []string `json:"images"`
}

// HasPrice reports whether the record carries a non-zero price.
func (p *ProductRecord) HasPrice() bool {
	return p.Price != nil && *p.Price != 0
}

// PriceString formats the price the way listings display it.
func (p *ProductRecord) PriceString() string {
	if p.Price == nil {
		return ""
	}
	return strconv.FormatFloat(*p.Price, 'f', -1, 64)
}

// Validate checks the record invariants.
func (p *ProductRecord) Validate() error {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return &ValidationError{Field: "id", Reason: "is required", Err: ErrMissingID}
	}
	if p.Price != nil && *p.Price < 0 {
		return &ValidationError{Field: "price", Reason: "must be non-negative"}
	}
	return nil
}

// Normalize fills nil collections and removes duplicate images in place.
func (p *ProductRecord) Normalize() {
	if p.Attributes == nil {
		p.Attributes = make(map[string]string)
	}
	p.Images = dedupe(p.Images)
}

// Clone returns an independently owned deep copy of the record.
func (p ProductRecord) Clone() ProductRecord {
	c := p
	if p.Price != nil {
		price := *p.Price
		c.Price = &price
	}
	c.Attributes = make(map[string]string, len(p.Attributes))
	for k, v := range p.Attributes {
		c.Attributes[k] = v
	}
	c.Images = make([]string, len(p.Images))
	copy(c.Images, p.Images)
	return c
}

// Float returns a pointer to v, for building records with prices.
func Float(v float64) *float64 {
	return &v
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SearchResult represents a candidate paper returned by an arXiv query.
type SearchResult struct {
	// Identifier is the arXiv ID without version.
	Identifier string `json:"identifier" yaml:"identifier"`

	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract or summary.
	Abstract string `json:"abstract" yaml:"abstract"`

	// Date is the publication or preprint date.
	Date time.Time `json:"date" yaml:"date"`

	// PDFURL is the direct PDF link advertised by the feed, if any.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// RelevanceScore is a value between 0.0 and 1.0 derived from feed position.
	RelevanceScore float64 `json:"relevance_score" yaml:"relevance_score"`
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Paper holds metadata and the local file path for a downloaded paper.
// The service writes one YAML sidecar per paper next to the PDF.
type Paper struct {
	// ID is the arXiv identifier without version (e.g. "2301.07041").
	ID string `json:"id" yaml:"id"`

	// SourceURL is the URL from which the PDF was downloaded.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// PDFPath is the local filesystem path to the downloaded PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Date is the publication or preprint date.
	Date time.Time `json:"date" yaml:"date"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract" yaml:"abstract"`
}

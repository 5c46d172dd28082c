// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries the arXiv API for papers matching a query.
package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/research-console/internal/httputil"
	"github.com/pdiddy/research-console/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivBackend queries the arXiv Atom API.
type ArxivBackend struct {
	Retrier *httputil.Retrier
	Config  types.SearchConfig
}

// Search returns up to maxResults entries for query in arXiv relevance
// order. A non-positive maxResults uses the configured default.
func (b *ArxivBackend) Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	q := BuildQuery(query)
	if q == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if maxResults <= 0 {
		maxResults = b.Config.MaxResults
	}
	if maxResults <= 0 {
		maxResults = 5
	}

	u := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d", arxivAPIBase, q, maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if b.Config.UserAgent != "" {
		req.Header.Set("User-Agent", b.Config.UserAgent)
	}

	resp, err := b.Retrier.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	total := len(feed.Entries)
	var results []types.SearchResult
	for i, entry := range feed.Entries {
		arxivID := ExtractArxivID(entry.ID)
		if arxivID == "" {
			continue
		}

		r := types.SearchResult{
			Identifier: arxivID,
			Title:      strings.Join(strings.Fields(entry.Title), " "),
			Abstract:   strings.TrimSpace(entry.Summary),
			PDFURL:     entry.pdfLink(),
		}
		for _, a := range entry.Authors {
			r.Authors = append(r.Authors, strings.TrimSpace(a.Name))
		}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			r.Date = t
		}

		// Position-based relevance: arXiv already sorts by relevance.
		if total > 1 {
			r.RelevanceScore = 1.0 - float64(i)/float64(total-1)*0.9
		} else {
			r.RelevanceScore = 1.0
		}

		results = append(results, r)
	}
	return results, nil
}

// BuildQuery turns free text into the search_query parameter: each word
// is escaped and the words are joined with "+" under an "all:" prefix.
func BuildQuery(text string) string {
	terms := strings.Fields(text)
	if len(terms) == 0 {
		return ""
	}
	for i, t := range terms {
		terms[i] = url.QueryEscape(t)
	}
	return "all:" + strings.Join(terms, "+")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	Links     []arxivLink   `xml:"link"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivLink struct {
	Href  string `xml:"href,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

// pdfLink returns the entry's PDF link, identified by its title or MIME type.
func (e arxivEntry) pdfLink() string {
	for _, l := range e.Links {
		if l.Title == "pdf" || l.Type == "application/pdf" {
			return l.Href
		}
	}
	return ""
}

// ExtractArxivID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func ExtractArxivID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}

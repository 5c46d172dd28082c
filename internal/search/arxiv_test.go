// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-console/internal/httputil"
	"github.com/pdiddy/research-console/pkg/types"
)

const sampleArxivSearchXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/1706.03762v1</id>
    <title>Attention Is All
      You Need</title>
    <summary>We propose a new architecture based solely on attention mechanisms.</summary>
    <published>2017-06-12T17:57:34Z</published>
    <author><name>Ashish Vaswani</name></author>
    <author><name>Noam Shazeer</name></author>
    <link href="http://arxiv.org/abs/1706.03762v1" rel="alternate" type="text/html"/>
    <link title="pdf" href="http://arxiv.org/pdf/1706.03762v1" rel="related" type="application/pdf"/>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/1810.04805v2</id>
    <title>BERT: Pre-training of Deep Bidirectional Transformers</title>
    <summary>We introduce BERT.</summary>
    <published>2018-10-11T00:00:00Z</published>
    <author><name>Jacob Devlin</name></author>
  </entry>
  <entry>
    <id>not-an-arxiv-id</id>
    <title>Broken</title>
  </entry>
</feed>`

func newBackend(ts *httptest.Server) *ArxivBackend {
	return &ArxivBackend{
		Retrier: &httputil.Retrier{Client: ts.Client(), BaseDelay: time.Millisecond},
		Config:  types.SearchConfig{HTTPConfig: types.HTTPConfig{UserAgent: "test/0.1"}},
	}
}

func withArxivBase(t *testing.T, url string) {
	t.Helper()
	old := arxivAPIBase
	arxivAPIBase = url
	t.Cleanup(func() { arxivAPIBase = old })
}

func TestArxivBackendSearch(t *testing.T) {
	var gotQuery, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, sampleArxivSearchXML)
	}))
	defer ts.Close()
	withArxivBase(t, ts.URL)

	results, err := newBackend(ts).Search(context.Background(), "attention models", 3)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "search_query=all:attention+models&start=0&max_results=3", gotQuery)
	assert.Equal(t, "test/0.1", gotUA)

	r := results[0]
	assert.Equal(t, "1706.03762", r.Identifier)
	assert.Equal(t, "Attention Is All You Need", r.Title)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, r.Authors)
	assert.Equal(t, "http://arxiv.org/pdf/1706.03762v1", r.PDFURL)
	assert.Equal(t, 2017, r.Date.Year())
	assert.InDelta(t, 1.0, r.RelevanceScore, 1e-9)

	assert.Equal(t, "1810.04805", results[1].Identifier)
	assert.Empty(t, results[1].PDFURL)
	assert.Less(t, results[1].RelevanceScore, r.RelevanceScore)
}

func TestArxivBackendHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()
	withArxivBase(t, ts.URL)

	_, err := newBackend(ts).Search(context.Background(), "attention", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestArxivBackendEmptyQuery(t *testing.T) {
	b := &ArxivBackend{Retrier: &httputil.Retrier{}}
	_, err := b.Search(context.Background(), "   ", 5)
	assert.Error(t, err)
}

func TestBuildQuery(t *testing.T) {
	assert.Equal(t, "all:quantum+computing", BuildQuery("quantum  computing"))
	assert.Equal(t, "all:C%2B%2B", BuildQuery("C++"))
	assert.Equal(t, "", BuildQuery(""))
}

func TestExtractArxivID(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"http://arxiv.org/abs/2301.07041v1", "2301.07041"},
		{"http://arxiv.org/abs/1706.03762v5", "1706.03762"},
		{"http://arxiv.org/abs/2301.12345", "2301.12345"},
		{"https://arxiv.org/abs/2301.07041v2", "2301.07041"},
		{"not a url", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractArxivID(tt.input), tt.input)
	}
}

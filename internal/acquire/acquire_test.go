// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-console/internal/logging"
	"github.com/pdiddy/research-console/pkg/types"
)

const fakePDFContent = "%PDF-1.4 fake"

// newTestServer serves fake PDFs under /pdf/ and 404s under /missing/.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/pdf/"):
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, fakePDFContent)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(ts.Close)

	orig := arxivPDFBase
	arxivPDFBase = ts.URL + "/pdf/"
	t.Cleanup(func() { arxivPDFBase = orig })
	return ts
}

func newDownloader(ts *httptest.Server) *Downloader {
	return &Downloader{
		Client: ts.Client(),
		Config: types.AcquisitionConfig{
			HTTPConfig: types.HTTPConfig{Timeout: 10 * time.Second, UserAgent: "research-console-test/0.1"},
		},
		Log: logging.Discard(),
	}
}

func TestDownload(t *testing.T) {
	ts := newTestServer(t)
	dir := filepath.Join(t.TempDir(), "nlp_transformers")

	results := []types.SearchResult{
		{
			Identifier: "1706.03762",
			Title:      "Attention Is All You Need",
			Authors:    []string{"Ashish Vaswani", "Noam Shazeer"},
			Abstract:   "Attention only.",
			PDFURL:     ts.URL + "/pdf/1706.03762v1",
			Date:       time.Date(2017, 6, 12, 0, 0, 0, 0, time.UTC),
		},
		{Identifier: "1810.04805", Title: "BERT"},
		{Identifier: "0000.00000", Title: "Gone", PDFURL: ts.URL + "/missing/0000.00000"},
	}

	batch, err := newDownloader(ts).Download(context.Background(), results, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Downloaded)
	assert.Equal(t, 1, batch.Failed)
	assert.Equal(t, 3, batch.Total())
	require.Len(t, batch.Papers, 2)

	p := batch.Papers[0]
	assert.Equal(t, "1706.03762", p.ID)
	assert.Equal(t, filepath.Join(dir, "1706.03762.pdf"), p.PDFPath)

	data, err := os.ReadFile(p.PDFPath)
	require.NoError(t, err)
	assert.Equal(t, fakePDFContent, string(data))

	meta, err := ReadMetadata(filepath.Join(dir, "1706.03762.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Attention Is All You Need", meta.Title)
	assert.Equal(t, []string{"Ashish Vaswani", "Noam Shazeer"}, meta.Authors)
	assert.Equal(t, 2017, meta.Date.Year())

	assert.Equal(t, ts.URL+"/pdf/1810.04805", batch.Papers[1].SourceURL, "falls back to the arXiv PDF base")
	assert.NoFileExists(t, filepath.Join(dir, "0000.00000.pdf"))

	leftovers, err := filepath.Glob(filepath.Join(dir, ".acquire-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestDownloadSkipsExisting(t *testing.T) {
	ts := newTestServer(t)
	dir := t.TempDir()
	d := newDownloader(ts)
	results := []types.SearchResult{{Identifier: "1706.03762", Title: "Attention"}}

	first, err := d.Download(context.Background(), results, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Downloaded)

	second, err := d.Download(context.Background(), results, dir)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Downloaded)
	assert.Equal(t, 1, second.Skipped)
	require.Len(t, second.Papers, 1)
	assert.Equal(t, "Attention", second.Papers[0].Title)
}

func TestDownloadEmptyIdentifier(t *testing.T) {
	ts := newTestServer(t)
	batch, err := newDownloader(ts).Download(context.Background(), []types.SearchResult{{Title: "no id"}}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 1, batch.Failed)
}

func TestDownloadCancelledDuringDelay(t *testing.T) {
	ts := newTestServer(t)
	d := newDownloader(ts)
	d.Config.DownloadDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	results := []types.SearchResult{{Identifier: "1"}, {Identifier: "2"}}

	done := make(chan struct{})
	var batch BatchResult
	var err error
	go func() {
		batch, err = d.Download(ctx, results, t.TempDir())
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, batch.Total(), "stops before the second result")
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"2301.07041", "2301.07041"},
		{" 2301.07041 ", "2301.07041"},
		{"hep-th/9901001", "hep-th-9901001"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), tt.in)
	}
}

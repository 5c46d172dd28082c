// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire downloads the PDFs of search results and writes a YAML
// metadata sidecar next to each one.
package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-console/pkg/types"
)

// arxivPDFBase builds a PDF URL when a search result carries none.
// Declared as a var so tests can substitute an httptest server.
var arxivPDFBase = "https://arxiv.org/pdf/"

// BatchResult holds the outcome of a batch download.
type BatchResult struct {
	Downloaded int
	Skipped    int
	Failed     int
	Papers     []*types.Paper
}

// Total returns the number of results processed.
func (r BatchResult) Total() int {
	return r.Downloaded + r.Skipped + r.Failed
}

// Downloader fetches paper PDFs into a directory.
type Downloader struct {
	Client *http.Client
	Config types.AcquisitionConfig
	Log    logrus.FieldLogger
}

// Download fetches each result's PDF into saveDir. A PDF already on disk
// is reused. Individual failures are logged and counted; the batch goes on.
func (d *Downloader) Download(ctx context.Context, results []types.SearchResult, saveDir string) (BatchResult, error) {
	var batch BatchResult
	if err := os.MkdirAll(saveDir, 0o755); err != nil {
		return batch, fmt.Errorf("creating directory %s: %w", saveDir, err)
	}

	for i, r := range results {
		if i > 0 && d.Config.DownloadDelay > 0 {
			select {
			case <-ctx.Done():
				return batch, ctx.Err()
			case <-time.After(d.Config.DownloadDelay):
			}
		}

		paper, skipped, err := d.fetch(ctx, r, saveDir)
		if err != nil {
			d.log().WithError(err).WithField("title", r.Title).Warn("download failed")
			batch.Failed++
			continue
		}
		if skipped {
			batch.Skipped++
		} else {
			batch.Downloaded++
		}
		batch.Papers = append(batch.Papers, paper)
	}

	d.log().WithFields(logrus.Fields{
		"downloaded": batch.Downloaded,
		"skipped":    batch.Skipped,
		"failed":     batch.Failed,
	}).Info("download batch finished")
	return batch, nil
}

func (d *Downloader) fetch(ctx context.Context, r types.SearchResult, saveDir string) (paper *types.Paper, skipped bool, err error) {
	slug := Slug(r.Identifier)
	if slug == "" {
		return nil, false, fmt.Errorf("result %q has no identifier", r.Title)
	}
	pdfPath := filepath.Join(saveDir, slug+".pdf")
	metaPath := filepath.Join(saveDir, slug+".yaml")

	if _, err := os.Stat(pdfPath); err == nil {
		p, readErr := ReadMetadata(metaPath)
		if readErr != nil {
			p = &types.Paper{ID: slug, PDFPath: pdfPath}
		}
		return p, true, nil
	}

	pdfURL := r.PDFURL
	if pdfURL == "" {
		pdfURL = arxivPDFBase + r.Identifier
	}

	d.log().WithField("title", r.Title).Info("downloading")
	if err := d.downloadFile(ctx, pdfURL, pdfPath); err != nil {
		return nil, false, fmt.Errorf("downloading %s: %w", slug, err)
	}

	p := &types.Paper{
		ID:        slug,
		SourceURL: pdfURL,
		PDFPath:   pdfPath,
		Title:     r.Title,
		Authors:   r.Authors,
		Date:      r.Date,
		Abstract:  r.Abstract,
	}
	if err := writeMetadata(p, metaPath); err != nil {
		return nil, false, fmt.Errorf("writing metadata for %s: %w", slug, err)
	}
	return p, false, nil
}

// downloadFile fetches url to destPath through a temporary file so a
// failed transfer never leaves a partial PDF behind.
func (d *Downloader) downloadFile(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if d.Config.UserAgent != "" {
		req.Header.Set("User-Agent", d.Config.UserAgent)
	}
	req.Header.Set("Accept", "application/pdf")

	resp, err := d.client().Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".acquire-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func (d *Downloader) client() *http.Client {
	if d.Client != nil {
		return d.Client
	}
	return &http.Client{Timeout: d.Config.Timeout}
}

func (d *Downloader) log() logrus.FieldLogger {
	if d.Log != nil {
		return d.Log
	}
	return logrus.StandardLogger()
}

// Slug turns an identifier into a file name stem. Path separators become
// dashes so the file always lands directly inside the save directory.
func Slug(identifier string) string {
	id := strings.TrimSpace(identifier)
	return strings.NewReplacer("/", "-", "\\", "-", ":", "-").Replace(id)
}

func writeMetadata(paper *types.Paper, path string) error {
	data, err := yaml.Marshal(paper)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadMetadata reads a paper sidecar written by Download.
func ReadMetadata(path string) (*types.Paper, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var paper types.Paper
	if err := yaml.Unmarshal(data, &paper); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &paper, nil
}

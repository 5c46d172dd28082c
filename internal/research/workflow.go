// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research runs the question-answering workflow behind the
// research endpoint: search arXiv, download the papers, index their text
// and ask the model.
//
// Each stage records at most one error. Once an error is recorded the
// remaining stages are skipped and the final answer reports the failure.
package research

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/research-console/internal/acquire"
	"github.com/pdiddy/research-console/internal/index"
	"github.com/pdiddy/research-console/internal/llm"
	"github.com/pdiddy/research-console/internal/logging"
	"github.com/pdiddy/research-console/pkg/types"
)

// Messages recorded by the stages.
const (
	MsgNoDocuments = "No valid PDF documents found to process"
	MsgNoAPIKey    = "Groq API key not provided"
	MsgNoQuestion  = "No research question provided"
	failedPrefix   = "Process failed with error: "
)

// Default working directories.
const (
	DefaultPapersDir = "arxiv_papers"
	DefaultIndexDir  = "index_db"
)

// Searcher finds papers for a query.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error)
}

// Downloader fetches the PDFs of search results into a directory.
type Downloader interface {
	Download(ctx context.Context, results []types.SearchResult, saveDir string) (acquire.BatchResult, error)
}

// Indexer fills a chunk store from a directory of PDFs.
type Indexer interface {
	Build(ctx context.Context, dir string, store *index.Store) (index.Summary, error)
}

// Outcome is the final state of one run.
type Outcome struct {
	Answer           string
	PapersDownloaded int
	// Err is the recorded stage error, empty on success.
	Err string
}

// Workflow wires the stages together.
type Workflow struct {
	Searcher   Searcher
	Downloader Downloader
	Indexer    Indexer
	// NewAnswerer builds the model client for one request.
	NewAnswerer func(apiKey string, model types.ModelName) llm.Answerer

	PapersDir string
	IndexDir  string
	TopK      int
}

// run carries the state of one request through the stages.
type run struct {
	req      types.ResearchRequest
	saveDir  string
	dbPath   string
	papers   int
	store    *index.Store
	answerer llm.Answerer
	answer   string
	err      string
}

// Run executes the workflow for req. The returned error is non-nil only
// when ctx ends the run; stage failures are reported in the Outcome.
func (w *Workflow) Run(ctx context.Context, req types.ResearchRequest) (Outcome, error) {
	if req.MaxResults == 0 {
		req.MaxResults = types.DefaultMaxResults
	}
	if req.ModelName == "" {
		req.ModelName = types.DefaultModel
	}

	name := dirName(CleanQuery(req.Query))
	r := &run{
		req:     req,
		saveDir: filepath.Join(orDefault(w.PapersDir, DefaultPapersDir), name),
		dbPath:  filepath.Join(orDefault(w.IndexDir, DefaultIndexDir), name+".db"),
	}
	defer func() {
		if r.store != nil {
			r.store.Close()
		}
	}()

	log := logging.FromContext(ctx).WithField("query", req.Query)
	log.Info("starting research workflow")

	stages := []struct {
		name string
		fn   func(context.Context, *run) error
	}{
		{"download", w.download},
		{"index", w.index},
		{"qa", w.qa},
		{"answer", w.answerQuestion},
	}
	for _, st := range stages {
		if r.err != "" {
			break
		}
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		if err := st.fn(ctx, r); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Outcome{}, ctxErr
			}
			r.err = err.Error()
		}
		log.WithFields(logrus.Fields{"stage": st.name, "failed": r.err != ""}).Debug("stage finished")
	}

	if r.err != "" {
		log.WithField("error", r.err).Warn("research workflow failed")
		r.answer = failedPrefix + r.err
	} else {
		log.Info("research question answered")
	}
	return Outcome{Answer: r.answer, PapersDownloaded: r.papers, Err: r.err}, nil
}

func (w *Workflow) download(ctx context.Context, r *run) error {
	results, err := w.Searcher.Search(ctx, r.req.Query, int(r.req.MaxResults))
	if err != nil {
		return fmt.Errorf("Error downloading papers: %w", err)
	}
	logging.FromContext(ctx).WithField("found", len(results)).Info("search finished")

	batch, err := w.Downloader.Download(ctx, results, r.saveDir)
	if err != nil {
		return fmt.Errorf("Error downloading papers: %w", err)
	}
	r.papers = len(batch.Papers)
	return nil
}

func (w *Workflow) index(ctx context.Context, r *run) error {
	store, err := index.Open(r.dbPath)
	if err != nil {
		return fmt.Errorf("Error creating vector database: %w", err)
	}
	r.store = store

	if _, err := w.Indexer.Build(ctx, r.saveDir, store); err != nil {
		if errors.Is(err, index.ErrNoDocuments) {
			return errors.New(MsgNoDocuments)
		}
		return fmt.Errorf("Error creating vector database: %w", err)
	}
	return nil
}

func (w *Workflow) qa(_ context.Context, r *run) error {
	if r.req.GroqAPIKey == "" {
		return errors.New(MsgNoAPIKey)
	}
	r.answerer = w.NewAnswerer(r.req.GroqAPIKey, r.req.ModelName)
	return nil
}

func (w *Workflow) answerQuestion(ctx context.Context, r *run) error {
	question := r.req.ResearchQuestion
	if strings.TrimSpace(question) == "" {
		return errors.New(MsgNoQuestion)
	}

	chunks, err := r.store.Search(ctx, question, w.TopK)
	if err != nil {
		return fmt.Errorf("Error answering question: %w", err)
	}
	passages := make([]string, len(chunks))
	for i, c := range chunks {
		passages[i] = c.Content
	}

	answer, err := r.answerer.Answer(ctx, question, passages)
	if err != nil {
		return fmt.Errorf("Error answering question: %w", err)
	}
	r.answer = answer
	return nil
}

// CleanQuery derives the per-query directory name: lowercase, spaces
// become underscores and ampersands become "and".
func CleanQuery(query string) string {
	q := strings.ToLower(query)
	q = strings.ReplaceAll(q, " ", "_")
	return strings.ReplaceAll(q, "&", "and")
}

// dirName keeps a cleaned query inside its parent directory.
func dirName(clean string) string {
	name := strings.NewReplacer("/", "_", "\\", "_").Replace(clean)
	if name == "" || name == "." || name == ".." {
		return "query"
	}
	return name
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

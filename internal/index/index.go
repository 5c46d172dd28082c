// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index turns a directory of downloaded PDFs into a searchable
// chunk store.
package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/research-console/internal/acquire"
	"github.com/pdiddy/research-console/pkg/types"
)

// Defaults for IndexConfig fields left at zero.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultTopK         = 5
)

// ErrNoDocuments is returned by Build when no PDF in the directory yields text.
var ErrNoDocuments = errors.New("no valid PDF documents found")

// Summary counts the outcome of a Build.
type Summary struct {
	Documents int
	Skipped   int
	Chunks    int
}

// Builder indexes PDF directories.
type Builder struct {
	Config types.IndexConfig
	Log    logrus.FieldLogger
}

// Build reads every .pdf in dir, chunks its text and stores the chunks in
// store. Files without a PDF header or whose text cannot be read are
// logged and skipped.
func (b *Builder) Build(ctx context.Context, dir string, store *Store) (Summary, error) {
	var sum Summary
	entries, err := os.ReadDir(dir)
	if err != nil {
		return sum, fmt.Errorf("reading %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".pdf") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	size, overlap := b.chunking()
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		path := filepath.Join(dir, name)
		log := b.log().WithField("file", name)

		ok, err := IsPDF(path)
		if err != nil || !ok {
			log.WithError(err).Warn("not a valid PDF, skipping")
			sum.Skipped++
			continue
		}

		text, err := extractText(path)
		if err != nil {
			log.WithError(err).Warn("error processing file, skipping")
			sum.Skipped++
			continue
		}

		chunks := Split(text, size, overlap)
		if len(chunks) == 0 {
			log.Warn("no text extracted, skipping")
			sum.Skipped++
			continue
		}

		id := strings.TrimSuffix(name, ".pdf")
		title := id
		if p, err := acquire.ReadMetadata(filepath.Join(dir, id+".yaml")); err == nil && p.Title != "" {
			title = p.Title
		}
		if err := store.Put(ctx, id, title, path, chunks); err != nil {
			return sum, fmt.Errorf("storing %s: %w", id, err)
		}
		sum.Documents++
		sum.Chunks += len(chunks)
	}

	if sum.Documents == 0 {
		return sum, ErrNoDocuments
	}
	b.log().WithFields(logrus.Fields{
		"documents": sum.Documents,
		"chunks":    sum.Chunks,
	}).Info("index built")
	return sum, nil
}

func (b *Builder) chunking() (size, overlap int) {
	size, overlap = b.Config.ChunkSize, b.Config.ChunkOverlap
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap <= 0 {
		overlap = DefaultChunkOverlap
	}
	return size, overlap
}

func (b *Builder) log() logrus.FieldLogger {
	if b.Log != nil {
		return b.Log
	}
	return logrus.StandardLogger()
}

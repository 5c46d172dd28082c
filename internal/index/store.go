// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"
)

// Chunk is one stored piece of paper text.
type Chunk struct {
	PaperID string
	Seq     int
	Content string
	Score   float64
}

// Store is a per-query SQLite database of paper chunks.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and its schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			id TEXT PRIMARY KEY,
			title TEXT,
			pdf_path TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS chunks (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			content TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chunks_paper_id ON chunks(paper_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Put replaces the stored chunks of a paper.
func (s *Store) Put(ctx context.Context, paperID, title, pdfPath string, chunks []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE paper_id = ?`, paperID); err != nil {
		return fmt.Errorf("clearing chunks of %s: %w", paperID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO papers (id, title, pdf_path) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, pdf_path = excluded.pdf_path`,
		paperID, title, pdfPath,
	); err != nil {
		return fmt.Errorf("upserting paper %s: %w", paperID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO chunks (paper_id, seq, content) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()
	for i, c := range chunks {
		if _, err := stmt.ExecContext(ctx, paperID, i, c); err != nil {
			return fmt.Errorf("inserting chunk %d of %s: %w", i, paperID, err)
		}
	}
	return tx.Commit()
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Search returns the k chunks sharing the most terms with question,
// weighted by how rare each term is across the index. Ties keep
// insertion order. When nothing matches the first k chunks are returned
// so the caller always has context to work with.
func (s *Store) Search(ctx context.Context, question string, k int) ([]Chunk, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	rows, err := s.db.QueryContext(ctx, `SELECT paper_id, seq, content FROM chunks ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	var tfs []map[string]int
	df := map[string]int{}
	for rows.Next() {
		var c Chunk
		if err := rows.Scan(&c.PaperID, &c.Seq, &c.Content); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		tf := map[string]int{}
		for _, t := range Terms(c.Content) {
			tf[t]++
		}
		for t := range tf {
			df[t]++
		}
		chunks = append(chunks, c)
		tfs = append(tfs, tf)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	query := map[string]bool{}
	for _, t := range Terms(question) {
		query[t] = true
	}
	n := float64(len(chunks))
	for i := range chunks {
		var score float64
		for t := range query {
			if tf := tfs[i][t]; tf > 0 {
				score += (1 + math.Log(float64(tf))) * math.Log(1+n/float64(df[t]))
			}
		}
		chunks[i].Score = score
	}

	sort.SliceStable(chunks, func(a, b int) bool { return chunks[a].Score > chunks[b].Score })
	if len(chunks) > k {
		chunks = chunks[:k]
	}
	return chunks, nil
}

package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pgvector/pgvector-go"

	"github.com/Chaithz/thinkTree/internal/core/domain"
)

type Store struct {
	db         *sql.DB
	collection string
}

func New(db *sql.DB, collection string) *Store {
	return &Store{db: db, collection: collection}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101801)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS document_chunks (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	filename TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	text TEXT NOT NULL,
	embedding vector NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS idx_document_chunks_filename ON document_chunks(collection, filename);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors))
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for i, chunk := range chunks {
		_, err := tx.ExecContext(ctx, `
INSERT INTO document_chunks (collection, id, filename, chunk_index, text, embedding, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (collection, id) DO UPDATE
SET filename = EXCLUDED.filename,
	chunk_index = EXCLUDED.chunk_index,
	text = EXCLUDED.text,
	embedding = EXCLUDED.embedding,
	updated_at = EXCLUDED.updated_at
`,
			s.collection, chunk.ID, chunk.Metadata.Filename, chunk.Metadata.ChunkIndex, chunk.Text,
			pgvector.NewVector(vectors[i]), now,
		)
		if err != nil {
			return fmt.Errorf("upsert chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert tx: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievedChunk, error) {
	out := []domain.RetrievedChunk{}
	if limit <= 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, filename, chunk_index, text, embedding <=> $2 AS distance
FROM document_chunks
WHERE collection = $1 AND vector_dims(embedding) = $3
ORDER BY distance
LIMIT $4
`, s.collection, pgvector.NewVector(queryVector), len(queryVector), limit)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hit domain.RetrievedChunk
		if err := rows.Scan(&hit.ID, &hit.Filename, &hit.ChunkIndex, &hit.Text, &hit.Distance); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		out = append(out, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return out, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"

	"github.com/Chaithz/thinkTree/internal/core/domain"
)

const dbFile = "vectors.db"

// Store keeps chunks and their embeddings in a SQLite file and ranks them
// by cosine distance in process.
type Store struct {
	db         *sql.DB
	collection string
	path       string
}

// Open creates or opens the store file under dir.
func Open(ctx context.Context, dir, collection string) (*Store, error) {
	if dir == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "open sqlite store", errors.New("persist dir is required"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create persist dir: %w", err)
	}
	path := filepath.Join(dir, dbFile)
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	s := &Store{db: db, collection: collection, path: path}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS chunks (
	collection  TEXT NOT NULL,
	id          TEXT NOT NULL,
	filename    TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	text        TEXT NOT NULL,
	embedding   BLOB NOT NULL,
	dims        INTEGER NOT NULL,
	updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS idx_chunks_filename ON chunks(collection, filename);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create chunks table: %w", err)
	}
	return nil
}

// Upsert writes chunks in one transaction; an existing id is overwritten.
func (s *Store) Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) == 0 {
		return nil
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors))
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO chunks (collection, id, filename, chunk_index, text, embedding, dims, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(collection, id) DO UPDATE SET
	filename = excluded.filename,
	chunk_index = excluded.chunk_index,
	text = excluded.text,
	embedding = excluded.embedding,
	dims = excluded.dims,
	updated_at = excluded.updated_at
`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for i, chunk := range chunks {
		_, err := stmt.ExecContext(ctx,
			s.collection, chunk.ID, chunk.Metadata.Filename, chunk.Metadata.ChunkIndex,
			chunk.Text, encodeVector(vectors[i]), len(vectors[i]),
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

// Query returns the limit nearest chunks by cosine distance (1 - similarity).
// Rows whose dimension differs from the query vector are skipped.
func (s *Store) Query(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievedChunk, error) {
	if limit <= 0 || len(queryVector) == 0 {
		return []domain.RetrievedChunk{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, filename, chunk_index, text, embedding
FROM chunks
WHERE collection = ? AND dims = ?
`, s.collection, len(queryVector))
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	hits := make([]domain.RetrievedChunk, 0)
	for rows.Next() {
		var (
			hit  domain.RetrievedChunk
			blob []byte
		)
		if err := rows.Scan(&hit.ID, &hit.Filename, &hit.ChunkIndex, &hit.Text, &blob); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		vector, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("decode embedding of %s: %w", hit.ID, err)
		}
		hit.Distance = cosineDistance(queryVector, vector)
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Count returns the number of chunks stored in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE collection = ?`, s.collection).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, errors.New("embedding blob length is not a multiple of 4")
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out, nil
}

func cosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

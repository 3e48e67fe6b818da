package ports

import (
	"context"
	"io"

	"github.com/Chaithz/thinkTree/internal/core/domain"
)

// TextExtractor turns raw file bytes into one text stream, pages in order.
type TextExtractor interface {
	Extract(ctx context.Context, raw []byte) (string, error)
}

// Chunker splits text into ordered pieces.
type Chunker interface {
	Split(text string) []string
}

// Embedder builds vectors for chunks and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore upserts chunks by id and runs nearest-neighbour search.
type VectorStore interface {
	Upsert(ctx context.Context, chunks []domain.Chunk, vectors [][]float32) error
	Query(ctx context.Context, queryVector []float32, limit int) ([]domain.RetrievedChunk, error)
}

// AnswerGenerator sends a prompt to a chat model. An empty model selects the default.
type AnswerGenerator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// IndexEventPublisher announces finished uploads.
type IndexEventPublisher interface {
	PublishIndexed(ctx context.Context, event domain.IndexedEvent) error
}

// GraphStore persists parsed knowledge graphs.
type GraphStore interface {
	SaveGraph(ctx context.Context, query string, graph *domain.KnowledgeGraph) error
}

// DocumentSource opens a named document outside of an HTTP upload.
type DocumentSource interface {
	Open(ctx context.Context, name string) (domain.Document, io.ReadCloser, error)
}

package ports

import (
	"context"
	"io"

	"github.com/Chaithz/thinkTree/internal/core/domain"
)

// DocumentIngestor is the inbound contract for the upload write path.
type DocumentIngestor interface {
	Extract(ctx context.Context, doc domain.Document, body io.Reader) (*domain.Extraction, error)
	Ingest(ctx context.Context, doc domain.Document, body io.Reader) (*domain.IngestResult, error)
}

// DocumentQueryService is the inbound contract for retrieval and answering.
type DocumentQueryService interface {
	Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error)
}

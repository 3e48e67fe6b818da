package usecase

import (
	"context"

	"github.com/Chaithz/thinkTree/internal/core/domain"
	"github.com/Chaithz/thinkTree/internal/core/ports"
)

// IngestLocal indexes a document opened from files instead of an upload.
func IngestLocal(ctx context.Context, ingestor ports.DocumentIngestor, files ports.DocumentSource, name string) (*domain.IngestResult, error) {
	doc, body, err := files.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ingestor.Ingest(ctx, doc, body)
}

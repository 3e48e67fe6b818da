package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/Chaithz/thinkTree/internal/core/domain"
	"github.com/Chaithz/thinkTree/internal/core/ports"
)

const (
	defaultMaxUploadBytes = 32 << 20
	defaultEmbedBatchSize = 32
)

type IngestOptions struct {
	Collection     string
	MaxUploadBytes int64
	EmbedBatchSize int
	// IncludeChunks returns the chunk texts in the upload response.
	IncludeChunks bool
}

type IngestUseCase struct {
	extractor ports.TextExtractor
	chunker   ports.Chunker
	embedder  ports.Embedder
	store     ports.VectorStore
	events    ports.IndexEventPublisher
	logger    *slog.Logger
	opts      IngestOptions
	now       func() time.Time
}

// NewIngestUseCase wires the write path. events may be nil.
func NewIngestUseCase(
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	embedder ports.Embedder,
	store ports.VectorStore,
	events ports.IndexEventPublisher,
	logger *slog.Logger,
	opts IngestOptions,
) *IngestUseCase {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUploadBytes
	}
	if opts.EmbedBatchSize <= 0 {
		opts.EmbedBatchSize = defaultEmbedBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestUseCase{
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		events:    events,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

func (uc *IngestUseCase) Extract(ctx context.Context, doc domain.Document, body io.Reader) (*domain.Extraction, error) {
	text, err := uc.extractText(ctx, doc, body)
	if err != nil {
		return nil, err
	}
	return &domain.Extraction{Filename: doc.Filename, Content: text}, nil
}

func (uc *IngestUseCase) Ingest(ctx context.Context, doc domain.Document, body io.Reader) (*domain.IngestResult, error) {
	text, err := uc.extractText(ctx, doc, body)
	if err != nil {
		return nil, err
	}

	texts := uc.chunker.Split(text)
	result := &domain.IngestResult{Filename: doc.Filename, TotalChunks: len(texts)}
	if uc.opts.IncludeChunks {
		result.Chunks = texts
	}
	if len(texts) == 0 {
		return result, nil
	}

	chunks := domain.NewChunks(doc.Filename, texts)
	if err := uc.index(ctx, chunks); err != nil {
		return nil, err
	}

	uc.publish(ctx, chunks)
	return result, nil
}

func (uc *IngestUseCase) extractText(ctx context.Context, doc domain.Document, body io.Reader) (string, error) {
	if err := validateDocument(doc); err != nil {
		return "", err
	}

	raw, err := io.ReadAll(io.LimitReader(body, uc.opts.MaxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > uc.opts.MaxUploadBytes {
		return "", domain.WrapError(
			domain.ErrInvalidInput,
			"read upload",
			fmt.Errorf("file exceeds %d bytes", uc.opts.MaxUploadBytes),
		)
	}

	text, err := uc.extractor.Extract(ctx, raw)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	return text, nil
}

// index writes chunks batch by batch. Batches already written stay
// in the store when a later one fails.
func (uc *IngestUseCase) index(ctx context.Context, chunks []domain.Chunk) error {
	for start := 0; start < len(chunks); start += uc.opts.EmbedBatchSize {
		end := min(start+uc.opts.EmbedBatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, 0, len(batch))
		for _, c := range batch {
			texts = append(texts, c.Text)
		}
		vectors, err := uc.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed chunks: %w", err)
		}
		if err := uc.store.Upsert(ctx, batch, vectors); err != nil {
			return fmt.Errorf("upsert chunks: %w", err)
		}
	}
	return nil
}

func (uc *IngestUseCase) publish(ctx context.Context, chunks []domain.Chunk) {
	if uc.events == nil {
		return
	}
	ids := make([]string, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, c.ID)
	}
	filename := chunks[0].Metadata.Filename
	event := domain.IndexedEvent{
		Filename:    filename,
		Collection:  uc.opts.Collection,
		TotalChunks: len(chunks),
		ChunkIDs:    ids,
		IndexedAt:   uc.now().UTC(),
	}
	if err := uc.events.PublishIndexed(ctx, event); err != nil {
		uc.logger.Warn("index_event_publish_failed", "filename", filename, "error", err)
	}
}

func validateDocument(doc domain.Document) error {
	if strings.TrimSpace(doc.Filename) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "validate upload", fmt.Errorf("filename is required"))
	}
	if doc.ContentType != domain.PDFMediaType {
		return domain.WrapError(
			domain.ErrUnsupportedMediaType,
			"validate upload",
			fmt.Errorf("content type %q", doc.ContentType),
		)
	}
	return nil
}

package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Chaithz/thinkTree/internal/core/domain"
)

func pdfDoc(name string) domain.Document {
	return domain.Document{Filename: name, ContentType: domain.PDFMediaType}
}

func TestIngestRejectsNonPDF(t *testing.T) {
	extractor := &extractorFake{text: "ignored"}
	uc := NewIngestUseCase(extractor, chunkerFake{size: 4}, &embedderFake{}, &storeFake{}, nil, nil, IngestOptions{})

	_, err := uc.Ingest(context.Background(), domain.Document{Filename: "a.txt", ContentType: "text/plain"}, strings.NewReader("%PDF"))
	if !domain.IsKind(err, domain.ErrUnsupportedMediaType) {
		t.Fatalf("expected unsupported media type, got %v", err)
	}
	if extractor.raw != nil {
		t.Fatalf("extractor must not run for rejected uploads")
	}
}

func TestIngestStoresChunksWithIDsAndMetadata(t *testing.T) {
	store := &storeFake{}
	events := &publisherFake{}
	uc := NewIngestUseCase(
		&extractorFake{text: "abcdefghij"},
		chunkerFake{size: 4},
		&embedderFake{},
		store,
		events,
		nil,
		IngestOptions{Collection: "example_collection"},
	)
	uc.now = func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) }

	res, err := uc.Ingest(context.Background(), pdfDoc("notes.pdf"), bytes.NewBufferString("raw"))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if res.Filename != "notes.pdf" || res.TotalChunks != 3 || res.Chunks != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(store.upserted) != 3 {
		t.Fatalf("expected 3 upserted chunks, got %d", len(store.upserted))
	}
	last := store.upserted[2]
	if last.ID != "notes.pdf_chunk_2" || last.Text != "ij" || last.Metadata.ChunkIndex != 2 {
		t.Fatalf("unexpected last chunk %+v", last)
	}
	if len(events.events) != 1 || events.events[0].TotalChunks != 3 || events.events[0].Collection != "example_collection" {
		t.Fatalf("unexpected events %+v", events.events)
	}
}

func TestIngestIncludeChunks(t *testing.T) {
	uc := NewIngestUseCase(&extractorFake{text: "Hello world\n"}, chunkerFake{size: 1000}, &embedderFake{}, &storeFake{}, nil, nil, IngestOptions{IncludeChunks: true})

	res, err := uc.Ingest(context.Background(), pdfDoc("a.pdf"), strings.NewReader("raw"))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(res.Chunks) != 1 || res.Chunks[0] != "Hello world\n" {
		t.Fatalf("unexpected chunks %#v", res.Chunks)
	}
}

func TestIngestEmptyTextStoresNothing(t *testing.T) {
	store := &storeFake{}
	events := &publisherFake{}
	uc := NewIngestUseCase(&extractorFake{text: ""}, chunkerFake{size: 10}, &embedderFake{}, store, events, nil, IngestOptions{})

	res, err := uc.Ingest(context.Background(), pdfDoc("blank.pdf"), strings.NewReader("raw"))
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if res.TotalChunks != 0 || len(store.upserted) != 0 || len(events.events) != 0 {
		t.Fatalf("expected nothing stored, got result=%+v upserted=%d events=%d", res, len(store.upserted), len(events.events))
	}
}

func TestIngestBatchesEmbeddings(t *testing.T) {
	embedder := &embedderFake{}
	uc := NewIngestUseCase(&extractorFake{text: strings.Repeat("x", 50)}, chunkerFake{size: 10}, embedder, &storeFake{}, nil, nil, IngestOptions{EmbedBatchSize: 2})

	if _, err := uc.Ingest(context.Background(), pdfDoc("a.pdf"), strings.NewReader("raw")); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(embedder.calls) != 3 {
		t.Fatalf("expected 3 embed batches, got %d", len(embedder.calls))
	}
}

func TestIngestKeepsWrittenChunksOnFailure(t *testing.T) {
	store := &storeFake{failAfter: 2}
	uc := NewIngestUseCase(&extractorFake{text: "aaaabbbbcccc"}, chunkerFake{size: 4}, &embedderFake{}, store, nil, nil, IngestOptions{EmbedBatchSize: 2})

	_, err := uc.Ingest(context.Background(), pdfDoc("a.pdf"), strings.NewReader("raw"))
	if err == nil || !strings.Contains(err.Error(), "upsert chunks") {
		t.Fatalf("expected upsert error, got %v", err)
	}
	if len(store.upserted) != 2 {
		t.Fatalf("expected first batch to remain, got %d chunks", len(store.upserted))
	}
}

func TestIngestPublishFailureDoesNotFailUpload(t *testing.T) {
	events := &publisherFake{err: errors.New("nats down")}
	uc := NewIngestUseCase(&extractorFake{text: "abc"}, chunkerFake{size: 10}, &embedderFake{}, &storeFake{}, events, nil, IngestOptions{})

	if _, err := uc.Ingest(context.Background(), pdfDoc("a.pdf"), strings.NewReader("raw")); err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if len(events.events) != 1 {
		t.Fatalf("expected publish attempt")
	}
}

func TestExtractRejectsOversizedUpload(t *testing.T) {
	uc := NewIngestUseCase(&extractorFake{text: "x"}, chunkerFake{size: 10}, &embedderFake{}, &storeFake{}, nil, nil, IngestOptions{MaxUploadBytes: 4})

	_, err := uc.Extract(context.Background(), pdfDoc("big.pdf"), strings.NewReader("12345"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestExtractReturnsContent(t *testing.T) {
	extractor := &extractorFake{text: "page one\fpage two"}
	uc := NewIngestUseCase(extractor, chunkerFake{size: 10}, &embedderFake{}, &storeFake{}, nil, nil, IngestOptions{})

	got, err := uc.Extract(context.Background(), pdfDoc("a.pdf"), strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if got.Content != "page one\fpage two" || string(extractor.raw) != "%PDF-1.4" {
		t.Fatalf("unexpected extraction %+v", got)
	}
}

func TestExtractWrapsExtractorError(t *testing.T) {
	uc := NewIngestUseCase(&extractorFake{err: errors.New("corrupt xref")}, chunkerFake{size: 10}, &embedderFake{}, &storeFake{}, nil, nil, IngestOptions{})

	_, err := uc.Extract(context.Background(), pdfDoc("a.pdf"), strings.NewReader("x"))
	if err == nil || !strings.Contains(err.Error(), "corrupt xref") {
		t.Fatalf("expected extractor error, got %v", err)
	}
}

type sourceFake struct {
	doc    domain.Document
	body   string
	closed bool
}

func (f *sourceFake) Open(context.Context, string) (domain.Document, io.ReadCloser, error) {
	return f.doc, f, nil
}

func (f *sourceFake) Read(p []byte) (int, error) {
	if f.body == "" {
		return 0, io.EOF
	}
	n := copy(p, f.body)
	f.body = f.body[n:]
	return n, nil
}

func (f *sourceFake) Close() error {
	f.closed = true
	return nil
}

func TestIngestLocalClosesSource(t *testing.T) {
	extractor := &extractorFake{text: "abc"}
	uc := NewIngestUseCase(extractor, chunkerFake{size: 10}, &embedderFake{}, &storeFake{}, nil, nil, IngestOptions{})
	src := &sourceFake{doc: pdfDoc("local.pdf"), body: "%PDF-1.4"}

	res, err := IngestLocal(context.Background(), uc, src, "local.pdf")
	if err != nil {
		t.Fatalf("IngestLocal() error = %v", err)
	}
	if res.Filename != "local.pdf" || res.TotalChunks != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if string(extractor.raw) != "%PDF-1.4" || !src.closed {
		t.Fatalf("source not read and closed: raw=%q closed=%v", extractor.raw, src.closed)
	}
}

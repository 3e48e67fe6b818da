package httpadapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Chaithz/thinkTree/internal/config"
	"github.com/Chaithz/thinkTree/internal/core/domain"
)

type ingestFake struct {
	doc  domain.Document
	body string
	err  error
}

func (f *ingestFake) read(doc domain.Document, body io.Reader) error {
	if doc.ContentType != domain.PDFMediaType {
		return domain.WrapError(domain.ErrUnsupportedMediaType, "validate upload", fmt.Errorf("content type %q", doc.ContentType))
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.doc = doc
	f.body = string(raw)
	return f.err
}

func (f *ingestFake) Extract(_ context.Context, doc domain.Document, body io.Reader) (*domain.Extraction, error) {
	if err := f.read(doc, body); err != nil {
		return nil, err
	}
	return &domain.Extraction{Filename: doc.Filename, Content: "Hello world\n"}, nil
}

func (f *ingestFake) Ingest(_ context.Context, doc domain.Document, body io.Reader) (*domain.IngestResult, error) {
	if err := f.read(doc, body); err != nil {
		return nil, err
	}
	return &domain.IngestResult{Filename: doc.Filename, TotalChunks: 1}, nil
}

type queryFake struct {
	got domain.QueryRequest
	err error
}

func (f *queryFake) Query(_ context.Context, req domain.QueryRequest) (*domain.QueryResult, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	if req.Text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "query", errors.New("query_text is required"))
	}
	return &domain.QueryResult{
		Query:  req.Text,
		Result: domain.NewRetrieval(nil),
		Answer: "no context",
	}, nil
}

func newTestHandler(cfg config.Config) http.Handler {
	return NewRouter(cfg, &ingestFake{}, &queryFake{}, nil).Handler()
}

package usecase

import (
	"context"
	"errors"

	"github.com/Chaithz/thinkTree/internal/core/domain"
)

type extractorFake struct {
	text string
	err  error
	raw  []byte
}

func (f *extractorFake) Extract(_ context.Context, raw []byte) (string, error) {
	f.raw = raw
	return f.text, f.err
}

type chunkerFake struct {
	size int
}

func (f chunkerFake) Split(text string) []string {
	runes := []rune(text)
	out := []string{}
	for start := 0; start < len(runes); start += f.size {
		out = append(out, string(runes[start:min(start+f.size, len(runes))]))
	}
	return out
}

type embedderFake struct {
	calls [][]string
	query string
	err   error
}

func (f *embedderFake) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, texts)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t)), 1}
	}
	return out, nil
}

func (f *embedderFake) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.query = text
	return []float32{1, 0}, nil
}

type storeFake struct {
	upserted  []domain.Chunk
	failAfter int
	hits      []domain.RetrievedChunk
	limit     int
	err       error
}

func (f *storeFake) Upsert(_ context.Context, chunks []domain.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("length mismatch")
	}
	if f.failAfter > 0 && len(f.upserted) >= f.failAfter {
		return errors.New("store unavailable")
	}
	f.upserted = append(f.upserted, chunks...)
	return nil
}

func (f *storeFake) Query(_ context.Context, _ []float32, limit int) ([]domain.RetrievedChunk, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > limit {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

type generatorFake struct {
	answer string
	err    error
	model  string
	prompt string
	calls  int
}

func (f *generatorFake) Generate(_ context.Context, model, prompt string) (string, error) {
	f.calls++
	f.model = model
	f.prompt = prompt
	return f.answer, f.err
}

type publisherFake struct {
	events []domain.IndexedEvent
	err    error
}

func (f *publisherFake) PublishIndexed(_ context.Context, event domain.IndexedEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type graphStoreFake struct {
	query string
	saved *domain.KnowledgeGraph
	err   error
}

func (f *graphStoreFake) SaveGraph(_ context.Context, query string, graph *domain.KnowledgeGraph) error {
	f.query = query
	f.saved = graph
	return f.err
}

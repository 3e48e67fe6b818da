package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Chaithz/thinkTree/internal/core/domain"
)

func sampleHits() []domain.RetrievedChunk {
	return []domain.RetrievedChunk{
		{ID: "a.pdf_chunk_0", Text: "Go has goroutines.", Filename: "a.pdf", ChunkIndex: 0, Distance: 0.1},
		{ID: "a.pdf_chunk_1", Text: "Channels connect them.", Filename: "a.pdf", ChunkIndex: 1, Distance: 0.2},
		{ID: "b.pdf_chunk_0", Text: "Unrelated.", Filename: "b.pdf", ChunkIndex: 0, Distance: 0.9},
		{ID: "b.pdf_chunk_1", Text: "Also unrelated.", Filename: "b.pdf", ChunkIndex: 1, Distance: 0.95},
	}
}

func TestQueryRejectsEmptyText(t *testing.T) {
	uc := NewQueryUseCase(&embedderFake{}, &storeFake{}, &generatorFake{}, nil, nil, QueryOptions{})
	_, err := uc.Query(context.Background(), domain.QueryRequest{Text: "  "})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestQueryRetrievalOnly(t *testing.T) {
	store := &storeFake{hits: sampleHits()}
	generator := &generatorFake{}
	uc := NewQueryUseCase(&embedderFake{}, store, generator, nil, nil, QueryOptions{TopK: 3})

	res, err := uc.Query(context.Background(), domain.QueryRequest{Text: "goroutines"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if store.limit != 3 || res.Result.Len() != 3 {
		t.Fatalf("expected top 3, got limit=%d len=%d", store.limit, res.Result.Len())
	}
	if res.Result.IDs[0] != "a.pdf_chunk_0" || res.Answer != "" || generator.calls != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestQueryDefaultsTopKToThree(t *testing.T) {
	store := &storeFake{}
	uc := NewQueryUseCase(&embedderFake{}, store, nil, nil, nil, QueryOptions{})
	if _, err := uc.Query(context.Background(), domain.QueryRequest{Text: "q"}); err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if store.limit != 3 {
		t.Fatalf("expected limit 3, got %d", store.limit)
	}
}

func TestQueryEmptyStoreSkipsGeneration(t *testing.T) {
	generator := &generatorFake{answer: "{}"}
	uc := NewQueryUseCase(&embedderFake{}, &storeFake{}, generator, nil, nil, QueryOptions{GenerateAnswer: true})

	res, err := uc.Query(context.Background(), domain.QueryRequest{Text: "anything"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if generator.calls != 0 || res.Result.Len() != 0 || res.Result.IDs == nil {
		t.Fatalf("expected empty result without generation, got %+v", res)
	}
}

func TestQueryBuildsPromptAndParsesGraph(t *testing.T) {
	generator := &generatorFake{answer: `Here you go: {"nodes":[{"id":"1","text":"Goroutine","explanation":"lightweight thread"}],"links":[]}`}
	graphs := &graphStoreFake{}
	uc := NewQueryUseCase(&embedderFake{}, &storeFake{hits: sampleHits()}, generator, graphs, nil, QueryOptions{TopK: 2, GenerateAnswer: true})

	res, err := uc.Query(context.Background(), domain.QueryRequest{Text: "what are goroutines?", ModelName: "mistral"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if generator.model != "mistral" {
		t.Fatalf("expected model override, got %q", generator.model)
	}
	for _, want := range []string{"Go has goroutines.", "Channels connect them.", "what are goroutines?"} {
		if !strings.Contains(generator.prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
	if strings.Contains(generator.prompt, "Unrelated.") {
		t.Fatalf("prompt contains chunk beyond top-k")
	}
	if res.Answer != generator.answer {
		t.Fatalf("answer must be raw model output")
	}
	if res.Graph == nil || res.Graph.Nodes[0].Text != "Goroutine" || res.GraphError != "" {
		t.Fatalf("unexpected graph %+v / %q", res.Graph, res.GraphError)
	}
	if graphs.saved != res.Graph || graphs.query != "what are goroutines?" {
		t.Fatalf("expected graph to be saved")
	}
}

func TestQueryUnparseableAnswerIsNotAnError(t *testing.T) {
	generator := &generatorFake{answer: "I am not sure."}
	graphs := &graphStoreFake{}
	uc := NewQueryUseCase(&embedderFake{}, &storeFake{hits: sampleHits()}, generator, graphs, nil, QueryOptions{GenerateAnswer: true})

	res, err := uc.Query(context.Background(), domain.QueryRequest{Text: "q"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if res.Answer != "I am not sure." || res.Graph != nil || res.GraphError == "" {
		t.Fatalf("unexpected result %+v", res)
	}
	if graphs.saved != nil {
		t.Fatalf("unparsed graph must not be saved")
	}
}

func TestQueryGraphSaveFailureIsLogged(t *testing.T) {
	generator := &generatorFake{answer: `{"nodes":[{"id":"1"}],"links":[]}`}
	uc := NewQueryUseCase(&embedderFake{}, &storeFake{hits: sampleHits()}, generator, &graphStoreFake{err: errors.New("neo4j down")}, nil, QueryOptions{GenerateAnswer: true})

	res, err := uc.Query(context.Background(), domain.QueryRequest{Text: "q"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if res.Graph == nil {
		t.Fatalf("expected graph despite save failure")
	}
}

func TestQueryGeneratorError(t *testing.T) {
	uc := NewQueryUseCase(&embedderFake{}, &storeFake{hits: sampleHits()}, &generatorFake{err: errors.New("model not found")}, nil, nil, QueryOptions{GenerateAnswer: true})

	_, err := uc.Query(context.Background(), domain.QueryRequest{Text: "q"})
	if err == nil || !strings.Contains(err.Error(), "generate answer") {
		t.Fatalf("expected generate error, got %v", err)
	}
}

func TestQueryStoreError(t *testing.T) {
	uc := NewQueryUseCase(&embedderFake{}, &storeFake{err: errors.New("closed")}, nil, nil, nil, QueryOptions{})

	_, err := uc.Query(context.Background(), domain.QueryRequest{Text: "q"})
	if err == nil || !strings.Contains(err.Error(), "query vector store") {
		t.Fatalf("expected store error, got %v", err)
	}
}

package domain

import (
	"errors"
	"testing"
)

func TestChunkIDFormat(t *testing.T) {
	if got := ChunkID("report.pdf", 3); got != "report.pdf_chunk_3" {
		t.Fatalf("unexpected chunk id %q", got)
	}
}

func TestNewChunksAssignsIndexesInOrder(t *testing.T) {
	chunks := NewChunks("a.pdf", []string{"x", "y"})
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[1].ID != "a.pdf_chunk_1" || chunks[1].Metadata.ChunkIndex != 1 || chunks[1].Metadata.Filename != "a.pdf" {
		t.Fatalf("unexpected second chunk: %+v", chunks[1])
	}
}

func TestNewRetrievalKeepsColumnsAligned(t *testing.T) {
	r := NewRetrieval([]RetrievedChunk{
		{ID: "a_chunk_0", Text: "first", Filename: "a", ChunkIndex: 0, Distance: 0.1},
		{ID: "b_chunk_2", Text: "second", Filename: "b", ChunkIndex: 2, Distance: 0.4},
	})
	if r.Len() != 2 {
		t.Fatalf("expected 2 hits, got %d", r.Len())
	}
	if r.Documents[1] != "second" || r.Metadatas[1].ChunkIndex != 2 || r.Distances[1] != 0.4 {
		t.Fatalf("columns out of order: %+v", r)
	}
}

func TestNewRetrievalEmpty(t *testing.T) {
	r := NewRetrieval(nil)
	if r.IDs == nil || r.Len() != 0 {
		t.Fatalf("expected empty non-nil columns, got %+v", r)
	}
}

func TestParseKnowledgeGraphWrappedInProse(t *testing.T) {
	raw := "Sure! Here is the graph:\n{\"nodes\":[{\"id\":\"1\",\"text\":\"Go\",\"explanation\":\"a language\"}],\"links\":[]}\nHope it helps."
	graph, err := ParseKnowledgeGraph(raw)
	if err != nil {
		t.Fatalf("ParseKnowledgeGraph() error = %v", err)
	}
	if len(graph.Nodes) != 1 || graph.Nodes[0].Text != "Go" {
		t.Fatalf("unexpected graph: %+v", graph)
	}
}

func TestParseKnowledgeGraphNoObject(t *testing.T) {
	_, err := ParseKnowledgeGraph("I cannot answer that.")
	if !errors.Is(err, ErrNoGraphJSON) {
		t.Fatalf("expected ErrNoGraphJSON, got %v", err)
	}
}

func TestParseKnowledgeGraphMalformed(t *testing.T) {
	_, err := ParseKnowledgeGraph(`{"nodes": [ {"id": "1", }`)
	if err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestWrapErrorKeepsKind(t *testing.T) {
	err := WrapError(ErrInvalidInput, "split", errors.New("size must be positive"))
	if !IsKind(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input kind, got %v", err)
	}
	if WrapError(ErrInvalidInput, "noop", nil) != nil {
		t.Fatalf("expected nil for nil error")
	}
}

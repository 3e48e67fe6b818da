package neo4j

import (
	"context"
	"errors"
	"testing"

	"github.com/Chaithz/thinkTree/internal/core/domain"
)

func TestGraphStatementsSkipsEmptyGraph(t *testing.T) {
	if stmts := graphStatements("q", nil); stmts != nil {
		t.Fatalf("expected no statements for nil graph")
	}
	if stmts := graphStatements("q", &domain.KnowledgeGraph{}); stmts != nil {
		t.Fatalf("expected no statements for empty graph")
	}
}

func TestGraphStatementsBuildsNodesAndLinks(t *testing.T) {
	graph := &domain.KnowledgeGraph{
		Nodes: []domain.GraphNode{
			{ID: "1", Text: "Go", Explanation: "language"},
			{ID: "", Text: "dropped"},
			{ID: "2", Text: "Channels"},
		},
		Links: []domain.GraphLink{
			{Source: "1", Target: "2"},
			{Source: "1", Target: ""},
		},
	}

	stmts := graphStatements("what is go", graph)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	if stmts[0].params["query"] != "what is go" {
		t.Fatalf("unexpected query param %v", stmts[0].params["query"])
	}
	nodes := stmts[0].params["nodes"].([]map[string]any)
	if len(nodes) != 2 || nodes[1]["text"] != "Channels" {
		t.Fatalf("unexpected nodes %v", nodes)
	}
	links := stmts[1].params["links"].([]map[string]any)
	if len(links) != 1 || links[0]["target"] != "2" {
		t.Fatalf("unexpected links %v", links)
	}
}

func TestSaveGraphWithoutLinksRunsSingleStatement(t *testing.T) {
	var got []statement
	s := &GraphStore{write: func(_ context.Context, stmts []statement) error {
		got = stmts
		return nil
	}}

	err := s.SaveGraph(context.Background(), "q", &domain.KnowledgeGraph{Nodes: []domain.GraphNode{{ID: "a"}}})
	if err != nil {
		t.Fatalf("SaveGraph() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(got))
	}
}

func TestSaveGraphReturnsWriteError(t *testing.T) {
	s := &GraphStore{write: func(context.Context, []statement) error {
		return errors.New("constraint violated")
	}}

	err := s.SaveGraph(context.Background(), "q", &domain.KnowledgeGraph{Nodes: []domain.GraphNode{{ID: "a"}}})
	if err == nil {
		t.Fatalf("expected error")
	}
}

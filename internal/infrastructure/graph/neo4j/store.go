package neo4j

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Chaithz/thinkTree/internal/core/domain"
	"github.com/Chaithz/thinkTree/internal/infrastructure/resilience"
)

const mergeConceptsQuery = `
MERGE (q:Query {text: $query})
SET q.asked_at = datetime()
WITH q
UNWIND $nodes AS n
MERGE (c:Concept {id: n.id})
SET c.text = n.text, c.explanation = n.explanation
MERGE (q)-[:MENTIONS]->(c)
`

const mergeLinksQuery = `
UNWIND $links AS l
MATCH (s:Concept {id: l.source})
MATCH (t:Concept {id: l.target})
MERGE (s)-[:RELATES_TO]->(t)
`

type statement struct {
	query  string
	params map[string]any
}

// GraphStore merges knowledge graphs into Neo4j. Concepts are keyed by
// node id, so repeated answers enrich the same nodes.
type GraphStore struct {
	driver   neo4j.DriverWithContext
	database string
	executor *resilience.Executor
	write    func(ctx context.Context, stmts []statement) error
}

func New(ctx context.Context, uri, username, password, database string, executor *resilience.Executor) (*GraphStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify neo4j connectivity: %w", err)
	}

	s := &GraphStore{driver: driver, database: database, executor: executor}
	s.write = s.writeTx
	return s, nil
}

func (s *GraphStore) SaveGraph(ctx context.Context, query string, graph *domain.KnowledgeGraph) error {
	stmts := graphStatements(query, graph)
	if len(stmts) == 0 {
		return nil
	}
	err := s.executor.Execute(ctx, "neo4j.save_graph", func(callCtx context.Context) error {
		return s.write(callCtx, stmts)
	}, classify)
	return resilience.WrapTemporary("neo4j save graph", err, classify)
}

func (s *GraphStore) Close(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}
	return s.driver.Close(ctx)
}

func (s *GraphStore) writeTx(ctx context.Context, stmts []statement) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, st := range stmts {
			result, err := tx.Run(ctx, st.query, st.params)
			if err != nil {
				return nil, err
			}
			if _, err := result.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("neo4j write graph: %w", err)
	}
	return nil
}

func graphStatements(query string, graph *domain.KnowledgeGraph) []statement {
	if graph == nil || len(graph.Nodes) == 0 {
		return nil
	}

	nodes := make([]map[string]any, 0, len(graph.Nodes))
	for _, n := range graph.Nodes {
		if n.ID == "" {
			continue
		}
		nodes = append(nodes, map[string]any{
			"id":          n.ID,
			"text":        n.Text,
			"explanation": n.Explanation,
		})
	}
	if len(nodes) == 0 {
		return nil
	}

	stmts := []statement{{
		query:  mergeConceptsQuery,
		params: map[string]any{"query": query, "nodes": nodes},
	}}

	links := make([]map[string]any, 0, len(graph.Links))
	for _, l := range graph.Links {
		if l.Source == "" || l.Target == "" {
			continue
		}
		links = append(links, map[string]any{"source": l.Source, "target": l.Target})
	}
	if len(links) > 0 {
		stmts = append(stmts, statement{
			query:  mergeLinksQuery,
			params: map[string]any{"links": links},
		})
	}
	return stmts
}

func classify(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	if neo4j.IsRetryable(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ClassifyHTTP(err)
}

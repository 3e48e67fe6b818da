package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoGraphJSON = errors.New("no JSON object found in model output")

type GraphNode struct {
	ID          string `json:"id"`
	Text        string `json:"text"`
	Explanation string `json:"explanation"`
}

type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// KnowledgeGraph is the answer shape the chat model is asked to produce.
type KnowledgeGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}

// ParseKnowledgeGraph interprets raw model output. The output is untrusted:
// only the outermost {...} span is decoded, nothing else is checked.
func ParseKnowledgeGraph(raw string) (*KnowledgeGraph, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, ErrNoGraphJSON
	}

	var graph KnowledgeGraph
	if err := json.Unmarshal([]byte(raw[start:end+1]), &graph); err != nil {
		return nil, fmt.Errorf("decode knowledge graph: %w", err)
	}

	if graph.Nodes == nil {
		graph.Nodes = []GraphNode{}
	}
	if graph.Links == nil {
		graph.Links = []GraphLink{}
	}
	return &graph, nil
}

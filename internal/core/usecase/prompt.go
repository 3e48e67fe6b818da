package usecase

import (
	"strings"
)

const exampleGraph = `{
  "nodes": [
    {"id": "1", "text": "Photosynthesis", "explanation": "Process plants use to turn light into chemical energy."},
    {"id": "2", "text": "Chlorophyll", "explanation": "Pigment that absorbs the light used in photosynthesis."},
    {"id": "3", "text": "Glucose", "explanation": "Sugar produced as the energy store."}
  ],
  "links": [
    {"source": "2", "target": "1"},
    {"source": "1", "target": "3"}
  ]
}`

// buildGraphPrompt embeds context and query verbatim. The output of the model
// is not trusted to follow the requested shape.
func buildGraphPrompt(contextDocs []string, query string) string {
	var b strings.Builder
	b.WriteString("You are building a knowledge graph that answers a question using the context below.\n")
	b.WriteString("Respond with ONLY a JSON object shaped exactly like this example, with no text before or after it:\n")
	b.WriteString(exampleGraph)
	b.WriteString("\n\nEvery node needs a unique string id, a short text label and a one sentence explanation.\n")
	b.WriteString("Every link connects the id of a source node to the id of a target node.\n\n")
	b.WriteString("Context:\n")
	b.WriteString(strings.Join(contextDocs, "\n"))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(query)
	b.WriteString("\n")
	return b.String()
}

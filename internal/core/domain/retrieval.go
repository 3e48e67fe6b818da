package domain

type RetrievedChunk struct {
	ID         string  `json:"id"`
	Text       string  `json:"text"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Distance   float64 `json:"distance"`
}

// QueryRequest is a free-text question plus an optional chat model override.
type QueryRequest struct {
	Text      string
	ModelName string
}

// Retrieval mirrors the column layout of a vector store query response:
// index i of every slice describes the same hit.
type Retrieval struct {
	IDs       []string        `json:"ids"`
	Documents []string        `json:"documents"`
	Metadatas []ChunkMetadata `json:"metadatas"`
	Distances []float64       `json:"distances"`
}

func NewRetrieval(chunks []RetrievedChunk) Retrieval {
	out := Retrieval{
		IDs:       make([]string, 0, len(chunks)),
		Documents: make([]string, 0, len(chunks)),
		Metadatas: make([]ChunkMetadata, 0, len(chunks)),
		Distances: make([]float64, 0, len(chunks)),
	}
	for _, c := range chunks {
		out.IDs = append(out.IDs, c.ID)
		out.Documents = append(out.Documents, c.Text)
		out.Metadatas = append(out.Metadatas, ChunkMetadata{Filename: c.Filename, ChunkIndex: c.ChunkIndex})
		out.Distances = append(out.Distances, c.Distance)
	}
	return out
}

func (r Retrieval) Len() int {
	return len(r.IDs)
}

type QueryResult struct {
	Query      string          `json:"query"`
	Result     Retrieval       `json:"result"`
	Answer     string          `json:"answer,omitempty"`
	Graph      *KnowledgeGraph `json:"graph,omitempty"`
	GraphError string          `json:"graph_error,omitempty"`
}

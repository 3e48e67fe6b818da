package domain

import (
	"fmt"
	"time"
)

const PDFMediaType = "application/pdf"

// Document is an uploaded file. It only lives for the duration of one upload.
type Document struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type ChunkMetadata struct {
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
}

// Chunk is the unit of storage and retrieval.
type Chunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkID returns the store key of the index-th chunk of filename.
// Two uploads with the same filename share ids, so the later one overwrites.
func ChunkID(filename string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", filename, index)
}

// NewChunks assigns ids and metadata to an ordered chunk list.
func NewChunks(filename string, texts []string) []Chunk {
	out := make([]Chunk, 0, len(texts))
	for i, text := range texts {
		out = append(out, Chunk{
			ID:   ChunkID(filename, i),
			Text: text,
			Metadata: ChunkMetadata{
				Filename:   filename,
				ChunkIndex: i,
			},
		})
	}
	return out
}

type Extraction struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type IngestResult struct {
	Filename    string   `json:"filename"`
	TotalChunks int      `json:"total_chunks"`
	Chunks      []string `json:"chunks,omitempty"`
}

// IndexedEvent is published after a document's chunks were written.
type IndexedEvent struct {
	Filename    string    `json:"filename"`
	Collection  string    `json:"collection"`
	TotalChunks int       `json:"total_chunks"`
	ChunkIDs    []string  `json:"chunk_ids"`
	IndexedAt   time.Time `json:"indexed_at"`
}

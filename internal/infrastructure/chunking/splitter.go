package chunking

import (
	"fmt"

	"github.com/Chaithz/thinkTree/internal/core/domain"
)

// Splitter cuts text into consecutive pieces of ChunkSize code points.
// Pieces never overlap and are not trimmed, so joining them restores the input.
type Splitter struct {
	ChunkSize int
}

func NewSplitter(chunkSize int) (*Splitter, error) {
	if chunkSize <= 0 {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"new splitter",
			fmt.Errorf("chunk size must be positive, got %d", chunkSize),
		)
	}
	return &Splitter{ChunkSize: chunkSize}, nil
}

func (s *Splitter) Split(text string) []string {
	if text == "" {
		return []string{}
	}

	runes := []rune(text)
	out := make([]string, 0, (len(runes)+s.ChunkSize-1)/s.ChunkSize)
	for start := 0; start < len(runes); start += s.ChunkSize {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Chaithz/thinkTree/internal/core/domain"
	"github.com/Chaithz/thinkTree/internal/core/ports"
)

const defaultTopK = 3

type QueryOptions struct {
	TopK int
	// GenerateAnswer enables the chat model call. Without it only retrieval runs.
	GenerateAnswer bool
}

type QueryUseCase struct {
	embedder  ports.Embedder
	store     ports.VectorStore
	generator ports.AnswerGenerator
	graphs    ports.GraphStore
	logger    *slog.Logger
	opts      QueryOptions
}

// NewQueryUseCase wires the read path. graphs may be nil.
func NewQueryUseCase(
	embedder ports.Embedder,
	store ports.VectorStore,
	generator ports.AnswerGenerator,
	graphs ports.GraphStore,
	logger *slog.Logger,
	opts QueryOptions,
) *QueryUseCase {
	if opts.TopK <= 0 {
		opts.TopK = defaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryUseCase{
		embedder:  embedder,
		store:     store,
		generator: generator,
		graphs:    graphs,
		logger:    logger,
		opts:      opts,
	}
}

func (uc *QueryUseCase) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "query", fmt.Errorf("query_text is required"))
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, req.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := uc.store.Query(ctx, queryVector, uc.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("query vector store: %w", err)
	}

	result := &domain.QueryResult{
		Query:  req.Text,
		Result: domain.NewRetrieval(hits),
	}
	if !uc.opts.GenerateAnswer || result.Result.Len() == 0 || uc.generator == nil {
		return result, nil
	}

	prompt := buildGraphPrompt(result.Result.Documents, req.Text)
	answer, err := uc.generator.Generate(ctx, req.ModelName, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}
	result.Answer = answer

	graph, err := domain.ParseKnowledgeGraph(answer)
	if err != nil {
		result.GraphError = err.Error()
		uc.logger.Info("knowledge_graph_unparsed", "error", err)
		return result, nil
	}
	result.Graph = graph

	if uc.graphs != nil {
		if err := uc.graphs.SaveGraph(ctx, req.Text, graph); err != nil {
			uc.logger.Warn("knowledge_graph_save_failed", "error", err)
		}
	}
	return result, nil
}

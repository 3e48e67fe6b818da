package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Chaithz/thinkTree/internal/config"
	"github.com/Chaithz/thinkTree/internal/core/ports"
	"github.com/Chaithz/thinkTree/internal/core/usecase"
	"github.com/Chaithz/thinkTree/internal/infrastructure/chunking"
	"github.com/Chaithz/thinkTree/internal/infrastructure/extractor/pdf"
	neo4jgraph "github.com/Chaithz/thinkTree/internal/infrastructure/graph/neo4j"
	"github.com/Chaithz/thinkTree/internal/infrastructure/llm/ollama"
	openaillm "github.com/Chaithz/thinkTree/internal/infrastructure/llm/openai"
	natsqueue "github.com/Chaithz/thinkTree/internal/infrastructure/queue/nats"
	"github.com/Chaithz/thinkTree/internal/infrastructure/resilience"
	"github.com/Chaithz/thinkTree/internal/infrastructure/storage/localfs"
	"github.com/Chaithz/thinkTree/internal/infrastructure/vector/pgvector"
	"github.com/Chaithz/thinkTree/internal/infrastructure/vector/qdrant"
	"github.com/Chaithz/thinkTree/internal/infrastructure/vector/sqlite"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	IngestUC *usecase.IngestUseCase
	QueryUC  *usecase.QueryUseCase
	Files    ports.DocumentSource

	closers []func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{Config: cfg, Logger: logger, Files: localfs.New("")}
	ok := false
	defer func() {
		if !ok {
			app.Close()
		}
	}()

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts: cfg.ResilienceRetryMaxAttempts,
		BreakerEnabled:   cfg.ResilienceBreakerEnabled,
	}, logger)
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout()}

	chunker, err := chunking.NewSplitter(cfg.ChunkSize)
	if err != nil {
		return nil, fmt.Errorf("init chunker: %w", err)
	}

	embedder, generator := newLLM(cfg, executor, httpClient)

	store, err := app.newVectorStore(ctx, cfg, executor)
	if err != nil {
		return nil, err
	}

	var events ports.IndexEventPublisher
	if cfg.NATSURL != "" {
		publisher, err := natsqueue.New(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			return nil, fmt.Errorf("init index event publisher: %w", err)
		}
		app.closers = append(app.closers, publisher.Close)
		events = publisher
	}

	var graphs ports.GraphStore
	if cfg.Neo4jURI != "" {
		graphStore, err := neo4jgraph.New(ctx, cfg.Neo4jURI, cfg.Neo4jUsername, cfg.Neo4jPassword, cfg.Neo4jDatabase, executor)
		if err != nil {
			return nil, fmt.Errorf("init graph store: %w", err)
		}
		app.closers = append(app.closers, func() { _ = graphStore.Close(context.Background()) })
		graphs = graphStore
	}

	app.IngestUC = usecase.NewIngestUseCase(
		pdf.NewExtractor(),
		chunker,
		embedder,
		store,
		events,
		logger,
		usecase.IngestOptions{
			Collection:     cfg.VectorCollection,
			MaxUploadBytes: cfg.MaxUploadBytes,
			EmbedBatchSize: cfg.EmbedBatchSize,
			IncludeChunks:  cfg.UploadIncludeChunks,
		},
	)
	app.QueryUC = usecase.NewQueryUseCase(
		embedder,
		store,
		generator,
		graphs,
		logger,
		usecase.QueryOptions{
			TopK:           cfg.RAGTopK,
			GenerateAnswer: cfg.QueryGenerateAnswer,
		},
	)

	logger.Info("bootstrap_ready",
		"vector_backend", cfg.VectorBackend,
		"collection", cfg.VectorCollection,
		"llm_provider", cfg.LLMProvider,
		"chunk_size", cfg.ChunkSize,
		"top_k", cfg.RAGTopK,
		"index_events", events != nil,
		"graph_store", graphs != nil,
	)
	ok = true
	return app, nil
}

func newLLM(cfg config.Config, executor *resilience.Executor, httpClient *http.Client) (ports.Embedder, ports.AnswerGenerator) {
	if cfg.LLMProvider == config.LLMProviderOpenAI {
		client := openaillm.New(openaillm.Config{
			APIKey:     cfg.OpenAIAPIKey,
			BaseURL:    cfg.OpenAIBaseURL,
			ChatModel:  cfg.OpenAIChatModel,
			EmbedModel: cfg.OpenAIEmbedModel,
			HTTPClient: httpClient,
			Executor:   executor,
		})
		return client, client
	}

	client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel,
		ollama.WithExecutor(executor),
		ollama.WithHTTPClient(httpClient),
	)
	return ollama.NewEmbedder(client), ollama.NewGenerator(client)
}

func (a *App) newVectorStore(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.VectorStore, error) {
	switch cfg.VectorBackend {
	case config.VectorBackendQdrant:
		return qdrant.New(cfg.QdrantURL, cfg.VectorCollection, executor), nil
	case config.VectorBackendPGVector:
		db, err := pgvector.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		store := pgvector.New(db, cfg.VectorCollection)
		a.closers = append(a.closers, func() { _ = store.Close() })
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return store, nil
	default:
		store, err := sqlite.Open(ctx, cfg.VectorPersistDir, cfg.VectorCollection)
		if err != nil {
			return nil, fmt.Errorf("open sqlite vector store: %w", err)
		}
		a.closers = append(a.closers, func() { _ = store.Close() })
		count, err := store.Count(ctx)
		if err != nil {
			return nil, err
		}
		a.Logger.Info("vector_store_opened", "path", store.Path(), "collection", cfg.VectorCollection, "chunks", count)
		return store, nil
	}
}

// Close releases backends in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Chaithz/thinkTree/internal/config"
	"github.com/Chaithz/thinkTree/internal/core/domain"
	natsqueue "github.com/Chaithz/thinkTree/internal/infrastructure/queue/nats"
	"github.com/Chaithz/thinkTree/internal/observability/logging"
)

// The worker follows the index event stream and logs every indexed document.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	logger := logging.NewJSONLogger("thinktree-worker", cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.NATSURL == "" {
		logger.Error("worker_requires_nats", "hint", "set NATS_URL")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, err := natsqueue.New(cfg.NATSURL, cfg.NATSSubject, natsqueue.Options{Logger: logger})
	if err != nil {
		logger.Error("nats_connect_failed", "error", err)
		os.Exit(1)
	}
	defer events.Close()

	logger.Info("worker_subscribed", "subject", cfg.NATSSubject)
	err = events.Subscribe(ctx, "workers", func(_ context.Context, event domain.IndexedEvent) error {
		logger.Info("document_indexed",
			"filename", event.Filename,
			"collection", event.Collection,
			"chunks", event.TotalChunks,
			"indexed_at", event.IndexedAt,
		)
		return nil
	})
	if err != nil {
		logger.Error("worker_subscribe_failed", "error", err)
		os.Exit(1)
	}
}

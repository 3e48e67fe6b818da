package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Chaithz/thinkTree/internal/bootstrap"
	"github.com/Chaithz/thinkTree/internal/config"
	"github.com/Chaithz/thinkTree/internal/core/ports"
	"github.com/Chaithz/thinkTree/internal/observability/logging"
)

// Runtime is the part of a bootstrapped app the commands use.
type Runtime struct {
	Ingest ports.DocumentIngestor
	Query  ports.DocumentQueryService
	Files  ports.DocumentSource
	Close  func()
}

// Loader builds a Runtime once flags are parsed.
type Loader func(cmd *cobra.Command) (*Runtime, error)

// NewRootCmd wires the subcommands. A nil load uses LoadRuntime.
func NewRootCmd(load Loader) *cobra.Command {
	if load == nil {
		load = LoadRuntime
	}

	var envFile, configFile string
	root := &cobra.Command{
		Use:           "thinktree",
		Short:         "Index PDFs and ask questions over them",
		Long:          "thinktree extracts PDF text, indexes it in a vector store and answers questions as knowledge graphs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if envFile != "" {
				if err := godotenv.Load(envFile); err != nil {
					return fmt.Errorf("load env file: %w", err)
				}
			} else {
				_ = godotenv.Load()
			}
			if configFile != "" {
				return os.Setenv("CONFIG_FILE", configFile)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file")
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML config file (same as CONFIG_FILE)")

	root.AddCommand(ingestCmd(load))
	root.AddCommand(queryCmd(load))
	root.AddCommand(mcpCmd(load))
	return root
}

// LoadRuntime reads config and bootstraps the backends. Logs go to stderr so
// stdout stays machine readable.
func LoadRuntime(cmd *cobra.Command) (*Runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := logging.New(cmd.ErrOrStderr(), "thinktree-cli", cfg.LogLevel)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Runtime{
		Ingest: app.IngestUC,
		Query:  app.QueryUC,
		Files:  app.Files,
		Close:  app.Close,
	}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

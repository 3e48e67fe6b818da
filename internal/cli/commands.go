package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	mcpadapter "github.com/Chaithz/thinkTree/internal/adapters/mcp"
	"github.com/Chaithz/thinkTree/internal/core/domain"
	"github.com/Chaithz/thinkTree/internal/core/usecase"
)

func ingestCmd(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file.pdf>...",
		Short: "Index local PDF files",
		Long:  "Extracts, chunks and embeds each PDF. Prints one JSON result per file.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := load(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx := commandContext(cmd)
			for _, path := range args {
				result, err := usecase.IngestLocal(ctx, rt.Ingest, rt.Files, path)
				if err != nil {
					return fmt.Errorf("ingest %s: %w", path, err)
				}
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func queryCmd(load Loader) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Ask a question over indexed documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := load(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.Query.Query(commandContext(cmd), domain.QueryRequest{Text: args[0], ModelName: model})
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVarP(&model, "model", "m", "", "Chat model override")
	return cmd
}

func mcpCmd(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the query and ingest tools over MCP stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := load(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			srv := mcpadapter.New(rt.Ingest, rt.Query, rt.Files)
			return srv.ServeStdio(commandContext(cmd), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

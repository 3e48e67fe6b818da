package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/Chaithz/thinkTree/internal/core/domain"
	"github.com/Chaithz/thinkTree/internal/core/ports"
	"github.com/Chaithz/thinkTree/internal/core/usecase"
)

const (
	serverName    = "thinktree"
	serverVersion = "1.0.0"
)

// Server exposes the query and ingest use cases as MCP tools.
type Server struct {
	ingestUC ports.DocumentIngestor
	queryUC  ports.DocumentQueryService
	files    ports.DocumentSource
	mcp      *server.MCPServer
}

func New(ingestUC ports.DocumentIngestor, queryUC ports.DocumentQueryService, files ports.DocumentSource) *Server {
	s := &Server{
		ingestUC: ingestUC,
		queryUC:  queryUC,
		files:    files,
		mcp:      server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(false)),
	}

	s.mcp.AddTool(
		mcp.NewTool("query_documents",
			mcp.WithDescription("Search indexed PDF chunks and ask the chat model for a knowledge graph answer."),
			mcp.WithString("query_text", mcp.Required(), mcp.Description("Free-text question.")),
			mcp.WithString("model_name", mcp.Description("Chat model override.")),
		),
		s.queryDocuments,
	)
	s.mcp.AddTool(
		mcp.NewTool("ingest_pdf",
			mcp.WithDescription("Extract, chunk and index a PDF file from the local filesystem."),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to a .pdf file.")),
		),
		s.ingestPDF,
	)
	return s
}

// ServeStdio blocks until ctx is done or stdin closes.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

func (s *Server) queryDocuments(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("query_text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.queryUC.Query(ctx, domain.QueryRequest{
		Text:      text,
		ModelName: request.GetString("model_name", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) ingestPDF(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := usecase.IngestLocal(ctx, s.ingestUC, s.files, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}

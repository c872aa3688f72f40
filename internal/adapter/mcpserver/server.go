// Package mcpserver exposes registered tools over the MCP stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"webscout/internal/adapter/tool"
	"webscout/internal/domain"
)

// Server bridges the tool registry to an MCP stdio endpoint. Protocol
// framing lives entirely in mcp-go; this adapter only translates
// between MCP call payloads and domain.Tool.
type Server struct {
	mcp    *server.MCPServer
	logger *slog.Logger
}

// New builds an MCP server exposing every tool in the registry.
func New(name, version string, registry *tool.Registry, logger *slog.Logger) *Server {
	s := &Server{
		mcp:    server.NewMCPServer(name, version),
		logger: logger,
	}

	for _, t := range registry.List() {
		s.addTool(t)
	}
	return s
}

func (s *Server) addTool(t domain.Tool) {
	schema := t.Schema()
	mcpTool := mcp.NewToolWithRawSchema(schema.Name, schema.Description, schema.Parameters)

	s.mcp.AddTool(mcpTool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(req.GetArguments())
		if err != nil {
			return mcp.NewToolResultError(errorPayload(fmt.Sprintf("invalid arguments: %v", err))), nil
		}

		s.logger.Debug("tool call", "tool", t.Name())

		result, err := t.Execute(ctx, raw)
		if err != nil {
			// Execute folds handler failures into the result; an error
			// here is an unexpected boundary fault. Still answer with a
			// well-formed payload rather than a protocol error.
			s.logger.Error("tool execution fault", "tool", t.Name(), "error", err)
			return mcp.NewToolResultError(errorPayload(err.Error())), nil
		}

		if result.IsError {
			return mcp.NewToolResultError(errorPayload(result.Content)), nil
		}
		return mcp.NewToolResultText(result.Content), nil
	})

	s.logger.Info("tool registered", "tool", t.Name())
}

// Serve runs the stdio transport until ctx is cancelled or the peer
// closes the stream.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("mcp server listening on stdio")
	return server.NewStdioServer(s.mcp).Listen(ctx, in, out)
}

// errorPayload serializes a top-level error so callers always receive
// structured JSON, even for faults outside any single batch item.
func errorPayload(msg string) string {
	data, err := json.Marshal(map[string]string{
		"status": domain.StatusError,
		"error":  msg,
	})
	if err != nil {
		return msg
	}
	return string(data)
}

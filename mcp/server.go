// Package mcp serves the relay's tools over the Model Context Protocol's
// streamable HTTP transport. The server is stateless and answers every POST
// with a single JSON body; it never opens an event stream.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sonnes/dakiya/core"
)

// Options configures the MCP server.
type Options struct {
	Name         string // server name reported on initialize
	Version      string
	Instructions string
	Logger       *log.Logger
}

// NewServer registers tools on a new MCP server.
func NewServer(tools []ToolDefinition, opts Options) *sdk.Server {
	if opts.Name == "" {
		opts.Name = "dakiya"
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	srv := sdk.NewServer(
		&sdk.Implementation{Name: opts.Name, Version: opts.Version},
		&sdk.ServerOptions{Instructions: opts.Instructions},
	)
	for _, t := range tools {
		srv.AddTool(&sdk.Tool{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.InputSchema,
		}, toolHandler(t, opts.Logger))
	}
	return srv
}

// NewHandler returns an http.Handler serving tools over streamable HTTP.
func NewHandler(tools []ToolDefinition, opts Options) http.Handler {
	srv := NewServer(tools, opts)
	return sdk.NewStreamableHTTPHandler(
		func(*http.Request) *sdk.Server { return srv },
		&sdk.StreamableHTTPOptions{Stateless: true, JSONResponse: true},
	)
}

// toolHandler adapts a ToolDefinition. Argument decoding failures are
// protocol errors; anything the tool itself reports, validation included,
// becomes an isError result the calling model can read.
func toolHandler(def ToolDefinition, logger *log.Logger) sdk.ToolHandler {
	return func(ctx context.Context, req *sdk.CallToolRequest) (*sdk.CallToolResult, error) {
		out, err := def.Function(ctx, req.Params.Arguments)
		switch {
		case errors.Is(err, errInvalidArguments):
			return nil, err
		case err != nil:
			if !errors.Is(err, core.ErrValidation) {
				logger.Warn("tool failed", "tool", def.Name, "error", err)
			}
			return &sdk.CallToolResult{
				Content: []sdk.Content{&sdk.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}

		data, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		return &sdk.CallToolResult{
			Content:           []sdk.Content{&sdk.TextContent{Text: string(data)}},
			StructuredContent: out,
		}, nil
	}
}

// Package mcp exposes the heritage tools over the Model Context Protocol so
// other agents can call the record lookup and the visualization generator.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"heritage/internal/logger"
	"heritage/internal/tool"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverName = "heritage"

// Server wraps the SDK server with every declared tool registered.
type Server struct {
	server   *mcp.Server
	registry *tool.Registry
	logger   *logger.Logger
}

// NewServer creates an MCP server backed by registry.
func NewServer(registry *tool.Registry, version string, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{
		server:   mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil),
		registry: registry,
		logger:   log,
	}
	for _, d := range registry.Descriptors() {
		s.server.AddTool(&mcp.Tool{
			Name:        d.Name(),
			Description: d.Description,
			InputSchema: d.Schema(),
		}, s.handler(d.ID))
	}
	return s
}

// Run serves a single session over transport until ctx is done or the peer
// disconnects.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// ServeStdio serves over the process's stdin and stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Run(ctx, &mcp.StdioTransport{})
}

// Connect starts a session over transport without blocking.
func (s *Server) Connect(ctx context.Context, transport mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, transport, nil)
}

func (s *Server) handler(id tool.ID) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		call, err := tool.ParseArguments(id, "mcp", req.Params.Arguments)
		var malformed *tool.MalformedToolCallError
		if errors.As(err, &malformed) {
			s.logger.Warn("mcp: %v", err)
			return errorResult(tool.ErrorResult(malformed.Error()).Output), nil
		}
		if err != nil {
			return nil, err
		}

		s.logger.ToolCall(0, id.Name(), string(call.Arguments()))
		result, err := s.registry.Dispatch(ctx, call)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", id.Name(), err)
		}
		s.logger.Debug("mcp: %s -> %s", id.Name(), result.Status)

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result.Output}},
			IsError: !result.Success(),
		}, nil
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

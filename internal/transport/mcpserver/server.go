// Package mcpserver exposes the memory engine over the Model Context
// Protocol so agent runtimes can store and retrieve memories as tools.
package mcpserver

import (
	"context"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mindstash/mindstash/internal/core"
	"github.com/mindstash/mindstash/internal/engine"
	"github.com/mindstash/mindstash/pkg/log"
)

type Server struct {
	engine *engine.Engine
	mcp    *server.MCPServer
}

func NewServer(eng *engine.Engine) *Server {
	s := &Server{
		engine: eng,
		mcp: server.NewMCPServer(
			core.AppName,
			core.AppVersion,
			server.WithToolCapabilities(false),
		),
	}
	s.registerTools()
	return s
}

// Start serves MCP over stdio until the context is cancelled or stdin
// closes. Logs go to stderr; stdout belongs to the protocol.
func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("serving MCP over stdio")
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return nil
}

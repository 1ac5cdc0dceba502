// Package mcp exposes the daily task store to automation agents as a Model
// Context Protocol server.
package mcp

import (
	"context"
	"net/http"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/TaskScheduler/internal/domain/task"
)

// TaskManager is the subset of the task service the MCP tools call.
type TaskManager interface {
	List(ctx context.Context) ([]task.Task, error)
	ListPending(ctx context.Context) ([]task.Task, error)
	Create(ctx context.Context, req *task.CreateRequest) (*task.Task, error)
	UpdateStatus(ctx context.Context, id string, req task.UpdateStatusRequest) (*task.Task, error)
	Delete(ctx context.Context, id string) error
	Now() time.Time
}

// ServerConfig holds MCP server identity.
type ServerConfig struct {
	Name    string
	Version string
}

// ServerDeps holds the services the tools operate on.
type ServerDeps struct {
	Tasks TaskManager
}

// Server wraps an mcp-go server with the task tools and resources registered.
type Server struct {
	cfg       ServerConfig
	deps      ServerDeps
	mcpServer *mcpserver.MCPServer
}

// NewServer creates an MCP server and registers all tools and resources.
func NewServer(cfg ServerConfig, deps ServerDeps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithResourceCapabilities(false, false),
		),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *mcpserver.MCPServer {
	return s.mcpServer
}

// Handler returns the streamable HTTP transport for mounting on a router.
func (s *Server) Handler() http.Handler {
	return mcpserver.NewStreamableHTTPServer(s.mcpServer)
}

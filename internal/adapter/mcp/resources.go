package mcp

import (
	"context"
	"encoding/json"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

const (
	resourceToday   = "tasks://today"
	resourcePending = "tasks://pending"
)

// registerResources registers all MCP resources on the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(
		mcplib.NewResource(
			resourceToday,
			"Today's Tasks",
			mcplib.WithResourceDescription("Every task in today's bucket"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handleTodayResource,
	)

	s.mcpServer.AddResource(
		mcplib.NewResource(
			resourcePending,
			"Pending Tasks",
			mcplib.WithResourceDescription("Today's pending tasks that are due"),
			mcplib.WithMIMEType("application/json"),
		),
		s.handlePendingResource,
	)
}

func (s *Server) handleTodayResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Tasks == nil {
		return notConfigured(req.Params.URI), nil
	}
	tasks, err := s.deps.Tasks.List(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, tasks)
}

func (s *Server) handlePendingResource(ctx context.Context, req mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	if s.deps.Tasks == nil {
		return notConfigured(req.Params.URI), nil
	}
	tasks, err := s.deps.Tasks.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(req.Params.URI, tasks)
}

func notConfigured(uri string) []mcplib.ResourceContents {
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     `{"error":"task service not configured"}`,
		},
	}
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

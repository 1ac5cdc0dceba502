package mcp

import (
	"context"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
)

func TestResourcesNotConfigured(t *testing.T) {
	s := NewServer(ServerConfig{Name: "test", Version: "0.1.0"}, ServerDeps{})

	req := mcplib.ReadResourceRequest{}
	req.Params.URI = resourceToday

	contents, err := s.handleTodayResource(context.Background(), req)
	if err != nil {
		t.Fatalf("handleTodayResource: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("expected 1 content, got %d", len(contents))
	}
	text, ok := contents[0].(mcplib.TextResourceContents)
	if !ok {
		t.Fatal("expected TextResourceContents")
	}
	if !strings.Contains(text.Text, "not configured") {
		t.Errorf("text = %q", text.Text)
	}
}

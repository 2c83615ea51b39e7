// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes SwiftFind tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/swiftfind/swiftfind/internal/service"
)

// Server wraps the MCP server with SwiftFind tools.
type Server struct {
	mcp *server.MCPServer
	svc *service.Service
}

// New creates a new MCP server with all SwiftFind tools registered.
func New(svc *service.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"SwiftFind",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_items",
		mcp.WithDescription("Search the launcher catalog: apps, files, folders, actions and "+
			"clipboard history. Queries may use the SwiftFind query syntax (kind:, ext:, "+
			"modified:, @mode prefixes). Read the swiftfind://query-syntax resource or the "+
			"get_query_syntax tool for the full grammar."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (defaults to the configured cap)")),
	), s.searchItems)

	s.mcp.AddTool(mcp.NewTool("launch_item",
		mcp.WithDescription("Launch a result by its id (preferred) or open a filesystem path directly."),
		mcp.WithString("id", mcp.Description("Result id from search_items")),
		mcp.WithString("path", mcp.Description("Filesystem path to open when no id is given")),
	), s.launchItem)

	s.mcp.AddTool(mcp.NewTool("rebuild_index",
		mcp.WithDescription("Run every discovery provider and refresh the search catalog. "+
			"Returns a per-provider report."),
	), s.rebuildIndex)

	s.mcp.AddTool(mcp.NewTool("get_query_syntax",
		mcp.WithDescription("Returns the SwiftFind query syntax reference. "+
			"Call this before composing queries with operators."),
	), s.getQuerySyntax)

	// Resource: query syntax reference.
	s.mcp.AddResource(
		mcp.NewResource("swiftfind://query-syntax", "Query Syntax Reference",
			mcp.WithResourceDescription("The launcher query grammar: modes, operators and time windows."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readQuerySyntaxResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchItems(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := 0
	if v, numErr := req.RequireInt("limit"); numErr == nil {
		limit = v
	}
	results, err := s.svc.Search(query, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) launchItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := ""
	if v, err := req.RequireString("id"); err == nil {
		id = v
	}
	path := ""
	if v, err := req.RequireString("path"); err == nil {
		path = v
	}
	if err := s.svc.Launch(id, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	target := id
	if target == "" {
		target = path
	}
	return mcp.NewToolResultText(fmt.Sprintf("launched: %s", target)), nil
}

func (s *Server) rebuildIndex(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	report, err := s.svc.RebuildWithReport()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getQuerySyntax(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(QuerySyntaxContract), nil
}

func (s *Server) readQuerySyntaxResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "swiftfind://query-syntax",
			MIMEType: "text/markdown",
			Text:     QuerySyntaxContract,
		},
	}, nil
}

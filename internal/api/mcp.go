package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/frank/internal/finder"
	"github.com/kalambet/frank/internal/roster"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Roster  *roster.Store
	Finder  *finder.Service
	Version string
}

// NewMCPServer creates an MCP server exposing expert search and lookup.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	s := server.NewMCPServer(
		serviceName,
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("frank finds internal and external experts for a natural-language need."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_experts",
			mcp.WithDescription("Rank the expert roster against a natural-language query."),
			mcp.WithString("query", mcp.Description("What kind of expert is needed"), mcp.Required()),
			mcp.WithString("mode", mcp.Description("ai (default) or keyword")),
			mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 10)")),
		),
		mcpSearchExperts(deps),
	)

	s.AddTool(
		mcp.NewTool("find_external_experts",
			mcp.WithDescription("Generate new external expert profiles for a query, add them to the roster, and return the re-ranked results."),
			mcp.WithString("query", mcp.Description("What kind of expert is needed"), mcp.Required()),
		),
		mcpFindExternal(deps),
	)

	s.AddTool(
		mcp.NewTool("get_expert",
			mcp.WithDescription("Fetch one expert profile by ID."),
			mcp.WithString("id", mcp.Description("Expert ID, e.g. int-001"), mcp.Required()),
		),
		mcpGetExpert(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"experts://roster",
			"Expert Roster",
			mcp.WithResourceDescription("All experts, seed first, as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceRoster(deps),
	)

	return s
}

func mcpSearchExperts(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}
		mode, err := finder.ParseMode(req.GetString("mode", ""))
		if err != nil {
			return mcpError(err.Error()), nil
		}
		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}

		out, err := deps.Finder.Search(ctx, query, mode)
		if err != nil {
			return mcpError(fmt.Sprintf("search failed: %v", err)), nil
		}
		if len(out.Results) > limit {
			out.Results = out.Results[:limit]
		}
		return mcpJSON(out)
	}
}

func mcpFindExternal(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}
		out, err := deps.Finder.Discover(ctx, query)
		if err != nil {
			return mcpError(fmt.Sprintf("discovery failed: %v", err)), nil
		}
		return mcpJSON(out)
	}
}

func mcpGetExpert(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcpError("id is required"), nil
		}
		e, err := deps.Roster.Get(id)
		if errors.Is(err, roster.ErrNotFound) {
			return mcpError(fmt.Sprintf("expert %s not found", id)), nil
		}
		if err != nil {
			return mcpError(err.Error()), nil
		}
		return mcpJSON(e)
	}
}

func mcpResourceRoster(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		b, err := json.Marshal(deps.Roster.All())
		if err != nil {
			return nil, fmt.Errorf("marshalling roster: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpJSON(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return mcpError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}

// Command icebreaker-tool-profile-search is an MCP server exposing web
// search to the lookup agents.
//
// Environment:
//
//	SEARCH_BACKEND      tavily (default) or duckduckgo
//	TAVILY_API_KEY      required for tavily
//	SEARCH_MAX_RESULTS  hits per query (default 5)
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/michaelbrown/icebreaker/internal/search"
)

func main() {
	maxResults, _ := strconv.Atoi(os.Getenv("SEARCH_MAX_RESULTS"))
	searcher, searchErr := search.New(search.Options{
		Backend:    os.Getenv("SEARCH_BACKEND"),
		APIKey:     os.Getenv("TAVILY_API_KEY"),
		MaxResults: maxResults,
	})

	def := search.ToolDef()
	s := server.NewMCPServer("icebreaker-profile-search", "0.1.0")

	s.AddTool(mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query",
				},
			},
			Required: []string{"query"},
		},
	}, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := getArgs(request)
		query, _ := args["query"].(string)
		if query == "" {
			return errResult("'query' is required"), nil
		}
		if searchErr != nil {
			return errResult(searchErr.Error()), nil
		}

		resp, err := searcher.Search(ctx, query)
		if err != nil {
			return errResult(err.Error()), nil
		}
		return textResult(search.Digest(resp)), nil
	})

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func getArgs(request mcp.CallToolRequest) map[string]any {
	args, _ := request.Params.Arguments.(map[string]any)
	return args
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}
}

func errResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: true,
	}
}

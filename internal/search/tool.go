package search

import (
	"context"
	"fmt"

	"github.com/michaelbrown/icebreaker/internal/llm"
	"github.com/michaelbrown/icebreaker/internal/tools"
)

// ToolName is the name the lookup agents call the search tool by.
const ToolName = "web_search"

// ToolDef describes the search tool to the LLM.
func ToolDef() llm.ToolDef {
	return llm.ToolDef{
		Name:        ToolName,
		Description: "Search the web. Returns the best direct answer, if any, followed by a numbered list of result titles, links and snippets.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Tool exposes a Searcher as an in-process agent toolbox, used when no MCP
// search server is configured.
type Tool struct {
	Searcher Searcher
}

var _ tools.Toolbox = (*Tool)(nil)

func (t *Tool) AllTools() []llm.ToolDef {
	return []llm.ToolDef{ToolDef()}
}

func (t *Tool) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if name != ToolName {
		return "", fmt.Errorf("calling %s: %w", name, tools.ErrUnknownTool)
	}
	query, _ := args["query"].(string)
	if query == "" {
		return "error: 'query' is required", nil
	}
	resp, err := t.Searcher.Search(ctx, query)
	if err != nil {
		return "", err
	}
	return Digest(resp), nil
}

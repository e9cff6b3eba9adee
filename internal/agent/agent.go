package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/michaelbrown/icebreaker/internal/llm"
	"github.com/michaelbrown/icebreaker/internal/tools"
)

const defaultSystemPrompt = `You are a research assistant with access to a web search tool.
Use the tool to find the requested information and answer with the result only.`

// Agent manages a conversation and executes the ReAct loop.
type Agent struct {
	llm          llm.Client
	toolbox      tools.Toolbox
	history      []llm.Message
	tools        []llm.ToolDef
	maxIter      int
	OnToolCall   func(name string, args map[string]any)
	OnToolResult func(name string, result string)
}

// New creates an Agent with the given LLM client, toolbox, and iteration limit.
// A nil toolbox gives an agent that can only answer from the model itself.
func New(client llm.Client, toolbox tools.Toolbox, maxIterations int) *Agent {
	if maxIterations <= 0 {
		maxIterations = 10
	}
	a := &Agent{
		llm:     client,
		toolbox: toolbox,
		maxIter: maxIterations,
		history: []llm.Message{
			llm.SystemMessage(defaultSystemPrompt),
		},
	}
	if toolbox != nil {
		a.tools = toolbox.AllTools()
	}
	return a
}

// SetSystemPrompt overrides the default system prompt.
func (a *Agent) SetSystemPrompt(prompt string) {
	if prompt != "" {
		a.history[0] = llm.SystemMessage(prompt)
	}
}

// FilterTools restricts available tools to the given names.
func (a *Agent) FilterTools(names []string) {
	if len(names) == 0 {
		return
	}
	allowed := make(map[string]bool, len(names))
	for _, n := range names {
		allowed[n] = true
	}
	var filtered []llm.ToolDef
	for _, t := range a.tools {
		if allowed[t.Name] {
			filtered = append(filtered, t)
		}
	}
	a.tools = filtered
}

// Run sends a user message and executes the full ReAct loop.
// Returns the final assistant text response.
func (a *Agent) Run(ctx context.Context, userMessage string) (string, error) {
	a.history = append(a.history, llm.UserMessage(userMessage))

	for i := 0; i < a.maxIter; i++ {
		resp, err := a.llm.ChatCompletion(ctx, a.history, a.tools)
		if err != nil {
			return "", fmt.Errorf("llm call (iteration %d): %w", i+1, err)
		}

		a.history = append(a.history, resp.Message)

		if len(resp.Message.ToolCalls) == 0 {
			return resp.Message.Content, nil
		}

		for _, tc := range resp.Message.ToolCalls {
			if a.OnToolCall != nil {
				a.OnToolCall(tc.Name, tc.Args)
			}
			result := a.executeTool(ctx, tc)
			if a.OnToolResult != nil {
				a.OnToolResult(tc.Name, result)
			}
			a.history = append(a.history, llm.ToolResultMessage(tc.ID, result))
		}
	}

	return "", fmt.Errorf("agent reached max iterations (%d) without a final response", a.maxIter)
}

// executeTool dispatches a tool call to the toolbox. Failures are returned
// to the model as text so it can try another query.
func (a *Agent) executeTool(ctx context.Context, tc llm.ToolCall) string {
	if a.toolbox == nil {
		return fmt.Sprintf("error: unknown tool %q", tc.Name)
	}
	result, err := a.toolbox.CallTool(ctx, tc.Name, tc.Args)
	if err != nil {
		return fmt.Sprintf("error: %s", err)
	}
	return result
}

// History returns the current conversation history (for debugging/display).
func (a *Agent) History() []llm.Message {
	return a.history
}

// HistoryJSON returns the conversation as formatted JSON (for debugging).
func (a *Agent) HistoryJSON() string {
	data, _ := json.MarshalIndent(a.history, "", "  ")
	return string(data)
}

// FormatToolCall returns a human-readable string for a tool call.
func FormatToolCall(name string, args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(parts, ", "))
}

package agent

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/michaelbrown/icebreaker/internal/llm"
)

// scriptedClient returns canned responses in order and records what it saw.
type scriptedClient struct {
	responses []llm.Message
	calls     int
	seenTools [][]llm.ToolDef
	err       error
}

func (c *scriptedClient) ChatCompletion(_ context.Context, _ []llm.Message, tools []llm.ToolDef) (*llm.Response, error) {
	if c.err != nil {
		return nil, c.err
	}
	c.seenTools = append(c.seenTools, tools)
	msg := c.responses[c.calls]
	c.calls++
	return &llm.Response{Message: msg}, nil
}

func (c *scriptedClient) ChatCompletionStream(ctx context.Context, msgs []llm.Message, tools []llm.ToolDef, _ llm.StreamHandler) (*llm.Response, error) {
	return c.ChatCompletion(ctx, msgs, tools)
}

type fakeToolbox struct {
	calls []map[string]any
	err   error
}

func (f *fakeToolbox) AllTools() []llm.ToolDef {
	return []llm.ToolDef{{Name: "web_search"}, {Name: "web_fetch"}}
}

func (f *fakeToolbox) CallTool(_ context.Context, name string, args map[string]any) (string, error) {
	f.calls = append(f.calls, args)
	if f.err != nil {
		return "", f.err
	}
	return "1. Yann LeCun\n   https://www.linkedin.com/in/yann-lecun/", nil
}

func toolCall(query string) llm.Message {
	return llm.Message{
		Role:      llm.RoleAssistant,
		ToolCalls: []llm.ToolCall{{ID: "call_1", Name: "web_search", Args: map[string]any{"query": query}}},
	}
}

func TestRunWithToolCall(t *testing.T) {
	client := &scriptedClient{responses: []llm.Message{
		toolCall("Yann LeCun LinkedIn"),
		llm.AssistantMessage("https://www.linkedin.com/in/yann-lecun/"),
	}}
	tb := &fakeToolbox{}
	a := New(client, tb, 5)

	var called, resulted string
	a.OnToolCall = func(name string, _ map[string]any) { called = name }
	a.OnToolResult = func(name, _ string) { resulted = name }

	got, err := a.Run(context.Background(), "Yann LeCun")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got != "https://www.linkedin.com/in/yann-lecun/" {
		t.Errorf("Run = %q", got)
	}
	if len(tb.calls) != 1 || tb.calls[0]["query"] != "Yann LeCun LinkedIn" {
		t.Errorf("tool calls = %v", tb.calls)
	}
	if called != "web_search" || resulted != "web_search" {
		t.Errorf("callbacks called=%q resulted=%q", called, resulted)
	}

	// system, user, assistant(tool call), tool result, assistant
	if n := len(a.History()); n != 5 {
		t.Errorf("history length = %d, want 5", n)
	}
}

func TestRunToolErrorIsFedBack(t *testing.T) {
	client := &scriptedClient{responses: []llm.Message{
		toolCall("q"),
		llm.AssistantMessage("unknown"),
	}}
	a := New(client, &fakeToolbox{err: errors.New("quota exceeded")}, 5)

	if _, err := a.Run(context.Background(), "x"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	toolMsg := a.History()[3]
	if toolMsg.Role != llm.RoleTool || !strings.Contains(toolMsg.Content, "quota exceeded") {
		t.Errorf("tool result = %+v", toolMsg)
	}
}

func TestRunMaxIterations(t *testing.T) {
	client := &scriptedClient{responses: []llm.Message{toolCall("a"), toolCall("b")}}
	a := New(client, &fakeToolbox{}, 2)

	_, err := a.Run(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "max iterations") {
		t.Fatalf("Run = %v, want max iterations error", err)
	}
}

func TestRunLLMError(t *testing.T) {
	a := New(&scriptedClient{err: errors.New("boom")}, nil, 2)
	if _, err := a.Run(context.Background(), "x"); err == nil {
		t.Fatal("Run should propagate LLM errors")
	}
}

func TestFilterToolsAndPrompt(t *testing.T) {
	client := &scriptedClient{responses: []llm.Message{llm.AssistantMessage("ok")}}
	a := New(client, &fakeToolbox{}, 1)
	a.FilterTools([]string{"web_search"})
	a.SetSystemPrompt("custom")

	if _, err := a.Run(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	if len(client.seenTools[0]) != 1 || client.seenTools[0][0].Name != "web_search" {
		t.Errorf("tools sent = %+v", client.seenTools[0])
	}
	if a.History()[0].Content != "custom" {
		t.Errorf("system prompt = %q", a.History()[0].Content)
	}

	if !strings.Contains(a.HistoryJSON(), `"content": "custom"`) {
		t.Errorf("HistoryJSON = %s", a.HistoryJSON())
	}
}

func TestFormatToolCall(t *testing.T) {
	got := FormatToolCall("web_search", map[string]any{"query": "x", "limit": 3})
	if got != "web_search(limit=3, query=x)" {
		t.Errorf("FormatToolCall = %q", got)
	}
}

func TestLoadProfileOverride(t *testing.T) {
	dir := t.TempDir()
	base := Profile{Name: "linkedin", SystemPrompt: "base", MaxIter: 5}

	got, err := LoadProfileOverride(dir, "linkedin", base)
	if err != nil || got.SystemPrompt != "base" {
		t.Fatalf("missing file: got %+v, %v", got, err)
	}

	yaml := "system_prompt: |\n  Find {name}.\nmodel: gpt-4o-mini\n"
	if err := os.WriteFile(filepath.Join(dir, "linkedin.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err = LoadProfileOverride(dir, "linkedin", base)
	if err != nil {
		t.Fatalf("LoadProfileOverride: %v", err)
	}
	if got.SystemPrompt != "Find {name}.\n" || got.Model != "gpt-4o-mini" {
		t.Errorf("override not applied: %+v", got)
	}
	if got.MaxIter != 5 || got.Name != "linkedin" {
		t.Errorf("base fields lost: %+v", got)
	}
}

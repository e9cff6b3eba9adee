package icebreaker

import (
	"context"
	"errors"
	"testing"

	"github.com/michaelbrown/icebreaker/internal/llm"
)

// scriptedClient answers every completion with the same content.
type scriptedClient struct {
	content string
	deltas  []string
	err     error
	got     []llm.Message
}

func (c *scriptedClient) ChatCompletion(_ context.Context, messages []llm.Message, _ []llm.ToolDef) (*llm.Response, error) {
	c.got = messages
	if c.err != nil {
		return nil, c.err
	}
	return &llm.Response{Message: llm.AssistantMessage(c.content)}, nil
}

func (c *scriptedClient) ChatCompletionStream(ctx context.Context, messages []llm.Message, tools []llm.ToolDef, handler llm.StreamHandler) (*llm.Response, error) {
	for _, d := range c.deltas {
		handler(d)
	}
	return c.ChatCompletion(ctx, messages, tools)
}

func TestLLMGenerator(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"text", "  A short summary.\n\n1. Fact one\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &scriptedClient{content: tt.content}
			g := &LLMGenerator{Client: client}

			got, err := g.Generate(context.Background(), "prompt")
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if got != tt.content {
				t.Errorf("Generate = %q, want %q", got, tt.content)
			}
			if len(client.got) != 1 || client.got[0].Role != llm.RoleUser || client.got[0].Content != "prompt" {
				t.Errorf("messages = %+v, want one user message", client.got)
			}

			got, err = g.GenerateStream(context.Background(), "prompt", func(string) {})
			if err != nil || got != tt.content {
				t.Errorf("GenerateStream = %q, %v, want %q", got, err, tt.content)
			}
		})
	}
}

func TestLLMGeneratorStreamDeltas(t *testing.T) {
	client := &scriptedClient{content: "Hello there", deltas: []string{"Hello", " there"}}
	g := &LLMGenerator{Client: client}

	var streamed string
	got, err := g.GenerateStream(context.Background(), "prompt", func(d string) { streamed += d })
	if err != nil {
		t.Fatalf("GenerateStream: %v", err)
	}
	if streamed != "Hello there" || got != "Hello there" {
		t.Errorf("streamed %q, returned %q", streamed, got)
	}
}

func TestLLMGeneratorError(t *testing.T) {
	boom := errors.New("rate limited")
	g := &LLMGenerator{Client: &scriptedClient{err: boom}}
	if _, err := g.Generate(context.Background(), "prompt"); !errors.Is(err, boom) {
		t.Errorf("Generate error = %v, want %v", err, boom)
	}
}

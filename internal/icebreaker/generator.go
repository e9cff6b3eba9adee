package icebreaker

import (
	"context"

	"github.com/michaelbrown/icebreaker/internal/llm"
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// StreamingGenerator also reports text as it is produced.
type StreamingGenerator interface {
	Generator
	GenerateStream(ctx context.Context, prompt string, onDelta func(string)) (string, error)
}

// LLMGenerator sends the prompt as a single user message and returns the
// completion as-is, empty or not.
type LLMGenerator struct {
	Client llm.Client
}

var _ StreamingGenerator = (*LLMGenerator)(nil)

func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.Client.ChatCompletion(ctx, []llm.Message{llm.UserMessage(prompt)}, nil)
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

func (g *LLMGenerator) GenerateStream(ctx context.Context, prompt string, onDelta func(string)) (string, error) {
	resp, err := g.Client.ChatCompletionStream(ctx, []llm.Message{llm.UserMessage(prompt)}, nil, onDelta)
	if err != nil {
		return "", err
	}
	return resp.Message.Content, nil
}

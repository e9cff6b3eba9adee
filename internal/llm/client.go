package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// Client is the interface for LLM interactions.
type Client interface {
	ChatCompletion(ctx context.Context, messages []Message, tools []ToolDef) (*Response, error)
	ChatCompletionStream(ctx context.Context, messages []Message, tools []ToolDef, handler StreamHandler) (*Response, error)
}

// OpenAICompatClient works with any OpenAI-compatible API (OpenAI, Ollama, Gemini).
type OpenAICompatClient struct {
	client      *openai.Client
	model       string
	baseURL     string
	temperature *float64
	logger      *slog.Logger
}

// NewClient creates an LLM client for the given provider.
func NewClient(baseURL, apiKey, model string) *OpenAICompatClient {
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)
	return &OpenAICompatClient{
		client:  &client,
		model:   model,
		baseURL: baseURL,
		logger:  slog.Default(),
	}
}

// SetTemperature fixes the sampling temperature for every request.
func (c *OpenAICompatClient) SetTemperature(t float64) {
	c.temperature = &t
}

// SetLogger replaces the logger used for retry notices.
func (c *OpenAICompatClient) SetLogger(l *slog.Logger) {
	if l != nil {
		c.logger = l
	}
}

// Model returns the model name sent with each request.
func (c *OpenAICompatClient) Model() string {
	return c.model
}

func (c *OpenAICompatClient) params(messages []Message, tools []ToolDef) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: convertMessages(messages),
	}
	if len(tools) > 0 {
		params.Tools = convertTools(tools)
	}
	if c.temperature != nil {
		params.Temperature = openai.Float(*c.temperature)
	}
	return params
}

func (c *OpenAICompatClient) ChatCompletion(ctx context.Context, messages []Message, tools []ToolDef) (*Response, error) {
	params := c.params(messages, tools)

	var completion *openai.ChatCompletion
	var err error
	for attempt := range 3 {
		completion, err = c.client.Chat.Completions.New(ctx, params)
		if err == nil {
			break
		}
		if !isRateLimited(err) || attempt == 2 {
			return nil, fmt.Errorf("chat completion: %w", err)
		}
		if err := c.backoff(ctx, attempt); err != nil {
			return nil, fmt.Errorf("chat completion: %w", err)
		}
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned")
	}

	choice := completion.Choices[0]
	return &Response{
		Message: Message{
			Role:      RoleAssistant,
			Content:   choice.Message.Content,
			ToolCalls: convertToolCalls(choice.Message.ToolCalls),
		},
	}, nil
}

func isRateLimited(err error) bool {
	return strings.Contains(err.Error(), "429")
}

// backoff waits 2s then 4s between rate-limited attempts.
func (c *OpenAICompatClient) backoff(ctx context.Context, attempt int) error {
	wait := time.Duration(2<<attempt) * time.Second
	c.logger.Warn("rate limited, retrying", "model", c.model, "wait", wait)
	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func convertToolCalls(calls []openai.ChatCompletionMessageToolCall) []ToolCall {
	var out []ToolCall
	for _, tc := range calls {
		out = append(out, ToolCall{
			ID:   tc.ID,
			Name: tc.Function.Name,
			Args: ParseArgs(tc.Function.Arguments),
		})
	}
	return out
}

func convertMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case RoleAssistant:
			if len(m.ToolCalls) > 0 {
				toolCalls := make([]openai.ChatCompletionMessageToolCallParam, len(m.ToolCalls))
				for i, tc := range m.ToolCalls {
					argsJSON, _ := json.Marshal(tc.Args)
					toolCalls[i] = openai.ChatCompletionMessageToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: string(argsJSON),
						},
					}
				}
				assistant := openai.ChatCompletionAssistantMessageParam{
					ToolCalls: toolCalls,
				}
				if m.Content != "" {
					assistant.Content.OfString = param.NewOpt(m.Content)
				}
				out = append(out, openai.ChatCompletionMessageParamUnion{
					OfAssistant: &assistant,
				})
			} else {
				out = append(out, openai.AssistantMessage(m.Content))
			}
		case RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}
	return out
}

func convertTools(tools []ToolDef) []openai.ChatCompletionToolParam {
	var out []openai.ChatCompletionToolParam
	for _, t := range tools {
		out = append(out, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        t.Name,
				Description: param.NewOpt(t.Description),
				Parameters:  shared.FunctionParameters(t.Parameters),
			},
		})
	}
	return out
}

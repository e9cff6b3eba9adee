// Package lookup resolves a person's display name to a provider identifier
// (LinkedIn profile URL, Twitter username) with a search-driven agent.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/michaelbrown/icebreaker/internal/agent"
	"github.com/michaelbrown/icebreaker/internal/llm"
	"github.com/michaelbrown/icebreaker/internal/tools"
)

// ErrNoAnswer is returned when the agent finishes without usable text.
var ErrNoAnswer = errors.New("lookup: agent returned no answer")

// Resolver maps a display name to a provider identifier. The result is not
// validated; a wrong identifier surfaces later as an acquisition failure.
type Resolver interface {
	Resolve(ctx context.Context, displayName string) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, displayName string) (string, error)

func (f ResolverFunc) Resolve(ctx context.Context, displayName string) (string, error) {
	return f(ctx, displayName)
}

// AgentResolver runs a fresh agent per lookup. The profile's system prompt
// may reference the searched name as {name}.
type AgentResolver struct {
	client  llm.Client
	toolbox tools.Toolbox
	profile agent.Profile
	extract func(string) string
	logger  *slog.Logger

	// OnToolCall, if set, observes each search the agent issues.
	OnToolCall func(name string, args map[string]any)
	// OnToolResult, if set, observes what each search returned.
	OnToolResult func(name, result string)
}

// NewAgentResolver creates a resolver. extract post-processes the agent's
// final answer and may be nil.
func NewAgentResolver(client llm.Client, toolbox tools.Toolbox, profile agent.Profile, extract func(string) string, logger *slog.Logger) *AgentResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &AgentResolver{
		client:  client,
		toolbox: toolbox,
		profile: profile,
		extract: extract,
		logger:  logger.With("lookup", profile.Name),
	}
}

func (r *AgentResolver) Resolve(ctx context.Context, displayName string) (string, error) {
	query := strings.TrimSpace(displayName) + r.profile.QuerySuffix

	a := agent.New(r.client, r.toolbox, r.profile.MaxIter)
	a.SetSystemPrompt(strings.ReplaceAll(r.profile.SystemPrompt, "{name}", query))
	a.FilterTools(r.profile.Tools)
	a.OnToolCall = func(name string, args map[string]any) {
		r.logger.Info("agent tool call", "call", agent.FormatToolCall(name, args))
		if r.OnToolCall != nil {
			r.OnToolCall(name, args)
		}
	}
	a.OnToolResult = func(name, result string) {
		r.logger.Debug("agent tool result", "tool", name, "bytes", len(result))
		if r.OnToolResult != nil {
			r.OnToolResult(name, result)
		}
	}

	r.logger.Info("resolving", "name", displayName)
	answer, err := a.Run(ctx, query)
	if err != nil {
		r.logger.Debug("lookup transcript", "name", displayName, "history", a.HistoryJSON())
		return "", fmt.Errorf("looking up %s for %q: %w", r.profile.Name, displayName, err)
	}

	answer = strings.TrimSpace(answer)
	if r.extract != nil {
		answer = r.extract(answer)
	}
	if answer == "" {
		r.logger.Debug("lookup transcript", "name", displayName, "history", a.HistoryJSON())
		return "", fmt.Errorf("looking up %s for %q: %w", r.profile.Name, displayName, ErrNoAnswer)
	}

	r.logger.Info("resolved", "name", displayName, "identifier", answer, "messages", len(a.History()))
	return answer, nil
}

package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/michaelbrown/icebreaker/internal/llm"
)

// ToolServerConfig describes an MCP tool server binary.
type ToolServerConfig struct {
	Binary  string            `mapstructure:"binary"`
	Args    []string          `mapstructure:"args"`
	Env     map[string]string `mapstructure:"env"`
	Enabled bool              `mapstructure:"enabled"`

	// Tools limits which of the server's tools are offered. Empty offers all.
	Tools []string `mapstructure:"tools"`
	// CallTimeoutSecs bounds a single tool call; zero leaves it to the caller.
	CallTimeoutSecs int `mapstructure:"call_timeout_secs"`
}

// Toolbox is a set of tools an agent can call. Registry implements it for
// MCP servers; search.Tool implements it in-process.
type Toolbox interface {
	AllTools() []llm.ToolDef
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

// ErrUnknownTool is returned when no registered server offers a tool.
var ErrUnknownTool = errors.New("unknown tool")

// ServerError reports a tool server that failed to start or to answer.
type ServerError struct {
	Server string
	Op     string
	Err    error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("tool server %s: %s: %v", e.Server, e.Op, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

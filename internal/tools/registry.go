package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/michaelbrown/icebreaker/internal/llm"
)

// Registry routes tool calls to the MCP servers that offer them. A tool
// offered by two servers belongs to the first one registered.
type Registry struct {
	logger  *slog.Logger
	servers map[string]*serverConn
	owner   map[string]string // tool name → server name
	defs    map[string]llm.ToolDef
}

var _ Toolbox = (*Registry)(nil)

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:  logger,
		servers: make(map[string]*serverConn),
		owner:   make(map[string]string),
		defs:    make(map[string]llm.ToolDef),
	}
}

// Register launches an MCP tool server and adds its allowed tools. Disabled
// servers are skipped without error.
func (r *Registry) Register(ctx context.Context, name string, cfg ToolServerConfig) error {
	if !cfg.Enabled {
		r.logger.Debug("tool server disabled", "server", name)
		return nil
	}
	if _, ok := r.servers[name]; ok {
		return &ServerError{Server: name, Op: "registering", Err: errors.New("already registered")}
	}

	conn, err := startServer(ctx, name, cfg)
	if err != nil {
		return err
	}
	r.servers[name] = conn
	r.add(name, conn.defs)
	return nil
}

func (r *Registry) add(server string, defs []llm.ToolDef) {
	var names []string
	for _, td := range defs {
		if prev, ok := r.owner[td.Name]; ok {
			r.logger.Warn("tool offered twice, keeping first server", "tool", td.Name, "server", prev, "ignored", server)
			continue
		}
		r.owner[td.Name] = server
		r.defs[td.Name] = td
		names = append(names, td.Name)
	}
	r.logger.Info("tool server started", "server", server, "tools", names)
}

// AllTools returns the tool definitions of all servers, sorted by name.
func (r *Registry) AllTools() []llm.ToolDef {
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	sort.Strings(names)

	all := make([]llm.ToolDef, 0, len(names))
	for _, n := range names {
		all = append(all, r.defs[n])
	}
	return all
}

// CallTool routes a tool call to the server that offers it.
func (r *Registry) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	server, ok := r.owner[name]
	if !ok {
		return "", fmt.Errorf("calling %s: %w", name, ErrUnknownTool)
	}

	start := time.Now()
	result, err := r.servers[server].call(ctx, name, args)
	if err != nil {
		r.logger.Warn("tool call failed", "tool", name, "server", server, "error", err)
		return "", err
	}
	r.logger.Debug("tool call", "tool", name, "server", server, "duration", time.Since(start), "bytes", len(result))
	return result, nil
}

// HasTools reports whether any server offers at least one tool.
func (r *Registry) HasTools() bool {
	return len(r.owner) > 0
}

// Close shuts down every server.
func (r *Registry) Close() {
	for name, conn := range r.servers {
		conn.close()
		r.logger.Debug("tool server stopped", "server", name)
	}
	r.servers = make(map[string]*serverConn)
	r.owner = make(map[string]string)
	r.defs = make(map[string]llm.ToolDef)
}

package tools

import (
	"context"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/michaelbrown/icebreaker/internal/llm"
)

// startTimeout bounds the initialize and list-tools handshake.
const startTimeout = 15 * time.Second

// serverConn is one running MCP stdio server.
type serverConn struct {
	name        string
	client      *client.Client
	defs        []llm.ToolDef
	callTimeout time.Duration
}

// startServer launches cfg.Binary, performs the MCP handshake and keeps the
// tools that pass cfg.Tools.
func startServer(ctx context.Context, name string, cfg ToolServerConfig) (*serverConn, error) {
	c, err := client.NewStdioMCPClient(cfg.Binary, serverEnv(cfg.Env), cfg.Args...)
	if err != nil {
		return nil, &ServerError{Server: name, Op: "starting " + cfg.Binary, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	_, err = c.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ClientInfo: mcp.Implementation{
				Name:    "icebreaker",
				Version: "0.1.0",
			},
		},
	})
	if err != nil {
		c.Close()
		return nil, &ServerError{Server: name, Op: "initializing", Err: err}
	}

	result, err := c.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		c.Close()
		return nil, &ServerError{Server: name, Op: "listing tools", Err: err}
	}

	return &serverConn{
		name:        name,
		client:      c,
		defs:        allowedDefs(result.Tools, cfg.Tools),
		callTimeout: time.Duration(cfg.CallTimeoutSecs) * time.Second,
	}, nil
}

func (sc *serverConn) call(ctx context.Context, tool string, args map[string]any) (string, error) {
	if sc.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, sc.callTimeout)
		defer cancel()
	}
	result, err := sc.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      tool,
			Arguments: args,
		},
	})
	if err != nil {
		return "", &ServerError{Server: sc.name, Op: "calling " + tool, Err: err}
	}
	return resultText(result), nil
}

func (sc *serverConn) close() {
	sc.client.Close()
}

// allowedDefs converts MCP tool schemas to llm.ToolDef, keeping only names
// in allow when it is non-empty.
func allowedDefs(list []mcp.Tool, allow []string) []llm.ToolDef {
	allowed := make(map[string]bool, len(allow))
	for _, n := range allow {
		allowed[n] = true
	}

	var defs []llm.ToolDef
	for _, t := range list {
		if len(allowed) > 0 && !allowed[t.Name] {
			continue
		}
		params := map[string]any{
			"type": t.InputSchema.Type,
		}
		if t.InputSchema.Properties != nil {
			params["properties"] = t.InputSchema.Properties
		}
		if len(t.InputSchema.Required) > 0 {
			params["required"] = t.InputSchema.Required
		}
		defs = append(defs, llm.ToolDef{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		})
	}
	return defs
}

// resultText joins the text parts of a tool result. Tool-level failures come
// back as "error: ..." text so the agent can try another query.
func resultText(result *mcp.CallToolResult) string {
	var parts []string
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	text := strings.Join(parts, "\n")
	if result.IsError {
		return "error: " + text
	}
	return text
}

// serverEnv is the current environment plus extra, with $VAR and ${VAR}
// references in values expanded. Extra keys are appended in sorted order.
func serverEnv(extra map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+os.ExpandEnv(extra[k]))
	}
	return env
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/michaelbrown/icebreaker/internal/agent"
	"github.com/michaelbrown/icebreaker/internal/config"
	"github.com/michaelbrown/icebreaker/internal/icebreaker"
	"github.com/michaelbrown/icebreaker/internal/llm"
	"github.com/michaelbrown/icebreaker/internal/logging"
	"github.com/michaelbrown/icebreaker/internal/lookup"
	"github.com/michaelbrown/icebreaker/internal/profile"
	"github.com/michaelbrown/icebreaker/internal/providers"
	"github.com/michaelbrown/icebreaker/internal/search"
	"github.com/michaelbrown/icebreaker/internal/storage"
	"github.com/michaelbrown/icebreaker/internal/storage/sqlite"
	"github.com/michaelbrown/icebreaker/internal/tools"
)

// app holds what every command needs: config, logger and the profile
// downloader. Heavier pieces (LLM, tools, storage) are built on demand.
type app struct {
	cfg        *config.Config
	logger     *slog.Logger
	mode       profile.Mode
	downloader *profile.Downloader

	closers []io.Closer
}

func newApp() (*app, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if modeFlag != "" {
		cfg.Mode = modeFlag
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}

	mode, err := cfg.AcquisitionMode()
	if err != nil {
		return nil, err
	}

	logger, closer, err := logging.New(logging.Config{
		Level:          cfg.Log.Level,
		Format:         cfg.Log.Format,
		File:           cfg.Log.File,
		FileTimeFormat: cfg.Log.FileTimeFormat,
	}, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}
	slog.SetDefault(logger)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		mode:    mode,
		closers: []io.Closer{closer},
	}
	a.downloader = profile.NewDownloader(providers.NewRegistry(cfg, logger), mode, cfg.ProfilesPath, logger)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}

// openStore opens the history database and records every download in its
// catalog from then on.
func (a *app) openStore() (storage.Store, error) {
	store, err := sqlite.Open(a.cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	a.closers = append(a.closers, store)

	a.downloader.OnDownload = func(ctx context.Context, svc *profile.Service, opts profile.DownloadOptions) {
		entry := &storage.Download{
			Provider:   svc.Provider(),
			Identifier: svc.Identifier(),
			Slug:       svc.Slug(),
			Path:       svc.Path(),
			Mode:       svc.Mode().String(),
			Cleaned:    opts.Clean,
			Saved:      opts.Save,
			Forced:     opts.ForceRemote,
		}
		if err := store.RecordDownload(ctx, entry); err != nil {
			a.logger.Warn("failed to record download", "provider", entry.Provider, "error", err)
		}
	}
	return store, nil
}

// llmClient builds a client for role ("default" or "lookup"). Explicit
// names win over the --provider and --model flags, which win over config.
func (a *app) llmClient(role, providerName, model string) (llm.Client, string, string, error) {
	if providerName == "" {
		providerName = providerFlag
	}
	if providerName == "" {
		providerName = a.cfg.DefaultProvider
	}
	p, err := a.cfg.Provider(providerName)
	if err != nil {
		return nil, "", "", err
	}
	if model == "" {
		model = modelFlag
	}
	if model == "" {
		model = p.Model(role)
	}

	if p.IsAnthropic() {
		c := llm.NewAnthropicClient(p.BaseURL, p.APIKey, model)
		if p.Temperature != nil {
			c.SetTemperature(*p.Temperature)
		}
		return c, providerName, model, nil
	}

	c := llm.NewClient(p.BaseURL, p.APIKey, model)
	c.SetLogger(a.logger)
	if p.Temperature != nil {
		c.SetTemperature(*p.Temperature)
	}
	return c, providerName, model, nil
}

// toolbox returns the lookup agents' tools: the configured MCP servers if
// any start, otherwise the in-process search backend. Servers without their
// own tool list offer only the tools in allowed.
func (a *app) toolbox(allowed []string) (tools.Toolbox, error) {
	if len(a.cfg.Tools) > 0 {
		registry := tools.NewRegistry(a.logger)
		for name, toolCfg := range a.cfg.Tools {
			if len(toolCfg.Tools) == 0 {
				toolCfg.Tools = allowed
			}
			if err := registry.Register(context.Background(), name, toolCfg); err != nil {
				a.logger.Warn("failed to start tool server", "tool", name, "error", err)
			}
		}
		if registry.HasTools() {
			a.closers = append(a.closers, closerFunc(registry.Close))
			a.logger.Debug("lookup tools from MCP servers")
			return registry, nil
		}
		registry.Close()
	}

	searcher, err := search.New(search.Options{
		Backend:    a.cfg.Search.Backend,
		APIKey:     a.cfg.Search.APIKey,
		Endpoint:   a.cfg.Search.Endpoint,
		MaxResults: a.cfg.Search.MaxResults,
	})
	if err != nil {
		return nil, err
	}
	a.logger.Debug("lookup tools in-process", "backend", a.cfg.Search.Backend)
	return &search.Tool{Searcher: searcher}, nil
}

// resolvers builds a cached lookup agent for every provider.
func (a *app) resolvers(onToolCall func(string, map[string]any)) (map[string]lookup.Resolver, error) {
	profiles := make(map[string]agent.Profile)
	var allowed []string
	for _, name := range a.downloader.Registry().Names() {
		base, ok := lookup.DefaultProfile(name)
		if !ok {
			continue
		}
		prof, err := agent.LoadProfileOverride(a.cfg.Agent.ProfilesDir, name, base)
		if err != nil {
			return nil, err
		}
		if prof.MaxIter <= 0 {
			prof.MaxIter = a.cfg.Agent.MaxIterations
		}
		profiles[name] = prof
		allowed = append(allowed, prof.Tools...)
	}

	toolbox, err := a.toolbox(allowed)
	if err != nil {
		return nil, fmt.Errorf("setting up lookup tools: %w", err)
	}

	out := make(map[string]lookup.Resolver)
	for name, prof := range profiles {
		client, _, _, err := a.llmClient("lookup", prof.Provider, prof.Model)
		if err != nil {
			return nil, err
		}

		resolver := lookup.NewAgentResolver(client, toolbox, prof, lookup.Extractor(name), a.logger)
		resolver.OnToolCall = onToolCall

		cached, err := lookup.NewCachedResolver(resolver, a.cfg.Lookup.CacheSize)
		if err != nil {
			return nil, err
		}
		out[name] = cached
	}
	return out, nil
}

// pipeline wires resolvers, downloader and generator. withLookup false
// skips the lookup agents, for runs where every record is supplied.
type pipeline struct {
	orchestrator *icebreaker.Orchestrator
	provider     string
	model        string
}

func (a *app) pipeline(withLookup bool, onToolCall func(string, map[string]any)) (*pipeline, error) {
	client, providerName, model, err := a.llmClient("default", "", "")
	if err != nil {
		return nil, err
	}

	var resolvers map[string]lookup.Resolver
	if withLookup {
		resolvers, err = a.resolvers(onToolCall)
		if err != nil {
			return nil, err
		}
	}

	o := icebreaker.New(resolvers, a.downloader, &icebreaker.LLMGenerator{Client: client}, a.logger)
	return &pipeline{orchestrator: o, provider: providerName, model: model}, nil
}

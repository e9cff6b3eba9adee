// Package icebreaker runs the full pipeline: resolve a person's identifiers,
// download their profiles and ask an LLM for a summary and two facts.
package icebreaker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/michaelbrown/icebreaker/internal/lookup"
	"github.com/michaelbrown/icebreaker/internal/profile"
)

// Providers used by the pipeline, in processing order.
var pipelineProviders = []string{"linkedin", "twitter"}

// EventType tags a progress event.
type EventType string

const (
	EventResolving  EventType = "resolving"
	EventResolved   EventType = "resolved"
	EventDownloaded EventType = "downloaded"
	EventGenerating EventType = "generating"
	EventDelta      EventType = "delta"
)

// Event reports pipeline progress.
type Event struct {
	Type       EventType `json:"type"`
	Provider   string    `json:"provider,omitempty"`
	Identifier string    `json:"identifier,omitempty"`
	Content    string    `json:"content,omitempty"`
}

// Request describes one icebreaker run. A supplied record skips lookup and
// download for that provider.
type Request struct {
	Name     string
	LinkedIn profile.Record
	Twitter  profile.Record

	// OnEvent, if set, receives progress events. Setting it also streams
	// the generated text as EventDelta when the generator supports it.
	OnEvent func(Event)
}

// Result is the outcome of a run.
type Result struct {
	Name        string            `json:"name"`
	Identifiers map[string]string `json:"identifiers"`
	LinkedIn    profile.Record    `json:"linkedin"`
	Twitter     profile.Record    `json:"twitter"`
	Prompt      string            `json:"-"`
	Text        string            `json:"text"`
}

// Orchestrator wires resolvers, the profile downloader and a generator.
type Orchestrator struct {
	resolvers  map[string]lookup.Resolver
	downloader *profile.Downloader
	generator  Generator
	options    profile.DownloadOptions
	logger     *slog.Logger
}

// New creates an Orchestrator. resolvers is keyed by provider name.
func New(resolvers map[string]lookup.Resolver, downloader *profile.Downloader, generator Generator, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		resolvers:  resolvers,
		downloader: downloader,
		generator:  generator,
		options:    profile.DefaultDownloadOptions(),
		logger:     logger,
	}
}

// SetDownloadOptions changes how profiles fetched by the pipeline are processed.
func (o *Orchestrator) SetDownloadOptions(opts profile.DownloadOptions) {
	o.options = opts
}

// Generate returns the generated text for name, unmodified.
func (o *Orchestrator) Generate(ctx context.Context, name string, linkedin, twitter profile.Record) (string, error) {
	res, err := o.Run(ctx, Request{Name: name, LinkedIn: linkedin, Twitter: twitter})
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// Run executes the pipeline sequentially. The first failure aborts the run.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	emit := func(e Event) {
		if req.OnEvent != nil {
			req.OnEvent(e)
		}
	}

	res := &Result{Name: req.Name, Identifiers: map[string]string{}}
	supplied := map[string]profile.Record{"linkedin": req.LinkedIn, "twitter": req.Twitter}
	records := map[string]profile.Record{}

	for _, provider := range pipelineProviders {
		if rec := supplied[provider]; rec != nil {
			records[provider] = rec
			continue
		}

		rec, id, err := o.fetch(ctx, provider, req.Name, emit)
		if err != nil {
			return nil, err
		}
		res.Identifiers[provider] = id
		records[provider] = rec
	}
	res.LinkedIn = records["linkedin"]
	res.Twitter = records["twitter"]

	res.Prompt = BuildPrompt(res.LinkedIn, res.Twitter)
	o.logger.Debug("icebreaker prompt", "name", req.Name, "prompt", res.Prompt)
	emit(Event{Type: EventGenerating})

	var err error
	if sg, ok := o.generator.(StreamingGenerator); ok && req.OnEvent != nil {
		res.Text, err = sg.GenerateStream(ctx, res.Prompt, func(delta string) {
			emit(Event{Type: EventDelta, Content: delta})
		})
	} else {
		res.Text, err = o.generator.Generate(ctx, res.Prompt)
	}
	if err != nil {
		return nil, fmt.Errorf("generating icebreaker: %w", err)
	}
	return res, nil
}

func (o *Orchestrator) fetch(ctx context.Context, provider, name string, emit func(Event)) (profile.Record, string, error) {
	resolver, ok := o.resolvers[provider]
	if !ok {
		return nil, "", fmt.Errorf("no %s resolver configured and no %s record supplied", provider, provider)
	}

	emit(Event{Type: EventResolving, Provider: provider})
	id, err := resolver.Resolve(ctx, name)
	if err != nil {
		return nil, "", err
	}
	emit(Event{Type: EventResolved, Provider: provider, Identifier: id})

	svc, err := o.downloader.Download(ctx, provider, id, o.options)
	if err != nil {
		return nil, "", fmt.Errorf("downloading %s profile %q: %w", provider, id, err)
	}
	emit(Event{Type: EventDownloaded, Provider: provider, Identifier: id})
	return svc.Record(), id, nil
}

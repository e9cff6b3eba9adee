package profile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// Registry maps provider names to their policies.
type Registry struct {
	policies map[string]Policy
}

// NewRegistry creates a registry holding the given policies.
func NewRegistry(policies ...Policy) *Registry {
	r := &Registry{policies: make(map[string]Policy, len(policies))}
	for _, p := range policies {
		r.Register(p)
	}
	return r
}

// Register adds or replaces a policy.
func (r *Registry) Register(p Policy) {
	r.policies[p.Name] = p
}

// Policy returns the policy registered under name.
func (r *Registry) Policy(name string) (Policy, error) {
	p, ok := r.policies[name]
	if !ok {
		return Policy{}, fmt.Errorf("%w: %q (known: %v)", ErrUnknownProvider, name, r.Names())
	}
	return p, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Downloader is the entry point used by the CLI, the server and the
// icebreaker pipeline to fetch a profile by provider name.
type Downloader struct {
	registry *Registry
	mode     Mode
	root     string
	logger   *slog.Logger

	// OnDownload, if set, is called after every successful Download.
	OnDownload func(ctx context.Context, s *Service, opts DownloadOptions)
}

// NewDownloader creates a Downloader storing profiles under root.
func NewDownloader(registry *Registry, mode Mode, root string, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{registry: registry, mode: mode, root: root, logger: logger}
}

func (d *Downloader) Registry() *Registry { return d.registry }
func (d *Downloader) Mode() Mode          { return d.mode }
func (d *Downloader) Root() string        { return d.root }

// Service builds a Service for provider/identifier. An empty root uses the
// Downloader's default directory.
func (d *Downloader) Service(provider, identifier, root string) (*Service, error) {
	policy, err := d.registry.Policy(provider)
	if err != nil {
		return nil, err
	}
	if root == "" {
		root = d.root
	}
	return NewService(policy, identifier, d.mode, root, d.logger), nil
}

// Download acquires the profile of identifier on provider and applies opts.
// The returned Service holds the record, its source and where it is stored.
func (d *Downloader) Download(ctx context.Context, provider, identifier string, opts DownloadOptions) (*Service, error) {
	svc, err := d.Service(provider, identifier, opts.Root)
	if err != nil {
		return nil, err
	}
	if _, err := svc.Download(ctx, opts); err != nil {
		return nil, err
	}
	if d.OnDownload != nil {
		d.OnDownload(ctx, svc, opts)
	}
	return svc, nil
}

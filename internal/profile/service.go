package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// State tracks how far a Service has processed its record.
type State int

const (
	StateUninitialized State = iota
	StateAcquired
	StateCleaned
	StatePersisted
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAcquired:
		return "acquired"
	case StateCleaned:
		return "cleaned"
	case StatePersisted:
		return "persisted"
	default:
		return "unknown"
	}
}

// Source records where the current record came from.
type Source int

const (
	SourceNone Source = iota
	SourceRemote
	SourceStored
	SourceSample
)

func (s Source) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceRemote:
		return "remote"
	case SourceStored:
		return "stored"
	case SourceSample:
		return "sample"
	default:
		return "unknown"
	}
}

// DownloadOptions controls the Download pipeline.
type DownloadOptions struct {
	Save        bool
	Clean       bool
	ForceRemote bool

	// Root overrides the profile directory for this call.
	Root string
}

// DefaultDownloadOptions cleans and saves, without forcing a remote fetch.
func DefaultDownloadOptions() DownloadOptions {
	return DownloadOptions{Save: true, Clean: true}
}

// Service acquires, cleans and persists one profile for one provider.
// A Service is not safe for concurrent use.
type Service struct {
	policy     Policy
	identifier string
	slug       string
	path       string
	mode       Mode
	store      Store
	logger     *slog.Logger

	record Record
	state  State
	source Source
}

// NewService creates a Service for identifier. The stored file lives under root.
func NewService(policy Policy, identifier string, mode Mode, root string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	slug := policy.Slug(identifier)
	s := &Service{
		policy:     policy,
		identifier: identifier,
		slug:       slug,
		mode:       mode,
		logger:     logger.With("provider", policy.Name, "slug", slug),
	}
	s.path = s.store.PathFor(policy.Name, slug, root)
	return s
}

func (s *Service) Provider() string   { return s.policy.Name }
func (s *Service) Identifier() string { return s.identifier }
func (s *Service) Slug() string       { return s.slug }
func (s *Service) Path() string       { return s.path }
func (s *Service) Mode() Mode         { return s.mode }
func (s *Service) State() State       { return s.state }
func (s *Service) Source() Source     { return s.source }

// Record returns the current record, or nil before acquisition.
func (s *Service) Record() Record { return s.record }

// Scrape acquires the profile according to the mode and, if clean is set,
// cleans it. forceRemote calls the remote API whatever the mode.
func (s *Service) Scrape(ctx context.Context, clean, forceRemote bool) (Record, error) {
	s.logger.Info("acquiring profile", "mode", s.mode, "force_remote", forceRemote)

	remote := func(ctx context.Context) (Record, error) {
		return s.fetchRemote(ctx, forceRemote)
	}
	record, err := Acquire(ctx, s.mode, forceRemote, remote, s.loadLocal)
	if err != nil {
		return nil, err
	}

	s.record = record
	s.state = StateAcquired
	s.logger.Debug("profile acquired", "fields", len(record), "source", s.source)

	if clean {
		return s.Clean()
	}
	return record, nil
}

// Clean applies the provider's field policy to the current record.
func (s *Service) Clean() (Record, error) {
	if s.record == nil {
		return nil, fmt.Errorf("cleaning %s profile: %w", s.policy.Name, ErrNoData)
	}
	s.record = s.policy.Fields.Clean(s.record)
	s.state = StateCleaned
	return s.record, nil
}

// Save writes the current record to Path. A sample record is never written,
// since the file at Path must hold the profile of Identifier.
func (s *Service) Save() (Record, error) {
	if s.record == nil {
		return nil, fmt.Errorf("saving %s profile: %w", s.policy.Name, ErrNoData)
	}
	if s.source == SourceSample {
		return nil, fmt.Errorf("saving %s profile to %s: %w", s.policy.Name, s.path, ErrSampleRecord)
	}
	record, err := s.store.Save(s.record, s.path)
	if err != nil {
		return nil, err
	}
	s.state = StatePersisted
	s.logger.Info("profile saved", "path", s.path)
	return record, nil
}

// Load reads the stored profile at Path and makes it the current record.
func (s *Service) Load() (Record, error) {
	record, err := s.store.Load(s.path)
	if err != nil {
		return nil, err
	}
	s.record = record
	s.state = StateAcquired
	s.source = SourceStored
	return record, nil
}

// Download runs acquire, then clean and save when requested, and returns
// the resulting record. Cleaning and saving happen only if their flag is set.
func (s *Service) Download(ctx context.Context, opts DownloadOptions) (Record, error) {
	if _, err := s.Scrape(ctx, false, opts.ForceRemote); err != nil {
		return nil, err
	}
	if opts.Clean {
		if _, err := s.Clean(); err != nil {
			return nil, err
		}
	}
	if opts.Save && s.source == SourceSample {
		s.logger.Info("not saving sample profile", "path", s.path)
	} else if opts.Save {
		if _, err := s.Save(); err != nil {
			return nil, err
		}
	}
	return s.record, nil
}

func (s *Service) fetchRemote(ctx context.Context, forceRemote bool) (Record, error) {
	if s.policy.CacheFirst && !forceRemote {
		record, err := s.store.Load(s.path)
		if err == nil {
			s.logger.Info("using stored profile", "path", s.path)
			s.source = SourceStored
			return record, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	if s.policy.Fetcher == nil {
		return nil, &FetchError{
			Provider:   s.policy.Name,
			Identifier: s.identifier,
			Err:        errors.New("no remote fetcher configured"),
		}
	}

	record, err := s.policy.Fetcher.Fetch(ctx, s.identifier)
	if err != nil {
		var fe *FetchError
		if errors.As(err, &fe) {
			return nil, err
		}
		return nil, &FetchError{Provider: s.policy.Name, Identifier: s.identifier, Err: err}
	}
	s.source = SourceRemote
	return record, nil
}

func (s *Service) loadLocal(ctx context.Context) (Record, error) {
	record, err := s.store.Load(s.path)
	if err == nil {
		s.source = SourceStored
		return record, nil
	}
	if !errors.Is(err, ErrNotFound) || s.policy.SampleFile == "" {
		return nil, err
	}
	s.logger.Info("no stored profile, using sample", "sample", s.policy.SampleFile)
	record, err = s.store.Load(s.policy.SampleFile)
	if err != nil {
		return nil, err
	}
	s.source = SourceSample
	return record, nil
}

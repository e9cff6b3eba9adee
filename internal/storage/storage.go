// Package storage persists icebreaker runs and the catalog of downloaded
// profiles.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no row matches an ID or ID prefix.
var ErrNotFound = errors.New("not found")

// RunStatus represents the lifecycle state of an icebreaker run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Run is one icebreaker generation for a person.
type Run struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Status     RunStatus `json:"status"`
	LinkedInID string    `json:"linkedin_id,omitempty"`
	TwitterID  string    `json:"twitter_id,omitempty"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Output     string    `json:"output,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RunListOptions controls filtering and pagination for ListRuns.
type RunListOptions struct {
	Status RunStatus
	Name   string
	Limit  int
	Offset int
}

// Download is a catalog entry for a profile fetched by the downloader.
type Download struct {
	ID         int64     `json:"id"`
	Provider   string    `json:"provider"`
	Identifier string    `json:"identifier"`
	Slug       string    `json:"slug"`
	Path       string    `json:"path"`
	Mode       string    `json:"mode"`
	Cleaned    bool      `json:"cleaned"`
	Saved      bool      `json:"saved"`
	Forced     bool      `json:"forced"`
	CreatedAt  time.Time `json:"created_at"`
}

// DownloadListOptions controls filtering for ListDownloads.
type DownloadListOptions struct {
	Provider string
	Limit    int
}

// Store is the persistence interface for runs and downloads.
type Store interface {
	// CreateRun inserts a new run. The ID field must be set by the caller.
	CreateRun(ctx context.Context, r *Run) error

	// GetRun returns a run by ID or ID prefix.
	GetRun(ctx context.Context, id string) (*Run, error)

	// ListRuns returns runs ordered by updated_at descending.
	ListRuns(ctx context.Context, opts RunListOptions) ([]Run, error)

	// UpdateRun updates mutable fields (status, identifiers, output, error).
	UpdateRun(ctx context.Context, r *Run) error

	// DeleteRun removes a run.
	DeleteRun(ctx context.Context, id string) error

	// RecordDownload appends an entry to the download catalog.
	RecordDownload(ctx context.Context, d *Download) error

	// ListDownloads returns catalog entries, newest first.
	ListDownloads(ctx context.Context, opts DownloadListOptions) ([]Download, error)

	// Close releases resources.
	Close() error
}

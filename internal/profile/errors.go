package profile

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no stored profile exists at the computed path.
	ErrNotFound = errors.New("profile not found")

	// ErrNoData is returned by Clean and Save when nothing has been acquired yet.
	ErrNoData = errors.New("no profile data")

	// ErrUnknownProvider is returned when a provider name is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrSampleRecord is returned by Save when the current record is a
	// development sample rather than the requested profile.
	ErrSampleRecord = errors.New("record is a development sample")
)

// InvalidModeError reports an acquisition mode outside development/production.
type InvalidModeError struct {
	Mode string
}

func (e *InvalidModeError) Error() string {
	return fmt.Sprintf("invalid acquisition mode %q (want development or production)", e.Mode)
}

// FetchError wraps a failure from a remote scraping API.
type FetchError struct {
	Provider   string
	Identifier string
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s profile %q: %v", e.Provider, e.Identifier, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

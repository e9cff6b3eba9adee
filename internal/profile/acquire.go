package profile

import "context"

// Fetcher retrieves a profile from a remote scraping API.
type Fetcher interface {
	Fetch(ctx context.Context, identifier string) (Record, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, identifier string) (Record, error)

func (f FetcherFunc) Fetch(ctx context.Context, identifier string) (Record, error) {
	return f(ctx, identifier)
}

// Acquire picks the profile source. Production mode, or forceRemote in any
// mode, calls remote; development calls local. Results and errors are
// returned as-is.
func Acquire(ctx context.Context, mode Mode, forceRemote bool, remote, local func(context.Context) (Record, error)) (Record, error) {
	if forceRemote {
		return remote(ctx)
	}
	switch mode {
	case Production:
		return remote(ctx)
	case Development:
		return local(ctx)
	default:
		return nil, &InvalidModeError{Mode: mode.String()}
	}
}

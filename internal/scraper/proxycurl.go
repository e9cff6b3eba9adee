package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/michaelbrown/icebreaker/internal/profile"
)

// Proxycurl fetches LinkedIn profiles from the Proxycurl person endpoint.
type Proxycurl struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

// NewProxycurl creates a LinkedIn fetcher.
func NewProxycurl(endpoint, apiKey string, timeout time.Duration, logger *slog.Logger) *Proxycurl {
	if logger == nil {
		logger = slog.Default()
	}
	return &Proxycurl{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   httpClient(timeout),
		logger:   logger,
	}
}

// Fetch retrieves the profile at the LinkedIn URL profileURL.
func (p *Proxycurl) Fetch(ctx context.Context, profileURL string) (profile.Record, error) {
	if p.apiKey == "" {
		return nil, errors.New("proxycurl: no API key configured (PROXYCURL_API_KEY)")
	}

	u, err := url.Parse(p.endpoint)
	if err != nil {
		return nil, fmt.Errorf("proxycurl: invalid endpoint %q: %w", p.endpoint, err)
	}
	q := u.Query()
	q.Set("url", profileURL)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("proxycurl: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	p.logger.Info("scraping linkedin profile", "url", profileURL)
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxycurl: %w", err)
	}
	defer resp.Body.Close()

	var record profile.Record
	if err := readJSON(resp, &record); err != nil {
		return nil, fmt.Errorf("proxycurl: %w", err)
	}
	return record, nil
}

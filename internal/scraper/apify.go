package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/michaelbrown/icebreaker/internal/profile"
)

// Apify fetches Twitter profiles by running an Apify actor synchronously and
// reading the first item of its dataset.
type Apify struct {
	baseURL       string
	token         string
	actorID       string
	tweetsDesired int
	client        *http.Client
	logger        *slog.Logger
}

// NewApify creates a Twitter fetcher for actorID.
func NewApify(baseURL, token, actorID string, tweetsDesired int, timeout time.Duration, logger *slog.Logger) *Apify {
	if logger == nil {
		logger = slog.Default()
	}
	if tweetsDesired <= 0 {
		tweetsDesired = 10
	}
	return &Apify{
		baseURL:       strings.TrimRight(baseURL, "/"),
		token:         token,
		actorID:       actorID,
		tweetsDesired: tweetsDesired,
		client:        httpClient(timeout),
		logger:        logger,
	}
}

// runInput is the actor input for a profile-only scrape of username.
func (a *Apify) runInput(username string) map[string]any {
	return map[string]any{
		"addUserInfo":              true,
		"collectOriginalTweetOnly": false,
		"debugLog":                 false,
		"includeThreadsOnly":       false,
		"mode":                     "own",
		"profilesDesired":          10,
		"proxyConfig":              map[string]any{"useApifyProxy": true},
		"repliesDepth":             0,
		"searchMode":               "live",
		"skipRetweets":             true,
		"startUrls":                []map[string]any{{"url": "https://twitter.com/" + username}},
		"tweetsDesired":            a.tweetsDesired,
		"useAdvancedSearch":        false,
	}
}

// Fetch scrapes username and returns the first dataset item.
func (a *Apify) Fetch(ctx context.Context, username string) (profile.Record, error) {
	if a.token == "" {
		return nil, errors.New("apify: no API token configured (APIFY_API_KEY)")
	}
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")

	body, err := json.Marshal(a.runInput(username))
	if err != nil {
		return nil, fmt.Errorf("apify: encoding input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/acts/%s/run-sync-get-dataset-items?token=%s",
		a.baseURL, url.PathEscape(a.actorID), url.QueryEscape(a.token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("apify: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	a.logger.Info("scraping twitter profile", "username", username, "actor", a.actorID)
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apify: %w", err)
	}
	defer resp.Body.Close()

	var items []profile.Record
	if err := readJSON(resp, &items); err != nil {
		return nil, fmt.Errorf("apify: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("apify: no data returned for %q", username)
	}
	a.logger.Debug("apify dataset", "items", len(items))
	return items[0], nil
}

// Package scraper implements profile.Fetcher against third-party scraping APIs.
package scraper

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const maxBodySize = 10 << 20

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// readJSON decodes a successful response body into v. Non-2xx responses are
// reported with their status and a bounded excerpt of the body.
func readJSON(resp *http.Response, v any) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt := string(body)
		if len(excerpt) > 500 {
			excerpt = excerpt[:500] + "..."
		}
		return fmt.Errorf("API returned %d: %s", resp.StatusCode, excerpt)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}
	return nil
}

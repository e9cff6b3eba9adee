package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// Tavily searches through the Tavily API.
type Tavily struct {
	APIKey     string
	Endpoint   string
	MaxResults int
	Client     *http.Client
}

func (t *Tavily) Search(ctx context.Context, query string) (*Response, error) {
	endpoint := t.Endpoint
	if endpoint == "" {
		endpoint = tavilyEndpoint
	}

	body, err := json.Marshal(map[string]any{
		"query":          query,
		"max_results":    t.MaxResults,
		"include_answer": true,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("tavily: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("tavily: reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily: API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var result struct {
		Answer  string `json:"answer"`
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("tavily: parsing response: %w", err)
	}

	out := &Response{Answer: result.Answer}
	for _, r := range result.Results {
		out.Results = append(out.Results, Result{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return out, nil
}

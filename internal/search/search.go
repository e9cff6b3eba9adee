// Package search queries web search engines on behalf of the lookup agents.
package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Result is one organic search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Response is what a backend returns for a query.
type Response struct {
	Answer  string   `json:"answer,omitempty"`
	Results []Result `json:"results"`
}

// Searcher runs a web search.
type Searcher interface {
	Search(ctx context.Context, query string) (*Response, error)
}

// Options configures a backend built with New.
type Options struct {
	Backend    string
	APIKey     string
	Endpoint   string
	MaxResults int
	HTTPClient *http.Client
}

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// New returns the backend named by opts.Backend.
func New(opts Options) (Searcher, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = defaultHTTPClient
	}

	switch strings.ToLower(opts.Backend) {
	case "", "tavily":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("search: tavily backend needs an API key (TAVILY_API_KEY)")
		}
		return &Tavily{
			APIKey:     opts.APIKey,
			Endpoint:   opts.Endpoint,
			MaxResults: opts.MaxResults,
			Client:     opts.HTTPClient,
		}, nil
	case "duckduckgo", "ddg":
		return &DuckDuckGo{
			Endpoint:   opts.Endpoint,
			MaxResults: opts.MaxResults,
			Client:     opts.HTTPClient,
		}, nil
	default:
		return nil, fmt.Errorf("search: unknown backend %q", opts.Backend)
	}
}

// Digest renders a response the way the lookup agents consume it: the direct
// answer when the engine has one, then the numbered hits with their links.
func Digest(resp *Response) string {
	if resp == nil || (resp.Answer == "" && len(resp.Results) == 0) {
		return "No good search result found"
	}

	var sb strings.Builder
	if resp.Answer != "" {
		sb.WriteString("Answer: " + resp.Answer + "\n\n")
	}
	for i, r := range resp.Results {
		sb.WriteString(fmt.Sprintf("%d. %s\n   %s\n", i+1, r.Title, r.URL))
		if r.Snippet != "" {
			sb.WriteString("   " + r.Snippet + "\n")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

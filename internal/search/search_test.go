package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/michaelbrown/icebreaker/internal/tools"
)

func TestTavilySearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tvly-test" {
			t.Errorf("Authorization = %q", got)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["query"] != "Yann LeCun LinkedIn" {
			t.Errorf("query = %v", body["query"])
		}
		w.Write([]byte(`{
			"answer": "Yann LeCun is Chief AI Scientist at Meta.",
			"results": [
				{"title": "Yann LeCun - Meta", "url": "https://www.linkedin.com/in/yann-lecun/", "content": "Chief AI Scientist"}
			]
		}`))
	}))
	defer srv.Close()

	s, err := New(Options{Backend: "tavily", APIKey: "tvly-test", Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := s.Search(context.Background(), "Yann LeCun LinkedIn")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].URL != "https://www.linkedin.com/in/yann-lecun/" {
		t.Errorf("results = %+v", resp.Results)
	}
	if resp.Answer == "" {
		t.Error("answer should be set")
	}
}

func TestTavilyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	s := &Tavily{APIKey: "x", Endpoint: srv.URL, Client: srv.Client()}
	if _, err := s.Search(context.Background(), "q"); err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("Search error = %v, want 401", err)
	}
}

const ddgPage = `<html><body>
<div class="result results_links web-result">
  <h2 class="result__title">
    <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Ftwitter.com%2Fylecun&amp;rut=abc">Yann LeCun (@ylecun) / X</a>
  </h2>
  <a class="result__snippet">The latest posts from @ylecun.</a>
</div>
<div class="result result--ad">
  <a class="result__a" href="https://ads.example.com">Sponsored</a>
</div>
<div class="result results_links web-result">
  <a class="result__a" href="https://www.linkedin.com/in/yann-lecun/">Yann LeCun - LinkedIn</a>
  <a class="result__snippet">Chief AI Scientist at Meta</a>
</div>
</body></html>`

func TestDuckDuckGoSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.Form.Get("q") != "Yann LeCun Twitter" {
			t.Errorf("q = %q", r.Form.Get("q"))
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	s, err := New(Options{Backend: "duckduckgo", Endpoint: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	resp, err := s.Search(context.Background(), "Yann LeCun Twitter")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("got %d results, want 2 (ads skipped): %+v", len(resp.Results), resp.Results)
	}
	if resp.Results[0].URL != "https://twitter.com/ylecun" {
		t.Errorf("redirect not resolved: %q", resp.Results[0].URL)
	}
	if resp.Results[0].Title != "Yann LeCun (@ylecun) / X" {
		t.Errorf("title = %q", resp.Results[0].Title)
	}
	if resp.Results[1].Snippet != "Chief AI Scientist at Meta" {
		t.Errorf("snippet = %q", resp.Results[1].Snippet)
	}
}

func TestDuckDuckGoMaxResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	s := &DuckDuckGo{Endpoint: srv.URL, MaxResults: 1, Client: srv.Client()}
	resp, err := s.Search(context.Background(), "q")
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Results) != 1 {
		t.Errorf("got %d results, want 1", len(resp.Results))
	}
}

func TestNewUnknownBackend(t *testing.T) {
	if _, err := New(Options{Backend: "altavista"}); err == nil {
		t.Error("New should reject unknown backends")
	}
	if _, err := New(Options{Backend: "tavily"}); err == nil {
		t.Error("tavily without API key should fail")
	}
}

func TestDigest(t *testing.T) {
	if got := Digest(&Response{}); got != "No good search result found" {
		t.Errorf("Digest(empty) = %q", got)
	}

	got := Digest(&Response{
		Answer:  "42",
		Results: []Result{{Title: "Yann LeCun", URL: "https://x.com/ylecun"}},
	})
	if !strings.HasPrefix(got, "Answer: 42") {
		t.Errorf("digest should start with the answer: %q", got)
	}
	if !strings.Contains(got, "1. Yann LeCun\n   https://x.com/ylecun") {
		t.Errorf("digest missing result: %q", got)
	}
}

type stubSearcher struct{ query string }

func (s *stubSearcher) Search(_ context.Context, q string) (*Response, error) {
	s.query = q
	return &Response{Results: []Result{{Title: "t", URL: "https://u"}}}, nil
}

func TestTool(t *testing.T) {
	stub := &stubSearcher{}
	tool := &Tool{Searcher: stub}

	if defs := tool.AllTools(); len(defs) != 1 || defs[0].Name != ToolName {
		t.Fatalf("AllTools = %+v", defs)
	}

	out, err := tool.CallTool(context.Background(), ToolName, map[string]any{"query": "Yann LeCun"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if stub.query != "Yann LeCun" || !strings.Contains(out, "https://u") {
		t.Errorf("query=%q out=%q", stub.query, out)
	}

	if out, _ := tool.CallTool(context.Background(), ToolName, map[string]any{}); !strings.HasPrefix(out, "error:") {
		t.Errorf("missing query should produce an error result, got %q", out)
	}
	if _, err := tool.CallTool(context.Background(), "shell_exec", nil); !errors.Is(err, tools.ErrUnknownTool) {
		t.Errorf("unknown tool error = %v, want ErrUnknownTool", err)
	}
}

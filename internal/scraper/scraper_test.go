package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestProxycurlFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer pc-key" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.URL.Query().Get("url"); got != "https://www.linkedin.com/in/yann-lecun/" {
			t.Errorf("url param = %q", got)
		}
		w.Write([]byte(`{"full_name": "Yann LeCun", "follower_count": 700000}`))
	}))
	defer srv.Close()

	p := NewProxycurl(srv.URL+"/proxycurl/api/v2/linkedin", "pc-key", time.Second, nil)
	rec, err := p.Fetch(context.Background(), "https://www.linkedin.com/in/yann-lecun/")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if rec["full_name"] != "Yann LeCun" {
		t.Errorf("full_name = %v", rec["full_name"])
	}
}

func TestProxycurlErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"description": "Not enough credits"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	p := NewProxycurl(srv.URL, "pc-key", time.Second, nil)
	_, err := p.Fetch(context.Background(), "https://www.linkedin.com/in/x/")
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("Fetch = %v, want 403 error", err)
	}

	noKey := NewProxycurl(srv.URL, "", time.Second, nil)
	if _, err := noKey.Fetch(context.Background(), "x"); err == nil {
		t.Error("Fetch without API key should fail")
	}
}

func TestApifyFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/v2/acts/quacker~twitter-scraper/run-sync-get-dataset-items" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "apify-token" {
			t.Errorf("token = %q", r.URL.Query().Get("token"))
		}

		var input map[string]any
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			t.Fatalf("decoding input: %v", err)
		}
		urls := input["startUrls"].([]any)
		if urls[0].(map[string]any)["url"] != "https://twitter.com/ylecun" {
			t.Errorf("startUrls = %v", urls)
		}
		if input["tweetsDesired"] != float64(5) {
			t.Errorf("tweetsDesired = %v", input["tweetsDesired"])
		}

		w.Write([]byte(`[
			{"full_text": "pinned", "user": {"name": "Yann LeCun"}},
			{"full_text": "second"}
		]`))
	}))
	defer srv.Close()

	a := NewApify(srv.URL+"/v2/", "apify-token", "quacker~twitter-scraper", 5, time.Second, nil)
	rec, err := a.Fetch(context.Background(), "@ylecun")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if rec["full_text"] != "pinned" {
		t.Errorf("should return the first dataset item, got %v", rec)
	}
}

func TestApifyEmptyDataset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	a := NewApify(srv.URL, "tok", "actor", 0, time.Second, nil)
	if _, err := a.Fetch(context.Background(), "nobody"); err == nil {
		t.Fatal("Fetch should fail on an empty dataset")
	}
}

package icebreaker

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/michaelbrown/icebreaker/internal/lookup"
	"github.com/michaelbrown/icebreaker/internal/profile"
)

type fakeGenerator struct {
	text   string
	err    error
	prompt string
}

func (g *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompt = prompt
	return g.text, g.err
}

type streamingGenerator struct {
	fakeGenerator
	deltas []string
}

func (g *streamingGenerator) GenerateStream(_ context.Context, prompt string, onDelta func(string)) (string, error) {
	g.prompt = prompt
	for _, d := range g.deltas {
		onDelta(d)
	}
	return strings.Join(g.deltas, ""), nil
}

func fixedResolver(id string, calls *int) lookup.Resolver {
	return lookup.ResolverFunc(func(_ context.Context, _ string) (string, error) {
		*calls++
		return id, nil
	})
}

func newDownloader(t *testing.T, fetched map[string]profile.Record) *profile.Downloader {
	t.Helper()
	reg := profile.NewRegistry()
	for name, rec := range fetched {
		rec := rec
		reg.Register(profile.Policy{
			Name: name,
			Fetcher: profile.FetcherFunc(func(_ context.Context, _ string) (profile.Record, error) {
				return rec.Clone(), nil
			}),
			Fields: profile.FieldPolicy{DropEmpty: true},
		})
	}
	return profile.NewDownloader(reg, profile.Production, t.TempDir(), nil)
}

func TestBuildPrompt(t *testing.T) {
	got := BuildPrompt(profile.Record{"full_name": "Ada"}, profile.Record{"screen_name": "ada"})

	for _, want := range []string{
		`"full_name": "Ada"`,
		`"screen_name": "ada"`,
		"1. a short summary",
		"2. two interesting facts about them",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "{linkedin}") || strings.Contains(got, "{twitter}") {
		t.Errorf("placeholders left in prompt:\n%s", got)
	}
}

func TestGenerateReturnsTextUnmodified(t *testing.T) {
	gen := &fakeGenerator{text: "  Summary: ...\n\nFacts: 1. 2.  "}
	o := New(nil, newDownloader(t, nil), gen, nil)

	got, err := o.Generate(context.Background(), "Ada", profile.Record{"a": 1.0}, profile.Record{"b": 2.0})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != gen.text {
		t.Errorf("Generate = %q, want %q", got, gen.text)
	}
	if !strings.Contains(gen.prompt, `"a": 1`) || !strings.Contains(gen.prompt, `"b": 2`) {
		t.Errorf("prompt does not carry records:\n%s", gen.prompt)
	}
}

func TestGenerateError(t *testing.T) {
	boom := errors.New("rate limited")
	o := New(nil, newDownloader(t, nil), &fakeGenerator{err: boom}, nil)

	_, err := o.Generate(context.Background(), "Ada", profile.Record{}, profile.Record{})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want wrapping %v", err, boom)
	}
}

func TestRunResolvesAndDownloads(t *testing.T) {
	var liCalls, twCalls int
	resolvers := map[string]lookup.Resolver{
		"linkedin": fixedResolver("https://www.linkedin.com/in/ada/", &liCalls),
		"twitter":  fixedResolver("ada", &twCalls),
	}
	dl := newDownloader(t, map[string]profile.Record{
		"linkedin": {"full_name": "Ada Lovelace", "summary": ""},
		"twitter":  {"screen_name": "ada"},
	})
	gen := &fakeGenerator{text: "hello"}

	var events []EventType
	o := New(resolvers, dl, gen, nil)
	res, err := o.Run(context.Background(), Request{
		Name:    "Ada Lovelace",
		OnEvent: func(e Event) { events = append(events, e.Type) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if liCalls != 1 || twCalls != 1 {
		t.Errorf("resolver calls = %d/%d, want 1/1", liCalls, twCalls)
	}
	if res.Identifiers["linkedin"] != "https://www.linkedin.com/in/ada/" || res.Identifiers["twitter"] != "ada" {
		t.Errorf("Identifiers = %v", res.Identifiers)
	}
	if _, ok := res.LinkedIn["summary"]; ok {
		t.Error("downloaded profile was not cleaned")
	}
	if res.Text != "hello" {
		t.Errorf("Text = %q", res.Text)
	}

	want := []EventType{
		EventResolving, EventResolved, EventDownloaded,
		EventResolving, EventResolved, EventDownloaded,
		EventGenerating,
	}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, events[i], want[i])
		}
	}
}

func TestRunSkipsSuppliedRecords(t *testing.T) {
	var calls int
	resolvers := map[string]lookup.Resolver{
		"linkedin": fixedResolver("x", &calls),
		"twitter":  fixedResolver("y", &calls),
	}
	o := New(resolvers, newDownloader(t, nil), &fakeGenerator{text: "ok"}, nil)

	_, err := o.Run(context.Background(), Request{
		Name:     "Ada",
		LinkedIn: profile.Record{"full_name": "Ada"},
		Twitter:  profile.Record{"screen_name": "ada"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if calls != 0 {
		t.Errorf("resolvers called %d times, want 0", calls)
	}
}

func TestRunResolverFailureAborts(t *testing.T) {
	gen := &fakeGenerator{text: "never"}
	resolvers := map[string]lookup.Resolver{
		"linkedin": lookup.ResolverFunc(func(context.Context, string) (string, error) {
			return "", lookup.ErrNoAnswer
		}),
	}
	o := New(resolvers, newDownloader(t, nil), gen, nil)

	_, err := o.Run(context.Background(), Request{Name: "Nobody"})
	if !errors.Is(err, lookup.ErrNoAnswer) {
		t.Fatalf("error = %v, want ErrNoAnswer", err)
	}
	if gen.prompt != "" {
		t.Error("generator called after resolver failure")
	}
}

func TestRunMissingResolver(t *testing.T) {
	o := New(nil, newDownloader(t, nil), &fakeGenerator{}, nil)

	_, err := o.Run(context.Background(), Request{Name: "Ada", LinkedIn: profile.Record{}})
	if err == nil || !strings.Contains(err.Error(), "twitter") {
		t.Fatalf("error = %v, want missing twitter resolver", err)
	}
}

func TestRunUnknownProviderDownload(t *testing.T) {
	var calls int
	resolvers := map[string]lookup.Resolver{"linkedin": fixedResolver("x", &calls)}
	o := New(resolvers, newDownloader(t, nil), &fakeGenerator{}, nil)

	_, err := o.Run(context.Background(), Request{Name: "Ada", Twitter: profile.Record{}})
	if !errors.Is(err, profile.ErrUnknownProvider) {
		t.Fatalf("error = %v, want ErrUnknownProvider", err)
	}
}

func TestRunStreamsDeltas(t *testing.T) {
	gen := &streamingGenerator{deltas: []string{"Hel", "lo"}}
	o := New(nil, newDownloader(t, nil), gen, nil)

	var got []string
	res, err := o.Run(context.Background(), Request{
		Name:     "Ada",
		LinkedIn: profile.Record{},
		Twitter:  profile.Record{},
		OnEvent: func(e Event) {
			if e.Type == EventDelta {
				got = append(got, e.Content)
			}
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Text != "Hello" {
		t.Errorf("Text = %q, want Hello", res.Text)
	}
	if strings.Join(got, "|") != "Hel|lo" {
		t.Errorf("deltas = %v", got)
	}
}

func TestRunDownloadOptions(t *testing.T) {
	var calls int
	resolvers := map[string]lookup.Resolver{"linkedin": fixedResolver("ada", &calls)}
	dl := newDownloader(t, map[string]profile.Record{
		"linkedin": {"full_name": "Ada Lovelace", "summary": ""},
	})
	o := New(resolvers, dl, &fakeGenerator{text: "hi"}, nil)
	o.SetDownloadOptions(profile.DownloadOptions{})

	res, err := o.Run(context.Background(), Request{Name: "Ada", Twitter: profile.Record{}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := res.LinkedIn["summary"]; !ok {
		t.Error("record was cleaned with Clean unset")
	}
	entries, err := os.ReadDir(dl.Root())
	if err == nil && len(entries) > 0 {
		t.Errorf("profile saved with Save unset: %v", entries)
	}
}

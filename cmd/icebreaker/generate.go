package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kaptinlin/jsonrepair"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/icebreaker/internal/agent"
	"github.com/michaelbrown/icebreaker/internal/icebreaker"
	"github.com/michaelbrown/icebreaker/internal/profile"
	"github.com/michaelbrown/icebreaker/internal/storage"
)

var (
	linkedinFileFlag string
	twitterFileFlag  string
	noHistoryFlag    bool

	genForceScrapingFlag bool
	genSaveProfileFlag   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a summary and two interesting facts about a person",
	Long: `Find the person's LinkedIn and Twitter profiles, download them and ask the
LLM for a short summary and two interesting facts.

A profile file skips lookup and download for that provider.

Examples:
  icebreaker generate "Yann LeCun"
  icebreaker generate "Yann LeCun" --linkedin-file data/profiles/linkedin__yann_lecun.json
  icebreaker generate "Yann LeCun" --provider claude`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&linkedinFileFlag, "linkedin-file", "", "Use this LinkedIn profile JSON instead of looking it up")
	generateCmd.Flags().StringVar(&twitterFileFlag, "twitter-file", "", "Use this Twitter profile JSON instead of looking it up")
	generateCmd.Flags().BoolVar(&noHistoryFlag, "no-history", false, "Do not record the run in history")
	generateCmd.Flags().BoolVar(&genForceScrapingFlag, "force-scraping", false, "Call the scraping APIs even when a stored profile exists")
	generateCmd.Flags().BoolVar(&genSaveProfileFlag, "save-profile", true, "Save downloaded profiles under the profiles directory")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	name := strings.Join(args, " ")

	req := icebreaker.Request{Name: name}
	if linkedinFileFlag != "" {
		if req.LinkedIn, err = readRecordFile(linkedinFileFlag); err != nil {
			return err
		}
	}
	if twitterFileFlag != "" {
		if req.Twitter, err = readRecordFile(twitterFileFlag); err != nil {
			return err
		}
	}

	var store storage.Store
	if !noHistoryFlag {
		if store, err = a.openStore(); err != nil {
			return err
		}
	}

	withLookup := req.LinkedIn == nil || req.Twitter == nil
	p, err := a.pipeline(withLookup, printToolCall)
	if err != nil {
		return err
	}
	p.orchestrator.SetDownloadOptions(generateDownloadOptions())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return generateAndRecord(ctx, a, p, store, req)
}

// generateAndRecord runs the pipeline, streaming the answer to stdout, and
// stores the run when store is non-nil.
func generateAndRecord(ctx context.Context, a *app, p *pipeline, store storage.Store, req icebreaker.Request) error {
	run := &storage.Run{
		ID:       newRunID(),
		Name:     req.Name,
		Provider: p.provider,
		Model:    p.model,
	}
	if store != nil {
		if err := store.CreateRun(ctx, run); err != nil {
			return err
		}
	}

	req.OnEvent = func(e icebreaker.Event) {
		switch e.Type {
		case icebreaker.EventResolved:
			fmt.Printf("  \033[90m%s: %s\033[0m\n", e.Provider, e.Identifier)
			switch e.Provider {
			case "linkedin":
				run.LinkedInID = e.Identifier
			case "twitter":
				run.TwitterID = e.Identifier
			}
		case icebreaker.EventGenerating:
			fmt.Printf("\n\033[32micebreaker>\033[0m ")
		case icebreaker.EventDelta:
			fmt.Print(e.Content)
		}
	}

	res, err := p.orchestrator.Run(ctx, req)
	if err != nil {
		run.Status = storage.StatusFailed
		run.Error = err.Error()
	} else {
		run.Status = storage.StatusCompleted
		run.Output = res.Text
		fmt.Printf("\n\n")
	}

	if store != nil {
		if updErr := store.UpdateRun(context.WithoutCancel(ctx), run); updErr != nil {
			a.logger.Warn("failed to save run", "run", run.ID, "error", updErr)
		}
	}
	return err
}

func printToolCall(name string, args map[string]any) {
	fmt.Printf("  \033[33m⚡ %s\033[0m\n", agent.FormatToolCall(name, args))
}

// readRecordFile loads a profile from a JSON file. Hand-edited files are
// repaired when they do not parse.
func readRecordFile(path string) (profile.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}

	var rec profile.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(string(data))
		if rerr != nil {
			return nil, fmt.Errorf("parsing profile file %s: %w", path, err)
		}
		rec = nil
		if err := json.Unmarshal([]byte(repaired), &rec); err != nil {
			return nil, fmt.Errorf("parsing profile file %s: %w", path, err)
		}
	}
	if rec == nil {
		return nil, fmt.Errorf("parsing profile file %s: %w", path, profile.ErrNoData)
	}
	return rec, nil
}

// generateDownloadOptions always cleans: the prompt gets cleaned records.
func generateDownloadOptions() profile.DownloadOptions {
	return profile.DownloadOptions{
		Clean:       true,
		Save:        genSaveProfileFlag,
		ForceRemote: genForceScrapingFlag,
	}
}

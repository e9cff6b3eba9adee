package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/michaelbrown/icebreaker/internal/storage"
)

var (
	statusFilter string
	nameFilter   string
	limitFlag    int
	exportFormat string
	exportOutput string
	forceFlag    bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"runs", "h"},
	Short:   "Manage past icebreaker runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past runs",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run and its output",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryDelete,
}

var historyExportCmd = &cobra.Command{
	Use:   "export <run-id>",
	Short: "Export a run as markdown or JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryExport,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyDeleteCmd, historyExportCmd)

	historyListCmd.Flags().StringVar(&statusFilter, "status", "", "Filter by status (running, completed, failed)")
	historyListCmd.Flags().StringVar(&nameFilter, "name", "", "Filter by person name")
	historyListCmd.Flags().IntVar(&limitFlag, "limit", 20, "Max runs to show")

	historyExportCmd.Flags().StringVar(&exportFormat, "format", "md", "Export format: md or json")
	historyExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")

	historyDeleteCmd.Flags().BoolVar(&forceFlag, "force", false, "Skip confirmation")
}

func newRunID() string {
	return uuid.New().String()
}

// withStore opens the history database for a single command.
func withStore(fn func(ctx context.Context, store storage.Store) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	return fn(context.Background(), store)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, store storage.Store) error {
		runs, err := store.ListRuns(ctx, storage.RunListOptions{
			Status: storage.RunStatus(statusFilter),
			Name:   nameFilter,
			Limit:  limitFlag,
		})
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Println("No runs found.")
			return nil
		}

		// Header
		fmt.Printf("%-10s %-11s %-30s %-15s %s\n", "ID", "STATUS", "NAME", "MODEL", "UPDATED")
		fmt.Println(strings.Repeat("─", 80))

		for _, r := range runs {
			fmt.Printf("%-10s %-11s %-30s %-15s %s\n",
				shortID(r.ID), r.Status, clip(r.Name, 28), clip(r.Model, 13), timeAgo(r.UpdatedAt))
		}
		return nil
	})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, store storage.Store) error {
		run, err := store.GetRun(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Run:      %s\n", run.ID)
		fmt.Printf("Name:     %s\n", run.Name)
		fmt.Printf("Status:   %s\n", run.Status)
		if run.LinkedInID != "" {
			fmt.Printf("LinkedIn: %s\n", run.LinkedInID)
		}
		if run.TwitterID != "" {
			fmt.Printf("Twitter:  %s\n", run.TwitterID)
		}
		fmt.Printf("Provider: %s\n", run.Provider)
		fmt.Printf("Model:    %s\n", run.Model)
		fmt.Printf("Created:  %s\n", run.CreatedAt.Format(time.RFC3339))
		fmt.Printf("Updated:  %s\n", run.UpdatedAt.Format(time.RFC3339))
		fmt.Println(strings.Repeat("─", 60))

		switch {
		case run.Output != "":
			fmt.Printf("\n%s\n", strings.TrimSpace(run.Output))
		case run.Error != "":
			fmt.Printf("\n\033[31merror: %s\033[0m\n", run.Error)
		}
		return nil
	})
}

func runHistoryDelete(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, store storage.Store) error {
		run, err := store.GetRun(ctx, args[0])
		if err != nil {
			return err
		}

		if !forceFlag {
			fmt.Printf("Delete run %s - %q? [y/N] ", shortID(run.ID), run.Name)
			var confirm string
			fmt.Scanln(&confirm)
			if strings.ToLower(confirm) != "y" {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		if err := store.DeleteRun(ctx, run.ID); err != nil {
			return err
		}
		fmt.Printf("Deleted run %s\n", shortID(run.ID))
		return nil
	})
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	return withStore(func(ctx context.Context, store storage.Store) error {
		run, err := store.GetRun(ctx, args[0])
		if err != nil {
			return err
		}

		var output string
		switch exportFormat {
		case "json":
			data, err := storage.ExportJSON(run)
			if err != nil {
				return err
			}
			output = string(data)
		default:
			output = storage.ExportMarkdown(run)
		}

		if exportOutput != "" {
			return os.WriteFile(exportOutput, []byte(output), 0o644)
		}

		fmt.Print(output)
		return nil
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func clip(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen] + ".."
	}
	return s
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

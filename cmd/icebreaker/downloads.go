package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/icebreaker/internal/storage"
)

var downloadsProviderFlag string

var downloadsCmd = &cobra.Command{
	Use:   "downloads",
	Short: "List downloaded profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(ctx context.Context, store storage.Store) error {
			downloads, err := store.ListDownloads(ctx, storage.DownloadListOptions{
				Provider: downloadsProviderFlag,
				Limit:    limitFlag,
			})
			if err != nil {
				return err
			}

			if len(downloads) == 0 {
				fmt.Println("No downloads recorded.")
				return nil
			}

			fmt.Printf("%-9s %-25s %-12s %-6s %s\n", "PROVIDER", "SLUG", "MODE", "FLAGS", "WHEN")
			fmt.Println(strings.Repeat("─", 70))
			for _, d := range downloads {
				fmt.Printf("%-9s %-25s %-12s %-6s %s\n",
					d.Provider, clip(d.Slug, 23), d.Mode, downloadFlags(d), timeAgo(d.CreatedAt))
			}
			return nil
		})
	},
}

func init() {
	downloadsCmd.Flags().StringVar(&downloadsProviderFlag, "provider-name", "", "Filter by profile provider (linkedin, twitter)")
	downloadsCmd.Flags().IntVar(&limitFlag, "limit", 20, "Max entries to show")
	rootCmd.AddCommand(downloadsCmd)
}

// downloadFlags renders cleaned/saved/forced as a compact "csf" marker.
func downloadFlags(d storage.Download) string {
	flags := []byte("---")
	if d.Cleaned {
		flags[0] = 'c'
	}
	if d.Saved {
		flags[1] = 's'
	}
	if d.Forced {
		flags[2] = 'f'
	}
	return string(flags)
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/icebreaker/internal/profile"
)

var (
	folderPathFlag    string
	cleanProfileFlag  bool
	saveProfileFlag   bool
	forceScrapingFlag bool
)

var downloadCmd = &cobra.Command{
	Use:   "download-profile <provider> <identifier>",
	Short: "Download a LinkedIn or Twitter profile",
	Long: `Download a profile and save it as JSON under the profiles folder.

The identifier is a LinkedIn profile URL or a Twitter username.

Examples:
  icebreaker download-profile linkedin https://www.linkedin.com/in/yann-lecun/
  icebreaker download-profile twitter ylecun --force-scraping
  icebreaker download-profile linkedin https://www.linkedin.com/in/yann-lecun/ --clean-profile=false -p /tmp/profiles`,
	Args: cobra.ExactArgs(2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&folderPathFlag, "folder_path", "p", "", "Profiles folder (default: profiles_path from config)")
	downloadCmd.Flags().BoolVar(&cleanProfileFlag, "clean-profile", true, "Clean the profile")
	downloadCmd.Flags().BoolVar(&saveProfileFlag, "save-profile", true, "Save the profile")
	downloadCmd.Flags().BoolVar(&forceScrapingFlag, "force-scraping", false, "Fetch from the remote API even in development mode")
	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.openStore(); err != nil {
		// The catalog is optional for downloads.
		a.logger.Warn("download catalog unavailable", "error", err)
	}

	provider, identifier := args[0], args[1]
	opts := profile.DownloadOptions{
		Clean:       cleanProfileFlag,
		Save:        saveProfileFlag,
		ForceRemote: forceScrapingFlag,
		Root:        folderPathFlag,
	}

	a.logger.Info("downloading profile", "provider", provider, "identifier", identifier, "mode", a.mode)

	svc, err := a.downloader.Download(context.Background(), provider, identifier, opts)
	if err != nil {
		return fmt.Errorf("downloading %s profile: %w", provider, err)
	}
	record := svc.Record()
	a.logger.Debug("profile downloaded", "source", svc.Source(), "record", record.JSON())

	fmt.Println(record.JSON())
	if svc.State() == profile.StatePersisted {
		a.logger.Info("profile saved", "path", svc.Path())
	}
	return nil
}

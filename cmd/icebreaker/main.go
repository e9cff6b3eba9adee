package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configFlag   string
	modeFlag     string
	logLevelFlag string
	providerFlag string
	modelFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "icebreaker",
	Short: "Icebreaker - conversation starters from public profiles",
	Long: `Icebreaker finds a person's LinkedIn and Twitter profiles, downloads and
cleans them, and asks an LLM for a short summary and two interesting facts.

In development mode profiles are read from disk (or the bundled samples);
in production mode they are fetched from Proxycurl and Apify.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default ./icebreaker.yaml or ~/.icebreaker/icebreaker.yaml)")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "", "Acquisition mode: development or production (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "LLM provider (overrides config)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "Model to use (overrides config)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

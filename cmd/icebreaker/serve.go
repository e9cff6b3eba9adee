package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/michaelbrown/icebreaker/internal/server"
)

var portFlag int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the icebreaker HTTP server",
	Long: `Start the HTTP server with REST API and WebSocket support.

Endpoints are under /api: providers, profiles/{provider}, downloads and
icebreakers (list, create, get, delete, export, ws).

Examples:
  icebreaker serve
  icebreaker serve --port 9090`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	store, err := a.openStore()
	if err != nil {
		return err
	}

	p, err := a.pipeline(true, nil)
	if err != nil {
		return err
	}

	// Determine port
	port := a.cfg.Server.Port
	if portFlag > 0 {
		port = portFlag
	}

	srv := server.New(server.Options{
		Store:      store,
		Pipeline:   p.orchestrator,
		Downloader: a.downloader,
		Provider:   p.provider,
		Model:      p.model,
		Logger:     a.logger,
	})

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		srv.Shutdown(context.Background())
	}()

	err = srv.Start(fmt.Sprintf(":%d", port))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

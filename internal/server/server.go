// Package server exposes profile downloads and icebreaker generation over
// HTTP and WebSocket.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/michaelbrown/icebreaker/internal/icebreaker"
	"github.com/michaelbrown/icebreaker/internal/profile"
	"github.com/michaelbrown/icebreaker/internal/storage"
)

// Pipeline runs an icebreaker generation.
type Pipeline interface {
	Run(ctx context.Context, req icebreaker.Request) (*icebreaker.Result, error)
}

// Options configures a Server.
type Options struct {
	Store      storage.Store
	Pipeline   Pipeline
	Downloader *profile.Downloader

	// LLM provider and model recorded on each run.
	Provider string
	Model    string

	Logger *slog.Logger
}

// Server is the HTTP server for the icebreaker API.
type Server struct {
	opts   Options
	store  storage.Store
	runs   *RunManager
	logger *slog.Logger
	router chi.Router
	http   *http.Server
}

// New creates a new Server.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		opts:   opts,
		store:  opts.Store,
		runs:   NewRunManager(),
		logger: logger,
		router: chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// WebSocket (no JSON content-type)
		r.Get("/icebreakers/ws", s.handleWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(jsonContentType)

			r.Get("/providers", s.handleListProviders)
			r.Post("/profiles/{provider}", s.handleDownloadProfile)
			r.Get("/downloads", s.handleListDownloads)

			r.Get("/icebreakers", s.handleListRuns)
			r.Post("/icebreakers", s.handleCreateRun)
			r.Get("/icebreakers/{id}", s.handleGetRun)
			r.Delete("/icebreakers/{id}", s.handleDeleteRun)
		})

		// Export sets its own content type
		r.Get("/icebreakers/{id}/export", s.handleExportRun)
	})
}

// jsonContentType sets Content-Type to application/json for API routes.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request through the server logger.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Start begins listening on addr.
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("icebreaker server starting", "addr", addr)
	return s.http.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	s.runs.CloseAll()
	if s.http == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.http.Shutdown(shutdownCtx)
}

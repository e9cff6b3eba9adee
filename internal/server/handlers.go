package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/michaelbrown/icebreaker/internal/icebreaker"
	"github.com/michaelbrown/icebreaker/internal/lookup"
	"github.com/michaelbrown/icebreaker/internal/profile"
	"github.com/michaelbrown/icebreaker/internal/storage"
)

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// statusFor maps pipeline and storage errors to HTTP status codes.
func statusFor(err error) int {
	var fetchErr *profile.FetchError
	switch {
	case errors.Is(err, profile.ErrUnknownProvider),
		errors.Is(err, profile.ErrNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &fetchErr), errors.Is(err, lookup.ErrNoAnswer):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, key string) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}

// --- Provider handlers ---

type providersResponse struct {
	Profiles []string `json:"profiles"`
	Mode     string   `json:"mode"`
	Provider string   `json:"llm_provider"`
	Model    string   `json:"llm_model"`
}

func (s *Server) handleListProviders(w http.ResponseWriter, r *http.Request) {
	resp := providersResponse{
		Profiles: []string{},
		Provider: s.opts.Provider,
		Model:    s.opts.Model,
	}
	if d := s.opts.Downloader; d != nil {
		resp.Profiles = d.Registry().Names()
		resp.Mode = d.Mode().String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Profile handlers ---

type downloadRequest struct {
	Identifier  string `json:"identifier"`
	Clean       *bool  `json:"clean"`
	Save        *bool  `json:"save"`
	ForceRemote bool   `json:"force_remote"`
}

type downloadResponse struct {
	Provider   string         `json:"provider"`
	Identifier string         `json:"identifier"`
	Slug       string         `json:"slug"`
	Path       string         `json:"path"`
	Source     string         `json:"source"`
	Saved      bool           `json:"saved"`
	Record     profile.Record `json:"record"`
}

func (s *Server) handleDownloadProfile(w http.ResponseWriter, r *http.Request) {
	if s.opts.Downloader == nil {
		writeError(w, http.StatusServiceUnavailable, "profile downloads are not configured")
		return
	}
	provider := chi.URLParam(r, "provider")

	var req downloadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Identifier == "" {
		writeError(w, http.StatusBadRequest, "identifier is required")
		return
	}

	opts := profile.DefaultDownloadOptions()
	if req.Clean != nil {
		opts.Clean = *req.Clean
	}
	if req.Save != nil {
		opts.Save = *req.Save
	}
	opts.ForceRemote = req.ForceRemote

	svc, err := s.opts.Downloader.Download(r.Context(), provider, req.Identifier, opts)
	if err != nil {
		s.logger.Warn("profile download failed", "provider", provider, "identifier", req.Identifier, "error", err)
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, downloadResponse{
		Provider:   provider,
		Identifier: req.Identifier,
		Slug:       svc.Slug(),
		Path:       svc.Path(),
		Source:     svc.Source().String(),
		Saved:      svc.State() == profile.StatePersisted,
		Record:     svc.Record(),
	})
}

func (s *Server) handleListDownloads(w http.ResponseWriter, r *http.Request) {
	opts := storage.DownloadListOptions{
		Provider: r.URL.Query().Get("provider"),
		Limit:    queryInt(r, "limit"),
	}

	downloads, err := s.store.ListDownloads(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if downloads == nil {
		downloads = []storage.Download{}
	}
	writeJSON(w, http.StatusOK, downloads)
}

// --- Icebreaker handlers ---

type generateRequest struct {
	Name     string         `json:"name"`
	LinkedIn profile.Record `json:"linkedin,omitempty"`
	Twitter  profile.Record `json:"twitter,omitempty"`
}

// generate records a run, executes the pipeline and stores the outcome.
// The returned run is never nil once it has been created.
func (s *Server) generate(ctx context.Context, req generateRequest, onEvent func(icebreaker.Event)) (*storage.Run, error) {
	run := &storage.Run{
		ID:       uuid.New().String(),
		Name:     req.Name,
		Status:   storage.StatusRunning,
		Provider: s.opts.Provider,
		Model:    s.opts.Model,
	}
	if err := s.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	runCtx, done := s.runs.Start(ctx, run.ID)
	defer done()

	res, err := s.opts.Pipeline.Run(runCtx, icebreaker.Request{
		Name:     req.Name,
		LinkedIn: req.LinkedIn,
		Twitter:  req.Twitter,
		OnEvent: func(e icebreaker.Event) {
			if e.Type == icebreaker.EventResolved {
				switch e.Provider {
				case "linkedin":
					run.LinkedInID = e.Identifier
				case "twitter":
					run.TwitterID = e.Identifier
				}
			}
			if onEvent != nil {
				onEvent(e)
			}
		},
	})

	if err != nil {
		run.Status = storage.StatusFailed
		run.Error = err.Error()
	} else {
		run.Status = storage.StatusCompleted
		run.Output = res.Text
	}

	// Persist even when the request context is gone.
	if updErr := s.store.UpdateRun(context.WithoutCancel(ctx), run); updErr != nil {
		s.logger.Error("failed to save run", "run", run.ID, "error", updErr)
	}
	if err != nil {
		s.logger.Warn("icebreaker run failed", "run", run.ID, "name", run.Name, "error", err)
	}
	return run, err
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	run, err := s.generate(r.Context(), req, nil)
	if err != nil {
		if run == nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, statusFor(err), run)
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	opts := storage.RunListOptions{
		Status: storage.RunStatus(r.URL.Query().Get("status")),
		Name:   r.URL.Query().Get("name"),
		Limit:  queryInt(r, "limit"),
		Offset: queryInt(r, "offset"),
	}

	runs, err := s.store.ListRuns(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if runs == nil {
		runs = []storage.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	// Stop in-flight work first
	s.runs.Cancel(run.ID)

	if err := s.store.DeleteRun(r.Context(), run.ID); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		writeError(w, statusFor(err), err.Error())
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "markdown", "md":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(storage.ExportMarkdown(run)))
	case "json":
		data, err := storage.ExportJSON(run)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	default:
		w.Header().Set("Content-Type", "application/json")
		writeError(w, http.StatusBadRequest, "format must be markdown or json")
	}
}

// Package server exposes the extraction pipeline over HTTP: a multipart
// upload endpoint returning an XLSX attachment, a job-history listing, and a
// health probe. The interactive UI is a separate frontend; this package only
// speaks JSON and file bytes.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/doculens/doculens/internal/history"
	"github.com/doculens/doculens/internal/pdf"
	"github.com/doculens/doculens/internal/pipeline"
)

// Server holds the handler dependencies.
type Server struct {
	proc   *pipeline.Processor
	loader *pdf.Loader
	store  *history.Store
	secret string
	log    *slog.Logger
}

func New(proc *pipeline.Processor, loader *pdf.Loader, store *history.Store, jwtSecret string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{proc: proc, loader: loader, store: store, secret: jwtSecret, log: logger}
}

// Router builds the chi mux with logging, panic recovery, and optional JWT auth.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Group(func(api chi.Router) {
		api.Use(func(next http.Handler) http.Handler { return jwtAuth(s.secret, next) })
		api.Post("/api/extract", s.handleExtract)
		api.Get("/api/history", s.handleHistory)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, code int, kind, msg string) {
	writeJSON(w, code, errorResponse{Error: kind, Message: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/lmeyer/fedidigest/internal/store"
)

// Server serves the published digest page and a small JSON API over
// the run archive.
type Server struct {
	store     store.Store
	outputDir string
	port      int
}

// New creates a new HTTP server.
func New(s store.Store, outputDir string, port int) *Server {
	if port == 0 {
		port = 8080
	}
	return &Server{
		store:     s,
		outputDir: outputDir,
		port:      port,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/runs", s.handleRuns)
	mux.HandleFunc("/api/v1/latest", s.handleLatest)
	mux.Handle("/", http.FileServer(http.Dir(s.outputDir)))

	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("server listening", "addr", addr, "dir", s.outputDir)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	runs, err := s.store.ListRuns(r.Context(), store.RunListOpts{Limit: 50})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  runs,
		"count": len(runs),
	})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	run, err := s.store.LatestRun(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no runs yet"})
		return
	}

	entries, err := s.store.GetEntries(r.Context(), run.ID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run":     run,
		"entries": entries,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Package api exposes the operational HTTP interface for the collector.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/opencampsites/ridb-collector/internal/collector"
	"github.com/opencampsites/ridb-collector/internal/metrics"
)

// Server serves health, metrics, and checkpoint inspection endpoints while
// a collection run is in flight.
type Server struct {
	router   chi.Router
	progress collector.ProgressStore
	logger   *zap.Logger
}

// NewServer constructs a Server over the given progress store.
func NewServer(progress collector.ProgressStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		progress: progress,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/progress/{collection_type}", s.getProgress)

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve runs an http.Server on addr until the context is canceled, then
// shuts it down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getProgress(w http.ResponseWriter, r *http.Request) {
	collectionType := chi.URLParam(r, "collection_type")
	p, err := s.progress.Load(r.Context(), collectionType)
	if err != nil {
		s.logger.Error("progress lookup failed",
			zap.String("collection_type", collectionType),
			zap.Error(err),
		)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "progress lookup failed"})
		return
	}
	if p == nil {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "no progress recorded"})
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("response write failed", zap.Error(err))
	}
}

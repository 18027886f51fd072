package badge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/codeGROOVE-dev/hourz/pkg/report"
)

const maxMessageBytes = 4 << 10

// Server accepts badge updates from interactive commands and reports the
// current badge.
type Server struct {
	state  *State
	sink   Setter
	logger *slog.Logger
}

// NewServer returns a server that reads the badge from state and applies
// updates through sink. sink should include state.
func NewServer(state *State, sink Setter, logger *slog.Logger) *Server {
	return &Server{state: state, sink: sink, logger: logger}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(s.headers)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/badge", s.handleGet)
		r.Post("/badge", s.handleUpdate)
	})
	return r
}

func (s *Server) headers(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		if strings.HasPrefix(r.URL.Path, "/v1/") {
			w.Header().Set("Cache-Control", "no-store")
		}
		next.ServeHTTP(w, r)
	})
}

func (*Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n")) //nolint:errcheck // client went away
}

func (s *Server) handleGet(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.state.Get()); err != nil {
		s.logger.Debug("write badge response", "error", err)
	}
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var msg Message
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	if err := dec.Decode(&msg); err != nil {
		http.Error(w, "invalid badge message", http.StatusBadRequest)
		return
	}
	if msg.Type != MessageType {
		http.Error(w, fmt.Sprintf("unknown message type %q", msg.Type), http.StatusBadRequest)
		return
	}

	text := report.BadgeLabel(msg.RemainingSeconds)
	if err := s.sink.Set(text, Color); err != nil {
		s.logger.Warn("badge update failed", "text", text, "error", err)
		http.Error(w, "badge update failed", http.StatusInternalServerError)
		return
	}
	s.logger.Debug("badge updated from message", "remaining", msg.RemainingSeconds, "text", text)
	w.WriteHeader(http.StatusAccepted)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("badge server starting", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("badge server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown badge server: %w", err)
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("badge server: %w", err)
	}
	s.logger.Info("badge server stopped")
	return nil
}

// Package observability serves metrics, health checks and a read-only view of
// running and past requests.
package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leonardotrapani/scribebot/internal/logging"
	"github.com/leonardotrapani/scribebot/internal/pipeline"
	"github.com/leonardotrapani/scribebot/internal/store"
)

const (
	defaultLimit = 20
	maxLimit     = 500
)

type JobLister interface {
	Jobs() []pipeline.JobInfo
}

type History interface {
	Recent(ctx context.Context, limit int) ([]store.Record, error)
	ByChat(ctx context.Context, chatID int64, limit int) ([]store.Record, error)
	Get(ctx context.Context, requestID string) (store.Record, error)
}

// Deps are the read sides the server exposes. History may be nil when
// storage is disabled; Ready may be nil when the service is always ready.
type Deps struct {
	Gatherer prometheus.Gatherer
	Jobs     JobLister
	History  History
	Ready    func() error
}

// NewRouter builds the HTTP routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		if deps.Ready != nil {
			if err := deps.Ready(); err != nil {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/jobs", func(w http.ResponseWriter, _ *http.Request) {
			jobs := []pipeline.JobInfo{}
			if deps.Jobs != nil {
				jobs = append(jobs, deps.Jobs.Jobs()...)
			}
			writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs, "count": len(jobs)})
		})

		r.Route("/transcriptions", func(r chi.Router) {
			r.Use(requireHistory(deps.History))
			r.Get("/", listTranscriptions(deps.History))
			r.Get("/{requestID}", getTranscription(deps.History))
		})
	})

	return r
}

func requireHistory(h History) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if h == nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "history storage is disabled"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func listTranscriptions(h History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
				return
			}
			limit = min(n, maxLimit)
		}

		var (
			records []store.Record
			err     error
		)
		if v := r.URL.Query().Get("chat"); v != "" {
			chatID, perr := strconv.ParseInt(v, 10, 64)
			if perr != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chat must be an integer"})
				return
			}
			records, err = h.ByChat(r.Context(), chatID, limit)
		} else {
			records, err = h.Recent(r.Context(), limit)
		}
		if err != nil {
			logger := logging.WithComponent("observability")
			logger.Error().Err(err).Msg("failed to list transcriptions")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list transcriptions"})
			return
		}
		if records == nil {
			records = []store.Record{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"transcriptions": records, "count": len(records)})
	}
}

func getTranscription(h History) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, err := h.Get(r.Context(), chi.URLParam(r, "requestID"))
		if errors.Is(err, store.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		if err != nil {
			logger := logging.WithComponent("observability")
			logger.Error().Err(err).Msg("failed to get transcription")
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get transcription"})
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Server runs the router on its own listener.
type Server struct {
	server *http.Server
	addr   string
}

func NewServer(addr string, deps Deps) *Server {
	return &Server{
		addr: addr,
		server: &http.Server{
			Addr:         addr,
			Handler:      NewRouter(deps),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start serves in a goroutine.
func (s *Server) Start() {
	go func() {
		logger := logging.WithComponent("observability")
		logger.Info().Str("addr", s.addr).Msg("Starting observability HTTP server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Observability HTTP server error")
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	logger := logging.WithComponent("observability")
	logger.Info().Msg("Shutting down observability HTTP server")
	return s.server.Shutdown(ctx)
}

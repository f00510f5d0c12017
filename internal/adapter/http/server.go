package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/couchcryptid/storm-track-verification/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxRequestBytes bounds the body of an on-demand verification request.
const maxRequestBytes = 1 << 20

// Verifier verifies a forecast track against an observed one.
type Verifier interface {
	Verify(ctx context.Context, req domain.VerificationRequest) (domain.VerificationResult, error)
}

// Server exposes health, readiness, metrics and on-demand verification
// HTTP endpoints.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz and /metrics
// routes. POST /verify is registered only when verifier is non-nil.
func NewServer(addr string, ready sharedobs.ReadinessChecker, verifier Verifier, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())
	if verifier != nil {
		mux.HandleFunc("POST /verify", s.handleVerify(verifier))
	}

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleVerify(verifier Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req domain.VerificationRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "decode request: "+err.Error())
			return
		}
		if req.StormID == "" {
			writeError(w, http.StatusBadRequest, "storm_id is required")
			return
		}

		result, err := verifier.Verify(r.Context(), req)
		if err != nil {
			if !errors.Is(err, domain.ErrInsufficientTrack) {
				s.logger.Warn("on-demand verification failed", "storm_id", req.StormID, "error", err)
			}
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		sharedobs.WriteJSON(w, http.StatusOK, result)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}

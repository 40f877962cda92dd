// Package gateway exposes the planner over HTTP: the WebSocket broadcast
// endpoint, the streaming chat route, and the server-action routes that
// mutate domain state and fan the change out to subscribers.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/RaffaelSchaefer/gc25-sub000/internal/assistant"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/auth"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/config"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/hub"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/observability"
	"github.com/RaffaelSchaefer/gc25-sub000/internal/store"
)

// Server is the planner HTTP server.
type Server struct {
	config   *config.Config
	logger   *slog.Logger
	store    store.Store
	hub      *hub.Hub
	auth     *auth.Service
	loop     *assistant.Loop
	metrics  *observability.Metrics
	registry *prometheus.Registry

	httpServer *http.Server
	startTime  time.Time
}

// NewServer wires the planner server. loop may be nil when no LLM backend
// is configured; the chat route then reports unavailable.
func NewServer(cfg *config.Config, logger *slog.Logger, st store.Store, h *hub.Hub, authService *auth.Service, loop *assistant.Loop, metrics *observability.Metrics, registry *prometheus.Registry) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config:    cfg,
		logger:    logger,
		store:     st,
		hub:       h,
		auth:      authService,
		loop:      loop,
		metrics:   metrics,
		registry:  registry,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	if registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}
	mux.Handle("GET /ws", s.newWSHandler())
	mux.HandleFunc("POST /api/chat", s.handleChat)

	mux.HandleFunc("POST /api/events", s.handleCreateEvent)
	mux.HandleFunc("GET /api/events", s.handleListEvents)
	mux.HandleFunc("GET /api/events/{id}", s.handleGetEvent)
	mux.HandleFunc("PUT /api/events/{id}", s.handleUpdateEvent)
	mux.HandleFunc("DELETE /api/events/{id}", s.handleDeleteEvent)
	mux.HandleFunc("POST /api/events/{id}/join", s.handleJoinEvent)
	mux.HandleFunc("POST /api/events/{id}/leave", s.handleLeaveEvent)
	mux.HandleFunc("GET /api/events/{id}/participants", s.handleListParticipants)
	mux.HandleFunc("POST /api/events/{id}/comments", s.handleCreateComment)
	mux.HandleFunc("PUT /api/comments/{id}", s.handleUpdateComment)
	mux.HandleFunc("DELETE /api/comments/{id}", s.handleDeleteComment)

	mux.HandleFunc("POST /api/goodies", s.handleCreateGoodie)
	mux.HandleFunc("GET /api/goodies", s.handleListGoodies)
	mux.HandleFunc("GET /api/goodies/{id}", s.handleGetGoodie)
	mux.HandleFunc("PUT /api/goodies/{id}", s.handleUpdateGoodie)
	mux.HandleFunc("DELETE /api/goodies/{id}", s.handleDeleteGoodie)
	mux.HandleFunc("POST /api/goodies/{id}/vote", s.handleVoteGoodie)
	mux.HandleFunc("DELETE /api/goodies/{id}/vote", s.handleClearVote)
	mux.HandleFunc("POST /api/goodies/{id}/collect", s.handleToggleCollect)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           s.sessionMiddleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Start runs the HTTP server until it fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and disconnects all subscribers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Shutdown()
	return s.httpServer.Shutdown(ctx)
}

// sessionMiddleware resolves the request's session once and attaches it to
// the context. Anonymous requests pass through with no session.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if session := s.auth.Resolve(r.Header); session != nil {
			r = r.WithContext(auth.WithSession(r.Context(), session))
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"uptime":      time.Since(s.startTime).String(),
		"subscribers": s.hub.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// Package server exposes blackjack tables over WebSocket. Every connection
// plays its own table; decisions left pending longer than the decision
// timeout are made automatically.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Config holds the per-server settings.
type Config struct {
	Address         string
	StartingBalance int
	DecisionTimeout time.Duration
	TableOptions    []game.Option
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Address:         ":8080",
		StartingBalance: 1000,
		DecisionTimeout: 30 * time.Second,
	}
}

// Option configures a Server.
type Option func(*Server)

// WithClock replaces the clock driving decision timeouts.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithLogger sets the server logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// Server accepts WebSocket sessions and serves health, stats and metrics.
type Server struct {
	config   Config
	logger   zerolog.Logger
	clock    quartz.Clock
	metrics  *Metrics
	upgrader websocket.Upgrader
	router   chi.Router

	mu       sync.RWMutex
	sessions map[string]*Session

	statsMu sync.Mutex
	stats   statistics.Statistics
}

// NewServer creates a server for cfg.
func NewServer(cfg Config, opts ...Option) *Server {
	if cfg.StartingBalance <= 0 {
		cfg.StartingBalance = DefaultConfig().StartingBalance
	}

	s := &Server{
		config:  cfg,
		logger:  zerolog.Nop(),
		clock:   quartz.NewReal(),
		metrics: NewMetrics(),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("component", "server").Logger()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}))
	s.router = r

	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler { return s.router }

// Metrics returns the server's collectors.
func (s *Server) Metrics() *Metrics { return s.metrics }

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then closes every session and
// shuts the HTTP server down.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting blackjack server")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down")
	s.closeSessions()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

// SessionCount returns the number of connected sessions.
func (s *Server) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Stats returns a copy of the statistics over every round the server has
// resolved.
func (s *Server) Stats() statistics.Statistics {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	out := s.stats
	out.Values = append([]float64(nil), s.stats.Values...)
	return out
}

func (s *Server) recordRound(r statistics.RoundResult) {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	s.stats.Add(r)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	sess := newSession(uuid.NewString(), conn, s)
	s.mu.Lock()
	s.sessions[sess.ID()] = sess
	count := len(s.sessions)
	s.mu.Unlock()
	s.metrics.activeSessions.Inc()
	s.logger.Info().Str("session_id", sess.ID()).Int("total", count).Msg("Client connected")

	sess.Start()

	go func() {
		<-sess.Done()
		s.mu.Lock()
		delete(s.sessions, sess.ID())
		count := len(s.sessions)
		s.mu.Unlock()
		s.metrics.activeSessions.Dec()
		s.logger.Info().Str("session_id", sess.ID()).Int("total", count).Msg("Client disconnected")
	}()
}

func (s *Server) closeSessions() {
	s.mu.RLock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	for _, sess := range sessions {
		_ = sess.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type statsResponse struct {
	Sessions   int     `json:"sessions"`
	Rounds     int     `json:"rounds"`
	Hands      int     `json:"hands"`
	Net        int     `json:"net"`
	Wagered    int     `json:"wagered"`
	WinRate    float64 `json:"win_rate"`
	HouseEdge  float64 `json:"house_edge"`
	MeanUnits  float64 `json:"mean_units"`
	StdDevUnit float64 `json:"stddev_units"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st := s.Stats()
	resp := statsResponse{
		Sessions:   s.SessionCount(),
		Rounds:     st.Rounds,
		Hands:      st.Hands,
		Net:        st.Net,
		Wagered:    st.Wagered,
		WinRate:    st.WinRate(),
		HouseEdge:  st.HouseEdge(),
		MeanUnits:  st.Mean(),
		StdDevUnit: st.StdDev(),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode stats")
	}
}

// WaitForHealthy polls /health under baseURL until it answers 200 OK or ctx
// is done.
func WaitForHealthy(ctx context.Context, baseURL string) error {
	client := &http.Client{Timeout: time.Second}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/health", nil)
		if err != nil {
			return err
		}
		if resp, err := client.Do(req); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

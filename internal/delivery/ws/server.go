// Package ws serves the host application over HTTP: startup flags as JSON and
// quiz ports over a websocket, one application session per connection.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aliskhannn/quiz-bridge/internal/domain/entities"
	"github.com/aliskhannn/quiz-bridge/internal/ports"
)

// Interop is the backend side of the host hooks.
type Interop interface {
	Flags(ctx context.Context, env entities.Env) entities.Flags
	OnReady(host ports.Host, env entities.Env)
}

// Config configures the HTTP server.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	RateLimit       int      // session upgrades per minute per IP, zero disables
	AllowedOrigins  []string // empty allows any origin
}

type Server struct {
	cfg      Config
	interop  Interop
	env      entities.Env
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewServer(cfg Config, interop Interop, env entities.Env, logger *zap.Logger) *Server {
	s := &Server{
		cfg:     cfg,
		interop: interop,
		env:     env,
		logger:  logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// Routes returns the HTTP handler of the server.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/flags", s.handleFlags)

	r.Group(func(r chi.Router) {
		if s.cfg.RateLimit > 0 {
			r.Use(httprate.LimitByIP(s.cfg.RateLimit, time.Minute))
		}
		r.Get("/ports", s.handlePorts)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		// Sessions end when the server context is cancelled.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server started", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")

	return nil
}

func (s *Server) handleFlags(w http.ResponseWriter, r *http.Request) {
	flags := s.interop.Flags(r.Context(), s.requestEnv(r))

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(flags); err != nil {
		s.logger.Error("failed to write flags", zap.Error(err))
	}
}

func (s *Server) handlePorts(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		s.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	sess := newSession(conn, s.logger)
	sess.run(r.Context(), s.interop, s.requestEnv(r))
}

// requestEnv builds the execution context of a request from the server env and query parameters.
func (s *Server) requestEnv(r *http.Request) entities.Env {
	env := entities.Env{
		Name:   s.env.Name,
		Values: make(map[string]string, len(s.env.Values)),
	}
	for k, v := range s.env.Values {
		env.Values[k] = v
	}
	for k, v := range r.URL.Query() {
		if len(v) > 0 {
			env.Values[k] = v[0]
		}
	}
	return env
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	for _, allowed := range s.cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

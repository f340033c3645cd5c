// Package server runs the HTTP API: the chi router, its middleware and the
// listener lifecycle.
//
//	srv, err := server.New(deps)
//	srv.Start(ctx)
//	defer srv.Close()
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cameronmore/go-apiauth/auth"
	"github.com/cameronmore/go-apiauth/config"
	"github.com/cameronmore/go-apiauth/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps holds what the server needs to run.
type Deps struct {
	Config    *config.Config
	Logger    *logging.Logger
	Gate      *auth.Gate
	Directory *auth.Directory
	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

// Server is the HTTP API server.
type Server struct {
	cfg         *config.Config
	logger      *logging.Logger
	gate        *auth.Gate
	handlers    *auth.AuthContext
	gatherer    prometheus.Gatherer
	metricsPath string
	handler     http.Handler
	server      *http.Server
	listener    net.Listener
}

// New creates a server. It does not listen until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Gate == nil {
		return nil, fmt.Errorf("gate is required")
	}
	if deps.Directory == nil {
		return nil, fmt.Errorf("user directory is required")
	}

	s := &Server{
		cfg:      deps.Config,
		logger:   deps.Logger,
		gate:     deps.Gate,
		handlers: auth.NewAuthContext(deps.Directory, deps.Gate, deps.Logger.Logger),
		gatherer: deps.Gatherer,
	}
	if deps.Config.Metrics.Enabled {
		s.metricsPath = deps.Config.Metrics.Path
	}
	s.handler = s.buildRouter()
	return s, nil
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listener and serves in the background. A bind failure is
// returned directly.
func (s *Server) Start(ctx context.Context) error {
	addr := s.cfg.Addr()
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	s.listener = ln

	s.server = &http.Server{
		Handler:           s.handler,
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
	}

	s.logger.Info("API server starting", "address", ln.Addr().String())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close drains in-flight requests for up to the configured shutdown timeout.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	timeout := s.cfg.GetShutdownTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

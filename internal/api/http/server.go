package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/procwatch/internal/api/middleware"
	"github.com/GriffinCanCode/procwatch/internal/infrastructure/monitoring"
)

// Config configures the status server.
type Config struct {
	Addr        string
	RateLimit   middleware.RateLimitConfig
	CORS        middleware.CORSConfig
	Development bool
}

// Server is the optional status HTTP server.
type Server struct {
	cfg      Config
	router   *gin.Engine
	server   *http.Server
	listener net.Listener
	logger   *zap.Logger
	done     chan error
}

// NewServer builds the router. metrics may be nil, in which case /metrics
// is not served.
func NewServer(cfg Config, status StatusProvider, metrics *monitoring.Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(monitoring.Middleware(metrics))
	if cfg.CORS.Enabled() {
		router.Use(middleware.CORS(cfg.CORS))
	}
	router.Use(middleware.GlobalRateLimit(cfg.RateLimit))

	handlers := NewHandlers(status)
	router.GET("/healthz", handlers.Health)
	router.GET("/stats", handlers.Stats)
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	return &Server{
		cfg:    cfg,
		router: router,
		logger: logger,
		server: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	s.done = make(chan error, 1)

	s.logger.Info("Starting status server", zap.String("addr", ln.Addr().String()))
	go func() {
		err := s.server.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.cfg.Addr
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.done == nil {
		return nil
	}
	s.logger.Info("Shutting down status server")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown status server: %w", err)
	}
	return <-s.done
}

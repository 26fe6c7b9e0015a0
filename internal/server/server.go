// Package server wires the shop's HTTP API, WebSocket feed and probes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/gildedrose/internal/auth"
	"github.com/vyrodovalexey/gildedrose/internal/config"
	"github.com/vyrodovalexey/gildedrose/internal/handler"
	"github.com/vyrodovalexey/gildedrose/internal/middleware"
	"github.com/vyrodovalexey/gildedrose/internal/shop"
	"github.com/vyrodovalexey/gildedrose/internal/store"
)

// Server represents the HTTP server.
type Server struct {
	httpServer    *http.Server
	probeServer   *http.Server
	router        *mux.Router
	probeRouter   *mux.Router
	config        *config.Config
	logger        *zap.Logger
	registry      *prometheus.Registry
	shop          *shop.Shop
	authenticator auth.Authenticator
	wsHandler     *handler.WebSocketHandler
}

// New creates a new Server. authenticator may be nil, which leaves every
// endpoint open. registry receives the HTTP metrics and backs /metrics; a
// nil registry gets a fresh one.
func New(
	cfg *config.Config,
	logger *zap.Logger,
	itemStore store.Store,
	inventoryShop *shop.Shop,
	authenticator auth.Authenticator,
	registry *prometheus.Registry,
) *Server {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	s := &Server{
		router:        mux.NewRouter(),
		config:        cfg,
		logger:        logger,
		registry:      registry,
		shop:          inventoryShop,
		authenticator: authenticator,
	}

	s.setupMiddleware()
	s.setupRoutes(itemStore)
	s.setupHTTPServer()
	s.setupProbeServer(itemStore)

	return s
}

// setupMiddleware configures the middleware chain, outermost first.
func (s *Server) setupMiddleware() {
	allowedMethods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowedHeaders := []string{
		"Content-Type",
		"Authorization",
		auth.APIKeyHeader,
		middleware.RequestIDHeader,
	}

	s.router.Use(mux.MiddlewareFunc(middleware.Recovery(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.RequestID()))

	if s.config.MetricsEnabled {
		s.router.Use(mux.MiddlewareFunc(middleware.Metrics(middleware.NewHTTPMetrics(s.registry))))
	}

	s.router.Use(mux.MiddlewareFunc(middleware.Logging(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.CORS(s.config.CORSOrigins, allowedMethods, allowedHeaders)))

	if s.authenticator != nil {
		s.logger.Info("authentication enabled for inventory changes",
			zap.String("method", string(s.authenticator.Method())),
		)
		s.router.Use(mux.MiddlewareFunc(middleware.Auth(s.authenticator, s.logger)))
	}
}

func (s *Server) setupRoutes(itemStore store.Store) {
	handler.NewRESTHandler(itemStore, s.shop, s.logger).RegisterRoutes(s.router)

	s.wsHandler = handler.NewWebSocketHandler(s.shop, s.logger, s.config.WSPingPeriod)
	s.wsHandler.RegisterRoutes(s.router)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", s.metricsHandler()).Methods(http.MethodGet)
	}
}

func (s *Server) metricsHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// setupProbeServer serves health, readiness and metrics on a separate port
// without authentication or request logging.
func (s *Server) setupProbeServer(itemStore store.Store) {
	if s.config.ProbePort == 0 {
		return
	}

	s.probeRouter = mux.NewRouter()
	s.probeRouter.Use(mux.MiddlewareFunc(middleware.Recovery(s.logger)))

	probes := handler.NewRESTHandler(itemStore, s.shop, s.logger)
	s.probeRouter.HandleFunc("/health", probes.HealthCheck).Methods(http.MethodGet)
	s.probeRouter.HandleFunc("/ready", probes.ReadyCheck).Methods(http.MethodGet)

	if s.config.MetricsEnabled {
		s.probeRouter.Handle("/metrics", s.metricsHandler()).Methods(http.MethodGet)
	}

	s.probeServer = &http.Server{
		Addr:              s.config.ProbeAddress(),
		Handler:           s.probeRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      5 * time.Second,
		IdleTimeout:       30 * time.Second,
	}
}

// Start runs the probe server in the background and blocks serving the API.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
		zap.Bool("auth_enabled", s.authenticator != nil),
	)

	if s.probeServer != nil {
		go func() {
			s.logger.Info("starting probe server", zap.String("address", s.config.ProbeAddress()))
			if err := s.probeServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("probe server failed", zap.Error(err))
			}
		}()
	}

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown closes WebSocket clients and the day feed, then drains both
// HTTP servers.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if s.wsHandler != nil {
		s.wsHandler.CloseAllConnections()
	}

	if s.shop != nil {
		s.shop.Close()
	}

	var errs []error

	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	if s.probeServer != nil {
		if err := s.probeServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("probe server shutdown: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Router returns the API router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// ProbeRouter returns the probe router, or nil when the probe server is
// disabled.
func (s *Server) ProbeRouter() *mux.Router {
	return s.probeRouter
}

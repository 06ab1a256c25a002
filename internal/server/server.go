// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mpetrov/crm-backend/internal/config"
	"github.com/mpetrov/crm-backend/internal/handler"
	"github.com/mpetrov/crm-backend/internal/middleware"
	"github.com/mpetrov/crm-backend/internal/store"
)

// Server represents the HTTP server.
type Server struct {
	httpServer    *http.Server
	router        *mux.Router
	handler       http.Handler
	config        *config.Config
	logger        *zap.Logger
	eventsHandler *handler.EventsHandler
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *zap.Logger, clientStore store.Store) *Server {
	router := mux.NewRouter()

	s := &Server{
		router: router,
		config: cfg,
		logger: logger,
	}

	s.setupMiddleware()
	s.setupRoutes(clientStore)
	s.setupHTTPServer()

	return s
}

// setupMiddleware wraps the router with the middleware chain. The chain
// sits outside the router so unmatched requests pass through it too: 404s
// carry CORS headers and request ids, and the CORS middleware answers
// every preflight before routing.
func (s *Server) setupMiddleware() {
	allowedOrigins := []string{"*"}
	allowedMethods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowedHeaders := []string{
		"Content-Type",
		middleware.RequestIDHeader,
	}

	// First middleware in the chain is outermost
	middlewares := []middleware.Middleware{
		middleware.Recovery(s.logger),
		middleware.RequestID(),
	}

	// Add metrics middleware if enabled
	if s.config.MetricsEnabled {
		middlewares = append(middlewares, middleware.Metrics())
	}

	middlewares = append(middlewares,
		middleware.Logging(s.logger),
		middleware.CORS(allowedOrigins, allowedMethods, allowedHeaders),
	)

	s.handler = middleware.Chain(middlewares...)(s.router)
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes(clientStore store.Store) {
	// Change-event stream for the browser UI
	s.eventsHandler = handler.NewEventsHandler(s.logger)
	s.eventsHandler.RegisterRoutes(s.router)

	// REST API handler publishes change events after each mutation
	restHandler := handler.NewRESTHandler(clientStore, s.logger, s.eventsHandler)
	restHandler.RegisterRoutes(s.router)

	// Metrics endpoint
	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}
}

// setupHTTPServer configures the HTTP server.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	// Close all WebSocket connections first
	if s.eventsHandler != nil {
		s.eventsHandler.CloseAllConnections()
	}

	// Shutdown HTTP server
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Handler returns the server's fully wrapped handler for testing purposes.
func (s *Server) Handler() http.Handler {
	return s.handler
}

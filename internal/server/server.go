// Package server provides the HTTP API for askdoc.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/paperstack/askdoc/internal/answer"
	"github.com/paperstack/askdoc/internal/config"
	"github.com/paperstack/askdoc/internal/retrieval"
)

// Server is the HTTP server for the askdoc API. The generator is optional:
// when nil, the ask endpoint reports that no generator is configured and the
// retrieval endpoints work normally.
type Server struct {
	service   *retrieval.Service
	generator answer.Generator
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// New creates a server with the given dependencies.
func New(service *retrieval.Service, generator answer.Generator, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	return &Server{
		service:   service,
		generator: generator,
		config:    cfg,
		logger:    logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/documents", s.handleIngest)
	r.Get("/api/v1/documents", s.handleList)
	r.Delete("/api/v1/documents/{filename}", s.handleRemove)
	r.Post("/api/v1/query", s.handleQuery)
	r.Post("/api/v1/ask", s.handleAsk)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

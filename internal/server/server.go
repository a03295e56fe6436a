// Package server provides the HTTP API for the assistant.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/unihelp/sotay/internal/config"
	"github.com/unihelp/sotay/internal/storage"
	"github.com/unihelp/sotay/internal/vector"
)

// Answerer produces an answer and the list of consulted source kinds for a
// question.
type Answerer interface {
	Answer(ctx context.Context, question, source string) (string, []string, error)
}

// Server is the HTTP server for the assistant API.
type Server struct {
	answerer Answerer
	storage  storage.Storage
	store    *vector.Store
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	answerer Answerer,
	st storage.Storage,
	store *vector.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		answerer: answerer,
		storage:  st,
		store:    store,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleIndex)
	r.Post("/api/v1/chat", s.handleChat)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

package http

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/custodia-labs/nlq-engine/internal/core/domain"
	"github.com/custodia-labs/nlq-engine/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	docsDir    string
	maxUpload  int64
	cors       []string
	logger     *slog.Logger

	// Services
	queryService      driving.QueryService
	connectionService driving.ConnectionService
	docService        driving.DocumentService
	settingsService   driving.SettingsService

	// Infrastructure
	runtimeConfig  *domain.RuntimeConfig
	metricsHandler http.Handler // optional
	cache          Pinger       // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// DocsDir is where uploaded documents are saved before ingestion
	DocsDir string

	// MaxUploadBytes bounds the in-memory part of a multipart upload
	MaxUploadBytes int64

	// CORSOrigins lists allowed origins; "*" allows any
	CORSOrigins []string

	Logger *slog.Logger // defaults to slog.Default()
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:           "0.0.0.0",
		Port:           8000,
		Version:        "dev",
		DocsDir:        "uploaded_docs",
		MaxUploadBytes: 32 << 20,
		CORSOrigins:    []string{"*"},
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	queryService driving.QueryService,
	connectionService driving.ConnectionService,
	docService driving.DocumentService,
	settingsService driving.SettingsService,
	runtimeConfig *domain.RuntimeConfig,
	metricsHandler http.Handler, // can be nil
	cache Pinger, // can be nil
) *Server {
	defaults := DefaultConfig()
	if cfg.DocsDir == "" {
		cfg.DocsDir = defaults.DocsDir
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaults.MaxUploadBytes
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = defaults.CORSOrigins
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		router:            http.NewServeMux(),
		version:           cfg.Version,
		docsDir:           cfg.DocsDir,
		maxUpload:         cfg.MaxUploadBytes,
		cors:              cfg.CORSOrigins,
		logger:            cfg.Logger,
		queryService:      queryService,
		connectionService: connectionService,
		docService:        docService,
		settingsService:   settingsService,
		runtimeConfig:     runtimeConfig,
		metricsHandler:    metricsHandler,
		cache:             cache,
	}

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:     s.Handler(),
		ReadTimeout: 60 * time.Second,
		// SQL generation waits on a hosted model
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Health endpoints
	s.router.HandleFunc("GET /{$}", s.handleRoot)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)
	if s.metricsHandler != nil {
		s.router.Handle("GET /metrics", s.metricsHandler)
	}

	// Engine endpoints
	s.router.HandleFunc("POST /api/connect-database", s.handleConnectDatabase)
	s.router.HandleFunc("GET /api/schema", s.handleGetSchema)
	s.router.HandleFunc("POST /api/upload-documents", s.handleUploadDocuments)
	s.router.HandleFunc("POST /api/query", s.handleQuery)

	// AI settings endpoints
	s.router.HandleFunc("GET /api/settings/ai", s.handleGetAISettings)
	s.router.HandleFunc("PUT /api/settings/ai", s.handleUpdateAISettings)
	s.router.HandleFunc("GET /api/settings/ai/status", s.handleGetAIStatus)
	s.router.HandleFunc("POST /api/settings/ai/test", s.handleTestConnection)
}

// Handler returns the router wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	var h http.Handler = s.router
	h = NewCORSMiddleware(s.cors).Handler(h)
	h = NewLoggingMiddleware(s.logger).Handler(h)
	h = NewRecoveryMiddleware(s.logger).Handler(h)
	h = NewRequestIDMiddleware().Handler(h)
	return h
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Wait for shutdown signal
	select {
	case <-stop:
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

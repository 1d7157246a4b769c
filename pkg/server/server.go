// Package server implements the graphview HTTP API: graph submission and
// rendering, document mutation, latest-image lookup, and static serving of
// rendered images.
package server

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dhikaid/graphview/pkg/gallery"
	"github.com/dhikaid/graphview/pkg/render"
	"github.com/dhikaid/graphview/pkg/store"
)

//go:embed index.html
var indexHTML []byte

// Server represents the HTTP server
type Server struct {
	config     *Config
	httpServer *http.Server
	store      *store.Store
	gallery    *gallery.Gallery
	limiter    *ipLimiter
	renderOpts render.Options

	mu    sync.RWMutex
	ready bool
}

// New creates a server instance, opening the storage directory and seeding
// it when empty.
func New(config *Config) (*Server, error) {
	if config == nil {
		config = NewConfig()
	}

	st, err := store.Open(config.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	renderOpts := render.DefaultOptions()
	renderOpts.Captions = config.Options.EnableCaptions

	s := &Server{
		config:     config,
		store:      st,
		gallery:    gallery.New(config.StorageDir, config.PublicBaseURL),
		limiter:    newIPLimiter(config.RateLimit, config.RateLimitBurst, config.RateLimitMaxClients, config.RateLimitTTL),
		renderOpts: renderOpts,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Address, config.Port),
		Handler:      s.setupRoutes(),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// API endpoints with middleware
	mux.HandleFunc("/", s.withMiddleware(s.handleIndex))
	mux.HandleFunc("/graph", s.withMiddleware(s.handleGraph))
	mux.HandleFunc("/latestImage", s.withMiddleware(s.handleLatestImage))
	mux.HandleFunc("/addVertice", s.withMiddleware(s.handleAddVertex))
	mux.HandleFunc("/addEdge", s.withMiddleware(s.handleAddEdge))
	if s.config.Options.EnableReset {
		mux.HandleFunc("/reset", s.withMiddleware(s.handleReset))
	}

	// Rendered images and sidecar files
	mux.Handle("/storage/", http.StripPrefix("/storage/",
		http.FileServer(http.Dir(s.config.StorageDir))))

	// System endpoints (no rate limiting)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// setReady marks the server as ready to serve traffic
func (s *Server) setReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Start starts the HTTP server and blocks until ctx is canceled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.setReady(true)

	slog.Info("listening", "addr", s.httpServer.Addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.setReady(false)

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down server")
	return s.httpServer.Shutdown(shutdownCtx)
}

// Run starts the server with graceful shutdown on SIGINT/SIGTERM.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("server config",
		"address", s.httpServer.Addr,
		"storageDir", s.config.StorageDir,
		"publicBaseURL", s.config.PublicBaseURL,
		"rateLimit", float64(s.config.RateLimit),
		"rateLimitBurst", s.config.RateLimitBurst,
		"options", fmt.Sprintf("%+v", s.config.Options),
	)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Start(gctx)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

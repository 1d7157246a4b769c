// Package api wires configuration, logging, and the HTTP server into the
// graphd daemon entrypoint.
package api

import (
	"context"
	"log/slog"

	"github.com/dhikaid/graphview/pkg/logging"
	"github.com/dhikaid/graphview/pkg/server"
)

const (
	name           = "graphd"
	versionDefault = "dev"
)

var (
	// overridden during build with ldflags to reflect actual version info
	// e.g., -X "github.com/dhikaid/graphview/pkg/api.version=1.0.0"
	version = versionDefault
	commit  = "unknown"
	date    = "unknown"
)

// Version returns the build version string.
func Version() string {
	return version
}

// Serve starts the API server and blocks until shutdown.
// It configures logging, sets up routes, and handles graceful shutdown.
func Serve(ctx context.Context, config *server.Config) error {
	logging.SetDefaultStructuredLogger(name, version)
	slog.Info("starting",
		"name", name,
		"version", version,
		"commit", commit,
		"date", date,
	)

	if config == nil {
		config = server.NewConfig()
	}
	config.Name = name
	config.Version = version

	s, err := server.New(config)
	if err != nil {
		slog.Error("failed to initialize server", "error", err)
		return err
	}

	if err := s.Run(ctx); err != nil {
		slog.Error("server exited with error", "error", err)
		return err
	}

	return nil
}

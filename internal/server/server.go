// Package server exposes the sampling engine over HTTP: a dataset is uploaded
// with the sampling parameters and the sample comes back as a download.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/KaramelBytes/echantillon-cli/internal/export"
	"github.com/KaramelBytes/echantillon-cli/internal/table"
	"github.com/pterm/pterm"
)

// Config holds configuration for the HTTP service.
type Config struct {
	Host string
	Port int
	// MaxUploadBytes bounds the request body size.
	MaxUploadBytes int64
	// Loader controls how uploads are parsed.
	Loader table.Options
	// DefaultFormat is used when a request names no format.
	DefaultFormat export.Format
	// Seed fixes the random source for every request; 0 draws a fresh seed
	// per request.
	Seed uint64

	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	EnableLogging bool

	// Now is the clock used for export names; defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns sensible defaults for the service.
func DefaultConfig() Config {
	return Config{
		Host:           "localhost",
		Port:           8090,
		MaxUploadBytes: 32 << 20,
		Loader:         table.DefaultOptions(),
		DefaultFormat:  export.FormatXLSX,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   60 * time.Second,
		EnableLogging:  true,
	}
}

// Server is the sampling HTTP service. Requests share nothing but the
// read-only configuration.
type Server struct {
	cfg Config
}

// New creates a server, filling zero config values with defaults.
func New(cfg Config) *Server {
	def := DefaultConfig()
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = def.MaxUploadBytes
	}
	if cfg.DefaultFormat == "" {
		cfg.DefaultFormat = def.DefaultFormat
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Server{cfg: cfg}
}

// Address returns the server address in host:port format.
func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/methods", s.handleMethods)
	mux.HandleFunc("POST /api/inspect", s.handleInspect)
	mux.HandleFunc("POST /api/sample", s.handleSample)

	var h http.Handler = mux
	if s.cfg.EnableLogging {
		h = loggingMiddleware(h)
	}
	h = requestIDMiddleware(h)
	return recoveryMiddleware(h)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Address(),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		pterm.Info.Printfln("Listening on http://%s", s.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		pterm.Info.Println("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

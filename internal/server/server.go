// Package server exposes the resolver over HTTP.
//
// Routes:
//
//	GET  /healthz          liveness and build info
//	GET  /v1/resolve       JSON link for ?name=&package=&display= (or ?ref=)
//	POST /v1/resolve       batch: {"refs": [...]} → index-aligned results
//	GET  /v1/link          rendered link, ?format=html|markdown|url
//	GET  /v1/mapping       the package mapping table
//	GET  /go/{name}        302 redirect to the symbol's documentation page
//
// The resolver can be swapped at runtime with [Server.SetResolver], which is
// how the serve command applies a reloaded mapping table.
package server

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/apilink/pkg/buildinfo"
	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/resolver"
)

// Defaults for Options.
const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr            string        // listen address (default DefaultAddr)
	SiteURL         string        // prepended to relative URLs in redirects
	ShutdownTimeout time.Duration // grace period for in-flight requests
	Logger          *log.Logger   // nil uses log.Default()
}

// Server serves link resolution over HTTP.
type Server struct {
	opts     Options
	resolver atomic.Pointer[resolver.Resolver]
	router   chi.Router
}

// New creates a server around r.
func New(r *resolver.Resolver, opts Options) (*Server, error) {
	if r == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "server requires a resolver")
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.SiteURL != "" {
		if err := errors.ValidateURL(opts.SiteURL); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "site URL")
		}
		opts.SiteURL = strings.TrimSuffix(opts.SiteURL, "/")
	}

	s := &Server{opts: opts}
	s.resolver.Store(r)
	s.router = s.routes()
	return s, nil
}

// Resolver returns the resolver currently serving requests.
func (s *Server) Resolver() *resolver.Resolver { return s.resolver.Load() }

// SetResolver replaces the resolver. In-flight requests finish with the
// resolver they started with.
func (s *Server) SetResolver(r *resolver.Resolver) {
	if r != nil {
		s.resolver.Store(r)
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.SetHeader("Server", buildinfo.UserAgent()))
	r.Use(logRequests(s.opts.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/resolve", s.handleResolve)
		r.Post("/resolve", s.handleResolveBatch)
		r.Get("/link", s.handleLink)
		r.Get("/mapping", s.handleMapping)
	})
	r.Get("/go/{name}", s.handleRedirect)
	return r
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.opts.Logger.Info("listening", "addr", s.opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", s.opts.Addr)
	case <-ctx.Done():
	}

	s.opts.Logger.Info("shutting down", "timeout", s.opts.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

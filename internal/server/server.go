// Package server exposes the resource gateways over HTTP: the bookmark,
// collection and tag endpoints the api client talks to.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/nikbrunner/marks/internal/auth"
	"github.com/nikbrunner/marks/internal/gateway"
	"github.com/nikbrunner/marks/internal/logger"
)

// Options configures the HTTP server.
type Options struct {
	Listen         string
	Tokens         *auth.Tokens
	AllowedOrigins []string
	// RateLimit is the sustained requests per second allowed per user;
	// zero disables limiting.
	RateLimit rate.Limit
	Burst     int
	// Registry receives the HTTP metrics; nil uses a private registry.
	Registry *prometheus.Registry
	Logger   logger.Logger
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http    *http.Server
	handler http.Handler
	limiter *RateLimiter
	log     logger.Logger
}

// New builds the router, the middleware stack and the routes.
func New(gw gateway.Gateway, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(logger.String("component", "server"))

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics := NewCollector(reg)

	var limiter *RateLimiter
	if opts.RateLimit > 0 {
		limiter = NewRateLimiter(opts.RateLimit, opts.Burst, metrics, log)
	}

	h := &handlers{gw: gw, log: log, sanitizer: NewSanitizer()}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(Log(log))
	r.Use(metrics.Middleware)
	r.Use(CORS(opts.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler(reg))

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(opts.Tokens))
		if limiter != nil {
			r.Use(limiter.Middleware)
		}

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", h.listBookmarks)
			r.Post("/", h.createBookmark)
			r.Patch("/{id}", h.updateBookmark)
			r.Delete("/{id}", h.deleteBookmark)
		})
		r.Route("/collections", func(r chi.Router) {
			r.Get("/", h.listCollections)
			r.Post("/", h.createCollection)
			r.Patch("/{id}", h.updateCollection)
			r.Delete("/{id}", h.deleteCollection)
		})
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", h.listTags)
			r.Post("/", h.createTag)
			r.Patch("/{id}", h.updateTag)
			r.Delete("/{id}", h.deleteTag)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s := &http.Server{
		Addr:              opts.Listen,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{http: s, handler: r, limiter: limiter, log: log}
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.log.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("HTTP server shutting down...")
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.http.Shutdown(ctx)
}

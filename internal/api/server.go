// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api exposes the library and animated cover extraction over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ManuGH/animcover/internal/api/middleware"
	"github.com/ManuGH/animcover/internal/cover"
	"github.com/ManuGH/animcover/internal/domain/media"
	"github.com/ManuGH/animcover/internal/health"
	"github.com/ManuGH/animcover/internal/library"
	"github.com/ManuGH/animcover/internal/log"
)

// Catalog is the library surface the API needs.
type Catalog interface {
	Register(ctx context.Context, path string) (*library.Entry, error)
	Get(ctx context.Context, id string) (*library.Entry, error)
	List(ctx context.Context) ([]media.Item, error)
	Delete(ctx context.Context, id string) error
}

// RateLimit bounds requests per client IP on the extraction endpoint.
type RateLimit struct {
	Enabled  bool
	Requests int
	Window   time.Duration
}

// Config holds the server settings derived from the application config.
type Config struct {
	// ServiceName enables request tracing when non-empty.
	ServiceName string
	RateLimit   RateLimit
	// Health serves /healthz and /readyz. Nil answers a static liveness probe.
	Health *health.Manager
	// ScratchRoot confines the removal of served scratch directories.
	ScratchRoot string
}

// Server routes API requests to the catalog and the image provider.
type Server struct {
	cfg     Config
	catalog Catalog
	images  cover.ImageProvider
	logger  zerolog.Logger
	router  chi.Router
}

// New builds the server and its routes. It panics on missing dependencies.
func New(cfg Config, catalog Catalog, images cover.ImageProvider) *Server {
	if catalog == nil || images == nil {
		panic("api: New requires a catalog and an image provider")
	}
	s := &Server{
		cfg:     cfg,
		catalog: catalog,
		images:  images,
		logger:  log.WithComponent("api"),
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:  true,
		TracingService: s.cfg.ServiceName,
		EnableLogging:  true,
	})

	if s.cfg.Health != nil {
		r.Get("/healthz", s.cfg.Health.ServeHealth)
		r.Get("/readyz", s.cfg.Health.ServeReady)
	} else {
		r.Get("/healthz", s.handleHealth)
	}
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/items", func(r chi.Router) {
		r.Get("/", s.handleListItems)
		r.Post("/", s.handleRegisterItem)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetItem)
			r.Delete("/", s.handleDeleteItem)
			r.Group(func(r chi.Router) {
				if rl := s.cfg.RateLimit; rl.Enabled {
					r.Use(middleware.RateLimit(middleware.RateLimitConfig{
						RequestLimit: rl.Requests,
						WindowSize:   rl.Window,
					}))
				}
				r.Get("/images/{type}", s.handleGetImage)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, r.Method+" not allowed")
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

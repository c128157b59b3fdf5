package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/stream/internal/api/handler"
	mw "github.com/edvin/stream/internal/api/middleware"
	"github.com/edvin/stream/internal/api/response"
	"github.com/edvin/stream/internal/config"
	"github.com/edvin/stream/internal/core"
	"github.com/edvin/stream/internal/feed"
)

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	cfg      *config.Config
}

func NewServer(logger zerolog.Logger, services *core.Services, cfg *config.Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoint
	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Private feeds off: everything below stays unrouted and 404s.
	if !s.cfg.PrivateFeeds {
		return
	}

	feedHandler := handler.NewFeed(s.services.FeedKey, s.services.Policy, s.services.Record, s.cfg)

	// Pretty-permalink form.
	s.router.Get("/feed/"+feed.QueryVar+"/", feedHandler.Serve)
	s.router.Get("/feed/"+feed.QueryVar, feedHandler.Serve)

	// Query-string fallback form: GET /?feed=stream&key=...
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("feed") != feed.QueryVar {
			http.NotFound(w, r)
			return
		}
		feedHandler.Serve(w, r)
	})

	s.router.Route("/api/v1", func(r chi.Router) {
		feedKey := handler.NewFeedKey(s.services.FeedKey, s.services.User, s.services.Policy, s.services.Nonce, s.cfg)
		r.Get("/users/{id}/feed-key", feedKey.ProfileView)
		r.Post("/users/{id}/profile-save", feedKey.ProfileSave)
		r.Post("/feed-key/regenerate", feedKey.Regenerate)
	})
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

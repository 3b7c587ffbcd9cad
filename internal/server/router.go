package server

import (
	"net/http"

	"github.com/cloo-solutions/lunchpick/internal/api"
	"github.com/cloo-solutions/lunchpick/internal/api/handlers"
	"github.com/cloo-solutions/lunchpick/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	SessionHandler *handlers.SessionHandler
	PageHandler    *handlers.PageHandler
	SessionID      string
	CORSOrigins    []string
	Logger         logrus.FieldLogger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 64 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
			AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "X-Session-ID"},
		}).Handler)
	}
	if cfg.SessionID != "" {
		r.Use(sessionHeader(cfg.SessionID))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/", cfg.PageHandler.Index)
	r.Get("/map", cfg.SessionHandler.MapHTML)
	r.Get("/map.png", cfg.SessionHandler.MapPNG)

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", cfg.SessionHandler.State)
		r.Put("/radius", cfg.SessionHandler.SetRadius)
		r.Post("/search", cfg.SessionHandler.Search)
		r.Post("/candidates/{index}/select", cfg.SessionHandler.SelectCandidate)
		r.Post("/nearby", cfg.SessionHandler.Nearby)
		r.Post("/locate", cfg.SessionHandler.Locate)
		r.Post("/recommend", cfg.SessionHandler.Recommend)
	})

	return r
}

func sessionHeader(id string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Session-ID", id)
			next.ServeHTTP(w, r)
		})
	}
}

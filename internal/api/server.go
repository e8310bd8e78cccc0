// Package api exposes the HTTP surface: tracking ingestion (pixel and
// click redirect), the analytics query endpoint, template management,
// and the send endpoint.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/ignite/engage/internal/config"
	"github.com/ignite/engage/internal/pkg/httputil"
	"github.com/ignite/engage/internal/pkg/metrics"
	"github.com/ignite/engage/internal/tracking"
)

// Server holds the handler dependencies.
type Server struct {
	engine     *tracking.Engine
	aggregator *tracking.Aggregator
	cfg        *config.Config
}

// NewServer wires the HTTP layer over the engine.
func NewServer(cfg *config.Config, engine *tracking.Engine) *Server {
	return &Server{
		engine:     engine,
		aggregator: tracking.NewAggregator(engine.Store()),
		cfg:        cfg,
	}
}

// Router builds the chi router with all routes and middleware mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/track/{trackingID}", s.handlePixel)
	r.Get("/click/{trackingID}", s.handleClick)

	r.Get("/analytics", s.handleAnalytics)
	r.Post("/analytics/import", s.handleImport)

	r.Post("/templates", s.handleTemplateAction)
	r.Delete("/templates", s.handleTemplateDelete)

	r.Post("/send", s.handleSend)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"records": s.engine.Store().Len(),
	})
}

package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/darwin242209/LuminaTiktok/internal/api/handler"
	mw "github.com/darwin242209/LuminaTiktok/internal/api/middleware"
	"github.com/darwin242209/LuminaTiktok/internal/metrics"
)

// NewRouter creates the HTTP router with all routes configured.
// rateLimit caps POST /video requests per IP per minute; 0 disables it.
func NewRouter(
	videoHandler *handler.VideoHandler,
	jobsHandler *handler.JobsHandler,
	healthHandler *handler.HealthHandler,
	rateLimit int,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.NewLogger(logger))
	r.Use(mw.NewRecovery(logger))

	// Health endpoints
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	// Prometheus metrics
	r.Handle("/metrics", metrics.Handler())

	// Bridge endpoint. No response timeout middleware here: the pipeline
	// deadline is enforced inside the handler.
	r.Group(func(r chi.Router) {
		if rateLimit > 0 {
			r.Use(httprate.LimitByIP(rateLimit, 1*time.Minute))
		}
		r.Post("/video", videoHandler.Submit)
	})

	// Job history
	r.Get("/jobs", jobsHandler.List)
	r.Get("/jobs/{jobID}", jobsHandler.Get)

	return r
}

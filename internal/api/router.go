// Package api exposes users, preferences, groups and the recommendation
// engine over HTTP.
package api

import (
	"net/http"
	"time"

	"getconnected/internal/catalog"
	"getconnected/internal/common/errors"
	"getconnected/internal/common/logger"
	"getconnected/internal/common/validation"
	"getconnected/internal/services/analysis"
	"getconnected/internal/services/scheduler"
	"getconnected/internal/store"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Version string
	// RateLimitPerMinute caps requests per client IP; zero disables it.
	RateLimitPerMinute int
	CORSOrigins        []string
}

type Deps struct {
	Store     store.Store
	Catalog   *catalog.Catalog
	Analysis  *analysis.Service
	Scheduler *scheduler.Scheduler
	Logger    logger.Logger
}

type Server struct {
	store     store.Store
	catalog   *catalog.Catalog
	analysis  *analysis.Service
	scheduler *scheduler.Scheduler
	validate  *validation.Validator
	errors    *errors.Handler
	logger    logger.Logger
	opts      Options
	now       func() time.Time
}

func NewServer(deps Deps, opts Options) *Server {
	return &Server{
		store:     deps.Store,
		catalog:   deps.Catalog,
		analysis:  deps.Analysis,
		scheduler: deps.Scheduler,
		validate:  validation.New(deps.Catalog.Has),
		errors:    errors.NewErrorHandler(deps.Logger),
		logger:    deps.Logger,
		opts:      opts,
		now:       time.Now,
	}
}

// Routes builds the chi router with the full middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if s.opts.RateLimitPerMinute > 0 {
			r.Use(httprate.LimitByIP(s.opts.RateLimitPerMinute, time.Minute))
		}
		r.Use(metricsMiddleware)

		r.Get("/health", s.handleHealth)
		r.Get("/platforms", s.handleListPlatforms)
		r.Get("/features", s.handleListFeatures)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)
			r.Get("/{userID}/preferences", s.handleListPreferences)
			r.Post("/{userID}/preferences", s.handleUpsertPreference)
		})

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", s.handleCreateGroup)
			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", s.handleGetGroup)
				r.Get("/common", s.handleCommon)
				r.Get("/recommendations", s.handleRecommendations)
				r.Get("/compare", s.handleCompare)
				r.Get("/schedules", s.handleListSchedules)
				r.Post("/schedule-suggestions", s.handleSuggestTimes)
				r.Get("/decisions", s.handleListDecisions)
			})
		})

		r.Post("/analyze", s.handleAnalyze)
		r.Post("/schedule", s.handleSchedule)
		r.Patch("/schedules/{scheduleID}", s.handleUpdateSchedule)
		r.Post("/export", s.handleExport)
	})

	return r
}

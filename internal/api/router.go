package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type RouterOptions struct {
	StaticDir      string       // served under /assets when set
	AllowedOrigins []string     // CORS origins
	Metrics        http.Handler // mounted at /metrics when set
}

func NewRouter(apiHandler *APIHandler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(apiHandler.logger))
	r.Use(Recoverer(apiHandler.harness))
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", apiHandler.HealthHandler)

		r.Route("/assessments", func(r chi.Router) {
			r.Get("/personality", apiHandler.PersonalityQuestionsHandler)
			r.Post("/personality/score", apiHandler.ScorePersonalityHandler)
			r.Get("/conflict", apiHandler.ConflictQuestionsHandler)
			r.Post("/conflict/score", apiHandler.ScoreConflictHandler)
		})

		// Assistant route; the path is what deployed clients already call.
		r.Post("/gemini", apiHandler.AssistantHandler)

		// Client-side telemetry
		r.Post("/events", apiHandler.EventsHandler)
		if apiHandler.events != nil {
			r.Get("/events", apiHandler.ListEventsHandler)
		}
		r.Post("/errors", apiHandler.ErrorsHandler)
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	if opts.StaticDir != "" {
		fs := http.StripPrefix("/assets/", http.FileServer(http.Dir(opts.StaticDir)))
		r.With(ResourceErrors(apiHandler.harness)).Get("/assets/*", fs.ServeHTTP)
		apiHandler.logger.Debug("Serving static assets", zap.String("dir", opts.StaticDir))
	}

	return r
}

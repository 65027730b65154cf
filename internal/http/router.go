package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/schemeportal/internal/auth"
	"github.com/MrJamesThe3rd/schemeportal/internal/http/budget"
	"github.com/MrJamesThe3rd/schemeportal/internal/http/location"
	"github.com/MrJamesThe3rd/schemeportal/internal/http/proposal"
	"github.com/MrJamesThe3rd/schemeportal/internal/http/render"
)

type Options struct {
	Verifier    *auth.Verifier
	CORSOrigins []string
	Timeout     time.Duration
	// Health reports whether the service can reach its dependencies.
	Health func(ctx context.Context) error
}

func New(
	opts Options,
	budgetV1 *budget.Handler,
	proposalsV1 *proposal.Handler,
	locationsV1 *location.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", health(opts.Health))
	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		if opts.Timeout > 0 {
			r.Use(middleware.Timeout(opts.Timeout))
		}

		r.Use(Authenticate(opts.Verifier))

		r.Route("/budget-heads", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			budgetV1.Routes(r)
		})

		r.Route("/proposals", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			proposalsV1.Routes(r)
		})

		r.Route("/locations", locationsV1.Routes)
	})

	return router
}

func health(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				render.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}

		render.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"itinerary-api/internal/http/handlers"
	"itinerary-api/internal/infra"
	"itinerary-api/internal/middleware"
)

// RouterOptions carries the router's ambient dependencies.
type RouterOptions struct {
	Logger          infra.Logger
	Metrics         *infra.Metrics
	RateLimitPerMin int
	CORSOrigins     []string
}

// NewRouter wires the HTTP surface.
func NewRouter(app *handlers.App, opts RouterOptions) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.Logger(opts.Logger))
	if len(opts.CORSOrigins) > 0 {
		r.Use(middleware.CORS(opts.CORSOrigins))
	}

	r.Get("/v1/healthz", app.Health)
	if opts.Metrics != nil {
		r.Method(stdhttp.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/itinerary", func(r chi.Router) {
		if opts.RateLimitPerMin > 0 {
			r.With(middleware.RateLimit(opts.RateLimitPerMin, time.Minute)).Post("/", app.CreateItinerary)
		} else {
			r.Post("/", app.CreateItinerary)
		}
		r.Get("/", app.MissingJobID)
		r.Get("/{jobId}", app.GetItinerary)
	})

	return r
}

package httpapi

import (
	"net/http"
	"time"

	"server/internal/domain"
	"server/internal/http/handlers"
	appmw "server/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the full HTTP surface. Everything under /v1 except the
// health probe requires a bearer token.
func NewRouter(app *handlers.App, lookup appmw.CountryLookup) http.Handler {
	r := chi.NewRouter()

	r.Use(
		appmw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		appmw.Logger(app.Logger),
		appmw.Locale(domain.DefaultLocale, lookup),
	)
	if app.Config != nil {
		if len(app.Config.CORSOrigins) > 0 {
			r.Use(appmw.CORS(app.Config.CORSOrigins))
		}
		if app.Config.RateLimitPerMin > 0 {
			r.Use(appmw.RateLimit(app.Config.RateLimitPerMin, time.Minute))
		}
	}

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPISpec)

	r.Route("/v1", func(r chi.Router) {
		r.Use(appmw.AuthJWT(app.JWTSecret))

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", app.SessionsCreate)
			r.Get("/", app.SessionsList)
			r.Get("/{id}", app.SessionsGet)
			r.Delete("/{id}", app.SessionsDelete)
			r.Post("/{id}/generate", app.Generate)
			r.Post("/{id}/publish", app.SessionsPublish)
			r.Post("/{id}/remix", app.SessionsRemix)
			r.Post("/{id}/images", app.ImagesEnqueue)
			r.Put("/{id}/performance", app.PerformanceUpsert)
		})

		r.Route("/images", func(r chi.Router) {
			r.Get("/{jobID}", app.ImagesJobGet)
			r.Get("/{jobID}/download", app.ImagesJobDownload)
		})

		r.Get("/performance/summary", app.PerformanceSummary)

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", app.SettingsGet)
			r.Put("/", app.SettingsPut)
		})
	})

	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/stackhook/engine/docs"
	"github.com/stackhook/engine/internal/api/handlers"
	mw "github.com/stackhook/engine/internal/api/middleware"
	"github.com/stackhook/engine/internal/api/validators"
	"github.com/stackhook/engine/internal/authz"
	"github.com/stackhook/engine/internal/metrics"
	"github.com/stackhook/engine/internal/services"
)

type Dependencies struct {
	HMACSecret    []byte
	DeployService services.DeployService
	HealthChecks  map[string]handlers.Check
	// RateLimit is requests per second per client IP; zero disables it.
	RateLimit float64
	RateBurst int
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(metrics.HTTPMiddleware)
	r.Use(mw.CORS)
	if dep.RateLimit > 0 {
		r.Use(mw.RateLimit(dep.RateLimit, dep.RateBurst))
	}
	r.Use(chimid.Compress(5))

	hh := handlers.NewHealthHandler(dep.HealthChecks)
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	deploy := handlers.NewDeployHandler(dep.DeployService, validators.New())
	deployments := handlers.NewDeploymentsHandler(dep.DeployService)

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(mw.Auth(dep.HMACSecret))

		api.Group(func(read chi.Router) {
			read.Use(mw.RequireAbility(authz.AbilityRead))
			read.Get("/deployments", deployments.List)
			read.Get("/deployments/{uuid}", deployments.Get)
		})

		api.Group(func(dr chi.Router) {
			dr.Use(mw.RequireAbility(authz.AbilityDeploy))
			dr.Get("/deploy", deploy.Deploy)
			dr.Post("/deploy", deploy.Deploy)
		})
	})

	return r
}

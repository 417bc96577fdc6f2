package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/faucethub/faucetd/internal/api/handlers"
	"github.com/faucethub/faucetd/internal/api/middleware"
	"github.com/faucethub/faucetd/internal/config"
	"github.com/faucethub/faucetd/internal/db"
	"github.com/faucethub/faucetd/internal/faucet"
	"github.com/faucethub/faucetd/internal/limiter"
	"github.com/faucethub/faucetd/internal/registry"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Deps holds everything the router wires into handlers.
type Deps struct {
	Config       *config.Config
	DB           *db.DB
	Registry     *registry.Registry
	Scores       handlers.ScoreFetcher
	Limits       *limiter.Limiter
	Orchestrator *faucet.Orchestrator

	// Throttle guards the claim endpoint. Owned by the caller so its
	// eviction goroutine can be stopped on shutdown.
	Throttle *middleware.Throttle
}

// NewRouter creates and configures the chi router with all middleware and routes.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogging)
	r.Use(middleware.CORS(deps.Config.AllowedOrigin))

	throttle := deps.Throttle
	if throttle == nil {
		throttle = middleware.NewThrottle(deps.Config.ClaimsPerMinute)
	}

	slog.Info("router initialized",
		"middleware", []string{"requestLogging", "cors"},
		"claimsPerMinute", deps.Config.ClaimsPerMinute,
		"allowedOrigin", deps.Config.AllowedOrigin,
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.HealthHandler(deps.Config, Version))
		r.Get("/networks", handlers.ListNetworks(deps.Registry))
		r.Get("/passport/{address}", handlers.GetPassport(deps.Scores, deps.Config.ScoreThreshold))
		r.Get("/rate-limit/{address}/{networkId}", handlers.GetRateLimit(deps.Limits))

		r.With(throttle.Handler).Post("/claim", handlers.Claim(deps.Orchestrator))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.AdminAuth(deps.Config.AdminToken))
			r.Patch("/networks/{networkId}", handlers.UpdateNetwork(deps.Registry))
			r.Get("/stats", handlers.GetStats(deps.DB))
		})
	})

	return r
}

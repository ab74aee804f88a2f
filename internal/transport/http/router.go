// Package httptransport assembles the HTTP surface: middleware chain,
// route registration, and operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"patrolfund/internal/platform/metrics"
	"patrolfund/internal/platform/middleware"
	"patrolfund/internal/transport/http/shared"
)

// Registrar registers a group of routes on a router.
type Registrar interface {
	Register(r chi.Router)
}

// RouterDeps carries everything the router needs. All handlers are
// Registrars so the router stays ignorant of their internals.
type RouterDeps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.TokenValidator

	Pools         Registrar
	Proposals     Registrar
	Votes         Registrar
	Escrows       Registrar
	Verifications Registrar
	Admin         Registrar
}

// NewRouter wires the middleware chain and mounts all route groups.
// Every domain route requires a bearer token; only the health and
// metrics probes are open.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	r.Use(middleware.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(middleware.Latency(deps.Metrics))
	}

	r.Get("/healthz", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(deps.Validator, deps.Logger))

		deps.Pools.Register(r)
		deps.Proposals.Register(r)
		deps.Votes.Register(r)
		deps.Escrows.Register(r)
		deps.Verifications.Register(r)
		deps.Admin.Register(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

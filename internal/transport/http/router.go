// Package httptransport assembles the HTTP surface: middleware chain, route
// groups, and operational endpoints. Handlers stay in their feature packages;
// this package only composes them.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	claimshandler "mandate/internal/claims/handler"
	ledgerhandler "mandate/internal/ledger/handler"
	"mandate/internal/platform/metrics"
	"mandate/internal/platform/middleware"
	"mandate/internal/registry"
	"mandate/internal/succession"
	"mandate/internal/timeline"
	"mandate/internal/transport/http/shared"
)

// requestTimeout bounds handler execution for every route.
const requestTimeout = 30 * time.Second

// Deps carries everything the router composes.
type Deps struct {
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
	Validator  middleware.TokenValidator
	Registry   *registry.Handler
	Claims     *claimshandler.Handler
	Ledger     *ledgerhandler.Handler
	Timeline   *timeline.Handler
	Succession *succession.Handler
	Health     func(r chi.Router)
}

// NewRouter builds the full route tree. Three groups: public reads carry an
// identity when one is presented, writes require one, and administrative
// actions additionally require the admin role.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Latency(deps.Metrics))

	r.Handle("/metrics", promhttp.Handler())
	if deps.Health != nil {
		deps.Health(r)
	}

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(middleware.ContentTypeJSON)

		public := v1.Group(nil)
		public.Use(middleware.OptionalAuth(deps.Validator, deps.Logger))

		authed := v1.Group(nil)
		authed.Use(middleware.RequireAuth(deps.Validator, deps.Logger))

		admin := v1.Group(nil)
		admin.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
		admin.Use(middleware.RequireAdmin(deps.Logger))

		deps.Registry.Register(public)
		deps.Claims.Register(public, authed, admin)
		deps.Ledger.Register(public, authed)
		deps.Timeline.Register(public, authed)
		deps.Succession.Register(public)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
	})

	return r
}

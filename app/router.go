package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Black-And-White-Club/opti-runner/app/eventbus"
	"github.com/Black-And-White-Club/opti-runner/app/modules/auth"
	"github.com/Black-And-White-Club/opti-runner/app/observability"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouteRegistrar is a module that mounts HTTP routes.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router, requirePlayer, rateLimit func(http.Handler) http.Handler)
}

// NewRouter builds the HTTP router and mounts every module's routes.
func NewRouter(obs *observability.Observability, authModule *auth.Module, modules ...RouteRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(correlationID)
	r.Use(middleware.Recoverer)
	r.Use(authModule.Middleware()...)

	r.Get("/api/health", func(w http.ResponseWriter, _ *http.Request) {
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "OK"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{}))

	for _, module := range modules {
		obs.Logger.Info("Registering routes for module", slog.String("module", fmt.Sprintf("%T", module)))
		module.RegisterRoutes(r, authModule.RequirePlayer, authModule.RateLimit())
	}

	return r
}

// correlationID carries chi's request id into the context events are
// published from, and echoes it to the client.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := middleware.GetReqID(r.Context())
		if id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
			r = r.WithContext(eventbus.WithCorrelationID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

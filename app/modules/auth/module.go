package auth

import (
	"context"
	"log/slog"
	"net/http"

	authservice "github.com/Black-And-White-Club/opti-runner/app/modules/auth/application"
	authhandlers "github.com/Black-And-White-Club/opti-runner/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Black-And-White-Club/opti-runner/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/opti-runner/app/observability"
	"github.com/Black-And-White-Club/opti-runner/config"
)

// Module represents the auth module: bearer tokens plus the HTTP guard rails
// shared by every API route.
type Module struct {
	config   *config.Config
	service  authservice.Service
	handlers authhandlers.Handlers
	limiter  *authhandlers.IPRateLimiter
	logger   *slog.Logger
}

// NewModule creates a new auth module.
func NewModule(ctx context.Context, cfg *config.Config, obs *observability.Observability) *Module {
	logger := obs.Logger
	logger.InfoContext(ctx, "Initializing auth module")

	jwtProvider := authjwt.NewProvider(cfg.JWT.Secret)
	service := authservice.NewService(jwtProvider, authservice.Config{DefaultTTL: cfg.JWT.DefaultTTL}, logger, obs.Tracer)

	return &Module{
		config:   cfg,
		service:  service,
		handlers: authhandlers.NewAuthHandlers(service, logger, obs.Tracer),
		limiter:  authhandlers.NewWindowRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window),
		logger:   logger,
	}
}

// GetService returns the auth service for use by other modules.
func (m *Module) GetService() authservice.Service {
	return m.service
}

// RequirePlayer guards routes that need an authenticated player.
func (m *Module) RequirePlayer(next http.Handler) http.Handler {
	return m.handlers.RequirePlayer(next)
}

// Middleware returns the request guards applied to every API route, outermost first.
func (m *Module) Middleware() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		authhandlers.BanListMiddleware(m.config.HTTP.BannedIPs),
		authhandlers.CORSMiddleware(m.config.HTTP.AllowedOrigins),
	}
}

// RateLimit returns the per ip+route limiter middleware. It must be mounted
// inside route groups so the matched pattern is known.
func (m *Module) RateLimit() func(http.Handler) http.Handler {
	return authhandlers.RateLimitMiddleware(m.limiter)
}

// Close stops the auth module.
func (m *Module) Close() error {
	m.logger.Info("Auth module stopped")
	return nil
}

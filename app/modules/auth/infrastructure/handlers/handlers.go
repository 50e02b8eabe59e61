package authhandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	authservice "github.com/Black-And-White-Club/opti-runner/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/opti-runner/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/opti-runner/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
	"go.opentelemetry.io/otel/trace"
)

// Handlers exposes the HTTP auth middleware.
type Handlers interface {
	RequirePlayer(next http.Handler) http.Handler
}

// AuthHandlers implements the Handlers interface.
type AuthHandlers struct {
	service authservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewAuthHandlers creates a new AuthHandlers instance.
func NewAuthHandlers(
	service authservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
) Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
	}
}

// RequirePlayer authenticates the bearer token and stores the player on the
// request context. Requests without a valid token get 401.
func (h *AuthHandlers) RequirePlayer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			shared.WriteError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := h.service.ValidateToken(r.Context(), token)
		if err != nil {
			msg := "Invalid token"
			if errors.Is(err, authjwt.ErrExpiredToken) {
				msg = "Token expired"
			}
			shared.WriteError(w, http.StatusUnauthorized, msg)
			return
		}

		ctx := authdomain.WithPlayer(r.Context(), authdomain.Player{
			ID:   claims.PlayerID,
			Name: claims.DisplayName,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

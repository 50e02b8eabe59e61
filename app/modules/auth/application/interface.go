package authservice

import (
	"context"
	"time"

	authdomain "github.com/Black-And-White-Club/opti-runner/app/modules/auth/domain"
)

// Service defines the authentication service interface.
type Service interface {
	// IssueToken mints a bearer token for a player. A zero ttl uses the configured default.
	IssueToken(ctx context.Context, playerID, displayName string, ttl time.Duration) (string, error)

	// ValidateToken validates a JWT token and returns the claims if valid.
	ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error)
}

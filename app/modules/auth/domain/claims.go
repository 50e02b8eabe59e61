package authdomain

import (
	"context"
	"time"
)

// Claims represents the domain model for authentication claims.
type Claims struct {
	PlayerID    string
	DisplayName string // optional, used as the initial profile name
	TokenID     string
	ExpiresAt   time.Time
	IssuedAt    time.Time
}

// IsExpired checks if the claims have expired.
func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Player is the authenticated caller attached to a request context.
type Player struct {
	ID   string
	Name string
}

type playerKey struct{}

// WithPlayer returns a copy of ctx carrying p.
func WithPlayer(ctx context.Context, p Player) context.Context {
	return context.WithValue(ctx, playerKey{}, p)
}

// PlayerFromContext returns the authenticated player, if any.
func PlayerFromContext(ctx context.Context) (Player, bool) {
	p, ok := ctx.Value(playerKey{}).(Player)
	return p, ok && p.ID != ""
}

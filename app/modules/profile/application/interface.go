package profileservice

import (
	"context"

	profiledb "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories"
)

// Service defines the contract for profile operations.
type Service interface {
	// GetProfile returns the player's profile, creating a default one on first view.
	GetProfile(ctx context.Context, playerID, fallbackName string) (*profiledb.Profile, error)

	// ChangeDisplayName validates and applies a rename, then announces it so
	// leaderboard rows can follow.
	ChangeDisplayName(ctx context.Context, playerID, newName string) (*profiledb.Profile, error)
}

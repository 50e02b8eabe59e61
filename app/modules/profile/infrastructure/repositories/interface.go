package profiledb

import (
	"context"

	"github.com/uptrace/bun"
)

// Repository defines the contract for profile persistence.
type Repository interface {
	// GetByPlayerID returns a profile or ErrNotFound.
	GetByPlayerID(ctx context.Context, db bun.IDB, playerID string) (*Profile, error)

	// GetOrCreate returns the profile, creating it with defaultName first if needed.
	GetOrCreate(ctx context.Context, db bun.IDB, playerID, defaultName string) (*Profile, error)

	// GetOrCreateForUpdate is GetOrCreate holding a row lock for the rest of
	// db's transaction. Concurrent callers for one player serialize on it.
	GetOrCreateForUpdate(ctx context.Context, db bun.IDB, playerID, defaultName string) (*Profile, error)

	// Accumulate applies one accepted game: highest score is raised to at
	// least a.Score, currency is added and games played incremented, all in a
	// single statement. The profile is created if missing.
	Accumulate(ctx context.Context, db bun.IDB, a Accumulation) (*Profile, error)

	// ChangeDisplayName sets a new name if the player has fewer than
	// maxChanges renames so far. Returns ErrChangeLimitReached otherwise.
	ChangeDisplayName(ctx context.Context, db bun.IDB, playerID, name string, maxChanges int) (*Profile, error)
}

package leaderboardservice

import (
	"context"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	leaderboardevents "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/events"
	profiledb "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// Service defines the contract for leaderboard operations.
type Service interface {
	// Submit validates a completed game and, when plausible, applies it to
	// both leaderboards and the player's profile as one unit.
	Submit(ctx context.Context, req SubmitRequest) (SubmitOutcome, error)

	// TopN returns the best n entries of a scope. A zero weekStart means the
	// current week for the weekly scope.
	TopN(ctx context.Context, scope leaderboarddomain.Scope, n int, weekStart time.Time) ([]leaderboarddomain.Entry, error)

	// RenameDisplayName rewrites the player's name on every leaderboard row.
	RenameDisplayName(ctx context.Context, playerID, displayName string) (int64, error)

	// CloseWeek publishes the final standings of the week starting at weekStart.
	CloseWeek(ctx context.Context, weekStart time.Time, n int) (*leaderboardevents.WeeklyClosedPayloadV1, error)
}

// ProfileStore is the slice of the profile repository the leaderboard needs.
type ProfileStore interface {
	// GetOrCreateForUpdate must lock the profile for the rest of db's
	// transaction so the display name read stays current until commit.
	GetOrCreateForUpdate(ctx context.Context, db bun.IDB, playerID, defaultName string) (*profiledb.Profile, error)
	Accumulate(ctx context.Context, db bun.IDB, a profiledb.Accumulation) (*profiledb.Profile, error)
}

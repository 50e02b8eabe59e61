package leaderboarddb

import (
	"context"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	"github.com/uptrace/bun"
)

// Repository defines the contract for leaderboard persistence.
// Passing a nil db uses the repository's own connection; passing a bun.Tx
// enlists the call in that transaction.
//
// Error semantics:
//   - ErrNotFound: Record does not exist
//   - ErrInvalidScope: Scope is neither global nor weekly
//   - ErrDuplicateSubmission: Submission id already recorded for the player
//   - Other errors: Infrastructure failures (DB connection, query errors)
type Repository interface {
	// UpsertIfBetter inserts entry, or replaces the stored row when entry's
	// score is strictly higher. The compare and write is a single statement.
	// For the weekly scope entry.WeekStart selects the window.
	UpsertIfBetter(ctx context.Context, db bun.IDB, scope leaderboarddomain.Scope, entry leaderboarddomain.Entry) (leaderboarddomain.UpsertOutcome, error)

	// RenameDisplayName rewrites the display name on every row owned by the
	// player, in both scopes. Returns the number of rows updated.
	RenameDisplayName(ctx context.Context, db bun.IDB, playerID, displayName string) (int64, error)

	// TopN returns up to n entries ordered by score descending, then earliest
	// recorded_at. weekStart is ignored for the global scope.
	TopN(ctx context.Context, db bun.IDB, scope leaderboarddomain.Scope, n int, weekStart time.Time) ([]leaderboarddomain.Entry, error)

	// GetEntry returns a player's row in the given scope.
	// Returns ErrNotFound if the player has no row.
	GetEntry(ctx context.Context, db bun.IDB, scope leaderboarddomain.Scope, playerID string, weekStart time.Time) (*leaderboarddomain.Entry, error)

	// FindSubmission returns a previously recorded submission.
	// Returns ErrNotFound if none exists.
	FindSubmission(ctx context.Context, db bun.IDB, playerID, submissionID string) (*Submission, error)

	// RecordSubmission stores a submission id. Returns ErrDuplicateSubmission
	// if the id was already recorded for the player.
	RecordSubmission(ctx context.Context, db bun.IDB, sub *Submission) error
}

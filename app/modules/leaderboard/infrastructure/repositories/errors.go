package leaderboarddb

import "errors"

// Sentinel errors for the repository layer.
var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidScope indicates a scope other than global or weekly.
	ErrInvalidScope = errors.New("invalid leaderboard scope")

	// ErrDuplicateSubmission indicates the submission id was already recorded
	// for this player.
	ErrDuplicateSubmission = errors.New("submission already recorded")
)

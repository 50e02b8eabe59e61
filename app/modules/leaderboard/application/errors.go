package leaderboardservice

import "errors"

var (
	// ErrMissingPlayer is returned when a submission has no player id.
	ErrMissingPlayer = errors.New("player id is required")

	// ErrSubmissionConflict means a submission id was reused for a different result.
	ErrSubmissionConflict = errors.New("submission id already used for a different result")
)

package profiledb

import "errors"

var (
	// ErrNotFound indicates the player has no profile.
	ErrNotFound = errors.New("profile not found")

	// ErrChangeLimitReached indicates the player used up their display name changes.
	ErrChangeLimitReached = errors.New("display name change limit reached")
)

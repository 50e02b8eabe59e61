package authservice

import "errors"

var (
	// ErrMissingToken is returned when no token is provided.
	ErrMissingToken = errors.New("missing authentication token")

	// ErrMissingPlayer is returned when a token is requested without a player id.
	ErrMissingPlayer = errors.New("player id is required")

	// ErrGenerateToken is returned when token generation fails.
	ErrGenerateToken = errors.New("failed to generate token")
)

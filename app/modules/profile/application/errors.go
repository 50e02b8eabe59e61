package profileservice

import "errors"

// ErrInvalidDisplayName wraps the specific name rule that failed.
var ErrInvalidDisplayName = errors.New("invalid display name")

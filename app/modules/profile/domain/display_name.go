package profiledomain

import (
	"errors"
	"regexp"
	"strings"
)

const (
	MinDisplayNameLength = 3
	MaxDisplayNameLength = 20
)

var displayNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

var (
	ErrDisplayNameLength  = errors.New("display name must be 3-20 characters")
	ErrDisplayNameCharset = errors.New("display name may only contain letters, digits, '_' and '-'")
)

// NormalizeDisplayName trims surrounding whitespace and validates the result.
func NormalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := len(name); n < MinDisplayNameLength || n > MaxDisplayNameLength {
		return "", ErrDisplayNameLength
	}
	if !displayNamePattern.MatchString(name) {
		return "", ErrDisplayNameCharset
	}
	return name, nil
}

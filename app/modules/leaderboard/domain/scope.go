package leaderboarddomain

import (
	"errors"
	"strings"
)

// Scope selects a leaderboard partition.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeWeekly Scope = "weekly"
)

// ErrUnknownScope is returned by ParseScope for anything but global or weekly.
var ErrUnknownScope = errors.New("unknown leaderboard scope")

// ParseScope parses a scope name. The empty string means global.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeGlobal:
		return ScopeGlobal, nil
	case ScopeWeekly:
		return ScopeWeekly, nil
	default:
		return "", ErrUnknownScope
	}
}

// UpsertOutcome reports what an upsert-if-better did to the stored row.
type UpsertOutcome string

const (
	Inserted        UpsertOutcome = "inserted"
	UpdatedToHigher UpsertOutcome = "updated_to_higher"
	KeptExisting    UpsertOutcome = "kept_existing"
)

// Changed reports whether the stored row was written.
func (o UpsertOutcome) Changed() bool {
	return o == Inserted || o == UpdatedToHigher
}

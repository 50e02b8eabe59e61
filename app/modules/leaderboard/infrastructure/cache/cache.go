package leaderboardcache

import (
	"context"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
)

// Cache stores top-N snapshots. A miss is reported with ok=false and a nil
// error; errors are infrastructure failures the caller may ignore.
type Cache interface {
	Get(ctx context.Context, scope leaderboarddomain.Scope, weekStart time.Time, n int) (entries []leaderboarddomain.Entry, ok bool, err error)
	Set(ctx context.Context, scope leaderboarddomain.Scope, weekStart time.Time, n int, entries []leaderboarddomain.Entry) error
	// Invalidate drops every snapshot for the given scopes.
	Invalidate(ctx context.Context, scopes ...leaderboarddomain.Scope) error
}

// NoopCache never hits.
type NoopCache struct{}

func (NoopCache) Get(context.Context, leaderboarddomain.Scope, time.Time, int) ([]leaderboarddomain.Entry, bool, error) {
	return nil, false, nil
}

func (NoopCache) Set(context.Context, leaderboarddomain.Scope, time.Time, int, []leaderboarddomain.Entry) error {
	return nil
}

func (NoopCache) Invalidate(context.Context, ...leaderboarddomain.Scope) error { return nil }

var _ Cache = NoopCache{}

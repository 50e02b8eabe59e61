package leaderboardhandlers

import (
	"context"
	"time"

	leaderboardservice "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	leaderboardevents "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/events"
)

// FakeService implements leaderboardservice.Service for handler tests.
type FakeService struct {
	SubmitFunc            func(ctx context.Context, req leaderboardservice.SubmitRequest) (leaderboardservice.SubmitOutcome, error)
	TopNFunc              func(ctx context.Context, scope leaderboarddomain.Scope, n int, weekStart time.Time) ([]leaderboarddomain.Entry, error)
	RenameDisplayNameFunc func(ctx context.Context, playerID, name string) (int64, error)
	CloseWeekFunc         func(ctx context.Context, weekStart time.Time, n int) (*leaderboardevents.WeeklyClosedPayloadV1, error)

	LastSubmit *leaderboardservice.SubmitRequest
	LastTopN   struct {
		Scope leaderboarddomain.Scope
		N     int
		Week  time.Time
	}
}

func (f *FakeService) Submit(ctx context.Context, req leaderboardservice.SubmitRequest) (leaderboardservice.SubmitOutcome, error) {
	f.LastSubmit = &req
	if f.SubmitFunc != nil {
		return f.SubmitFunc(ctx, req)
	}
	return leaderboardservice.SubmitOutcome{
		Status: leaderboardservice.StatusAccepted,
		Global: leaderboarddomain.Inserted,
		Weekly: leaderboarddomain.Inserted,
	}, nil
}

func (f *FakeService) TopN(ctx context.Context, scope leaderboarddomain.Scope, n int, weekStart time.Time) ([]leaderboarddomain.Entry, error) {
	f.LastTopN.Scope, f.LastTopN.N, f.LastTopN.Week = scope, n, weekStart
	if f.TopNFunc != nil {
		return f.TopNFunc(ctx, scope, n, weekStart)
	}
	return nil, nil
}

func (f *FakeService) RenameDisplayName(ctx context.Context, playerID, name string) (int64, error) {
	if f.RenameDisplayNameFunc != nil {
		return f.RenameDisplayNameFunc(ctx, playerID, name)
	}
	return 0, nil
}

func (f *FakeService) CloseWeek(ctx context.Context, weekStart time.Time, n int) (*leaderboardevents.WeeklyClosedPayloadV1, error) {
	if f.CloseWeekFunc != nil {
		return f.CloseWeekFunc(ctx, weekStart, n)
	}
	return &leaderboardevents.WeeklyClosedPayloadV1{WeekStart: weekStart}, nil
}

var _ leaderboardservice.Service = (*FakeService)(nil)

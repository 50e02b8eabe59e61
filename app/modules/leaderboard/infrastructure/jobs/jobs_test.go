package leaderboardjobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	leaderboardevents "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/events"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type FakeCloser struct {
	CloseWeekFunc func(ctx context.Context, weekStart time.Time, n int) (*leaderboardevents.WeeklyClosedPayloadV1, error)
	calls         []time.Time
}

func (f *FakeCloser) CloseWeek(ctx context.Context, weekStart time.Time, n int) (*leaderboardevents.WeeklyClosedPayloadV1, error) {
	f.calls = append(f.calls, weekStart)
	if f.CloseWeekFunc != nil {
		return f.CloseWeekFunc(ctx, weekStart, n)
	}
	return &leaderboardevents.WeeklyClosedPayloadV1{WeekStart: weekStart}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWeeklySchedule_Next(t *testing.T) {
	s := WeeklySchedule{Delay: DefaultCloseDelay}
	monday := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	fire := monday.Add(5 * time.Minute)

	tests := []struct {
		name    string
		current time.Time
		want    time.Time
	}{
		{name: "monday before delay", current: monday.Add(time.Minute), want: fire},
		{name: "exactly at fire time", current: fire, want: fire.AddDate(0, 0, 7)},
		{name: "mid-week", current: time.Date(2026, 10, 15, 13, 0, 0, 0, time.UTC), want: fire.AddDate(0, 0, 7)},
		{name: "sunday night", current: time.Date(2026, 10, 18, 23, 59, 0, 0, time.UTC), want: fire.AddDate(0, 0, 7)},
		{name: "non-utc input", current: time.Date(2026, 10, 11, 16, 2, 0, 0, time.FixedZone("PDT", -7*3600)), want: fire},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Next(tt.current)
			assert.True(t, tt.want.Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestWeeklyCloseArgs_UniquePerWeek(t *testing.T) {
	args := WeeklyCloseArgs{WeekStart: time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)}
	opts := args.InsertOpts()

	assert.Equal(t, "weekly_close", args.Kind())
	assert.Equal(t, QueueName, opts.Queue)
	assert.True(t, opts.UniqueOpts.ByArgs)
}

func TestClosePreviousWeek(t *testing.T) {
	clock := &shared.FakeClock{NowUTCFn: func() time.Time {
		return time.Date(2026, 10, 12, 0, 5, 0, 0, time.UTC)
	}}

	args, opts := closePreviousWeek(clock)()

	assert.Nil(t, opts)
	require.IsType(t, WeeklyCloseArgs{}, args)
	assert.True(t, time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC).Equal(args.(WeeklyCloseArgs).WeekStart))
}

func TestWeeklyCloseWorker_Work(t *testing.T) {
	week := time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)

	t.Run("closes the requested week", func(t *testing.T) {
		closer := &FakeCloser{CloseWeekFunc: func(_ context.Context, weekStart time.Time, n int) (*leaderboardevents.WeeklyClosedPayloadV1, error) {
			assert.Equal(t, 25, n)
			return &leaderboardevents.WeeklyClosedPayloadV1{
				WeekStart: weekStart,
				Standings: []leaderboardevents.StandingV1{{Rank: 1, PlayerID: "p1", Score: 99}},
			}, nil
		}}
		w := NewWeeklyCloseWorker(closer, 25, discardLogger())

		err := w.Work(context.Background(), &river.Job[WeeklyCloseArgs]{Args: WeeklyCloseArgs{WeekStart: week}})
		require.NoError(t, err)
		require.Len(t, closer.calls, 1)
		assert.True(t, week.Equal(closer.calls[0]))
	})

	t.Run("failure is returned for retry", func(t *testing.T) {
		closer := &FakeCloser{CloseWeekFunc: func(context.Context, time.Time, int) (*leaderboardevents.WeeklyClosedPayloadV1, error) {
			return nil, errors.New("db down")
		}}
		w := NewWeeklyCloseWorker(closer, 10, discardLogger())

		err := w.Work(context.Background(), &river.Job[WeeklyCloseArgs]{Args: WeeklyCloseArgs{WeekStart: week}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "2026-10-05")
	})
}

func TestNewRiverConfig(t *testing.T) {
	cfg := NewRiverConfig(&FakeCloser{}, Config{}, discardLogger())

	assert.Contains(t, cfg.Queues, QueueName)
	assert.Len(t, cfg.PeriodicJobs, 1)
	assert.NotNil(t, cfg.Workers)
}

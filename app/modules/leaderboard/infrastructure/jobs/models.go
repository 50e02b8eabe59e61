package leaderboardjobs

import (
	"time"

	"github.com/riverqueue/river"
)

// QueueName is the River queue leaderboard jobs run on.
const QueueName = "leaderboard"

// WeeklyCloseArgs closes the week starting at WeekStart.
type WeeklyCloseArgs struct {
	WeekStart time.Time `json:"week_start"`
}

// Kind returns the job type identifier for River
func (WeeklyCloseArgs) Kind() string { return "weekly_close" }

// InsertOpts makes the job unique per week, so a second insert for the same
// week is skipped as a duplicate.
func (WeeklyCloseArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		Queue:       QueueName,
		MaxAttempts: 5,
		UniqueOpts:  river.UniqueOpts{ByArgs: true},
	}
}

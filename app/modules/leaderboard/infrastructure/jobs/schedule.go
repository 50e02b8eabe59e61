package leaderboardjobs

import (
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
)

// DefaultCloseDelay is how long after Monday 00:00 UTC the previous week is closed.
const DefaultCloseDelay = 5 * time.Minute

// WeeklySchedule fires once a week at the week boundary plus Delay.
type WeeklySchedule struct {
	Delay time.Duration
}

// Next returns the first firing strictly after current.
func (s WeeklySchedule) Next(current time.Time) time.Time {
	next := leaderboarddomain.WeekOf(current).Add(s.Delay)
	if !next.After(current) {
		next = leaderboarddomain.NextWeek(current).Add(s.Delay)
	}
	return next
}

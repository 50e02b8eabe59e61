package leaderboarddomain

import "time"

// WeekOf returns the start of the weekly window containing t: the most recent
// Monday 00:00:00 UTC at or before t.
func WeekOf(t time.Time) time.Time {
	t = t.UTC()
	// time.Weekday has Sunday = 0; shift so Monday = 0.
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, time.UTC)
}

// PreviousWeek returns the start of the window before the one containing t.
func PreviousWeek(t time.Time) time.Time {
	return WeekOf(t).AddDate(0, 0, -7)
}

// NextWeek returns the start of the window after the one containing t.
func NextWeek(t time.Time) time.Time {
	return WeekOf(t).AddDate(0, 0, 7)
}

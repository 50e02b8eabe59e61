package leaderboarddomain

import (
	"sort"
	"time"
)

// Entry is one leaderboard row as seen by readers.
type Entry struct {
	PlayerID       string    `json:"player_id"`
	DisplayName    string    `json:"display_name"`
	Score          int64     `json:"score"`
	CurrencyEarned int64     `json:"currency_earned"`
	DurationMs     int64     `json:"duration_ms"`
	JumpCount      int64     `json:"jump_count"`
	RecordedAt     time.Time `json:"recorded_at"`
	// WeekStart is zero for global entries.
	WeekStart time.Time `json:"week_start,omitempty"`
}

// NewEntry builds a candidate entry from an accepted result.
func NewEntry(playerID, displayName string, r GameResult, recordedAt time.Time) Entry {
	return Entry{
		PlayerID:       playerID,
		DisplayName:    displayName,
		Score:          r.Score,
		CurrencyEarned: r.CurrencyEarned,
		DurationMs:     r.DurationMs,
		JumpCount:      r.JumpCount,
		RecordedAt:     recordedAt,
	}
}

// Beats reports whether candidate should replace existing. Ties keep the
// existing row. It states the rule the store's conditional upsert
// (WHERE EXCLUDED.score > cur.score) enforces in SQL, for in-memory stores.
func Beats(candidate, existing Entry) bool {
	return candidate.Score > existing.Score
}

// Less orders entries by score descending, then earliest recordedAt, then
// player id so the ordering is total.
func Less(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.RecordedAt.Equal(b.RecordedAt) {
		return a.RecordedAt.Before(b.RecordedAt)
	}
	return a.PlayerID < b.PlayerID
}

// SortEntries sorts entries in leaderboard order, matching the store's
// ORDER BY score DESC, recorded_at ASC, player_id ASC. In-memory stores use it.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool { return Less(entries[i], entries[j]) })
}

// ClampLimit bounds a requested top-N size to [1, max], using def for n <= 0.
func ClampLimit(n, def, max int) int {
	if n <= 0 {
		n = def
	}
	if n > max {
		n = max
	}
	if n < 1 {
		n = 1
	}
	return n
}

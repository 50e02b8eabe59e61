package leaderboarddb

import (
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	"github.com/uptrace/bun"
)

// GlobalScore is a player's all-time best run. One row per player.
type GlobalScore struct {
	bun.BaseModel `bun:"table:leaderboard_global_scores,alias:gs"`

	PlayerID       string    `bun:"player_id,pk"`
	DisplayName    string    `bun:"display_name,notnull"`
	Score          int64     `bun:"score,notnull"`
	CurrencyEarned int64     `bun:"currency_earned,notnull"`
	DurationMs     int64     `bun:"duration_ms,notnull"`
	JumpCount      int64     `bun:"jump_count,notnull"`
	RecordedAt     time.Time `bun:"recorded_at,notnull"`
}

// WeeklyScore is a player's best run within one Monday-aligned week.
type WeeklyScore struct {
	bun.BaseModel `bun:"table:leaderboard_weekly_scores,alias:ws"`

	PlayerID       string    `bun:"player_id,pk"`
	WeekStart      time.Time `bun:"week_start,pk"`
	DisplayName    string    `bun:"display_name,notnull"`
	Score          int64     `bun:"score,notnull"`
	CurrencyEarned int64     `bun:"currency_earned,notnull"`
	DurationMs     int64     `bun:"duration_ms,notnull"`
	JumpCount      int64     `bun:"jump_count,notnull"`
	RecordedAt     time.Time `bun:"recorded_at,notnull"`
}

// Submission records an applied submission id and the outcomes it produced so
// a retry can be answered without re-applying it.
type Submission struct {
	bun.BaseModel `bun:"table:leaderboard_submissions,alias:sub"`

	PlayerID      string    `bun:"player_id,pk"`
	SubmissionID  string    `bun:"submission_id,pk"`
	ResultHash    string    `bun:"result_hash,notnull"`
	Score         int64     `bun:"score,notnull"`
	WeekStart     time.Time `bun:"week_start,notnull"`
	GlobalOutcome string    `bun:"global_outcome,notnull"`
	WeeklyOutcome string    `bun:"weekly_outcome,notnull"`
	AppliedAt     time.Time `bun:"applied_at,notnull"`
}

func (g *GlobalScore) toEntry() leaderboarddomain.Entry {
	return leaderboarddomain.Entry{
		PlayerID:       g.PlayerID,
		DisplayName:    g.DisplayName,
		Score:          g.Score,
		CurrencyEarned: g.CurrencyEarned,
		DurationMs:     g.DurationMs,
		JumpCount:      g.JumpCount,
		RecordedAt:     g.RecordedAt,
	}
}

func (w *WeeklyScore) toEntry() leaderboarddomain.Entry {
	return leaderboarddomain.Entry{
		PlayerID:       w.PlayerID,
		DisplayName:    w.DisplayName,
		Score:          w.Score,
		CurrencyEarned: w.CurrencyEarned,
		DurationMs:     w.DurationMs,
		JumpCount:      w.JumpCount,
		RecordedAt:     w.RecordedAt,
		WeekStart:      w.WeekStart,
	}
}

package leaderboardevents

import (
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
)

// Topics published by the leaderboard module.
const (
	// ScoreAcceptedV1 is published after an accepted submission commits.
	ScoreAcceptedV1 = "leaderboard.score.accepted.v1"
	// ScoreRejectedV1 is published for every submission that fails validation.
	ScoreRejectedV1 = "leaderboard.score.rejected.v1"
	// WeeklyClosedV1 carries the final standings of a finished week.
	WeeklyClosedV1 = "leaderboard.weekly.closed.v1"
)

// ScoreAcceptedPayloadV1 describes a committed submission.
type ScoreAcceptedPayloadV1 struct {
	PlayerID       string                          `json:"player_id"`
	DisplayName    string                          `json:"display_name"`
	Score          int64                           `json:"score"`
	CurrencyEarned int64                           `json:"currency_earned"`
	WeekStart      time.Time                       `json:"week_start"`
	GlobalOutcome  leaderboarddomain.UpsertOutcome `json:"global_outcome"`
	WeeklyOutcome  leaderboarddomain.UpsertOutcome `json:"weekly_outcome"`
	SubmissionID   string                          `json:"submission_id,omitempty"`
	AcceptedAt     time.Time                       `json:"accepted_at"`
}

// ScoreRejectedPayloadV1 is the audit record of a rejected submission.
type ScoreRejectedPayloadV1 struct {
	PlayerID   string                            `json:"player_id"`
	Result     ResultV1                          `json:"result"`
	Violations []leaderboarddomain.RuleViolation `json:"violations"`
	RejectedAt time.Time                         `json:"rejected_at"`
}

// ResultV1 is the wire form of a submitted game result.
type ResultV1 struct {
	Score          int64 `json:"score"`
	DurationMs     int64 `json:"duration_ms"`
	JumpCount      int64 `json:"jump_count"`
	BonusCount     int64 `json:"bonus_count"`
	CurrencyEarned int64 `json:"currency_earned"`
}

// WeeklyClosedPayloadV1 lists the top of a week that has ended.
type WeeklyClosedPayloadV1 struct {
	WeekStart time.Time    `json:"week_start"`
	Standings []StandingV1 `json:"standings"`
	ClosedAt  time.Time    `json:"closed_at"`
}

// StandingV1 is one ranked row in WeeklyClosedPayloadV1.
type StandingV1 struct {
	Rank        int    `json:"rank"`
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
	Score       int64  `json:"score"`
}

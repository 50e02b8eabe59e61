package leaderboarddomain

import "fmt"

// GameResult is the telemetry reported by the client at game over. Every field
// is client-supplied and must be treated as hostile.
type GameResult struct {
	Score          int64
	DurationMs     int64
	JumpCount      int64
	BonusCount     int64
	CurrencyEarned int64
}

func (r GameResult) seconds() float64 {
	return float64(r.DurationMs) / 1000
}

// RuleID identifies a plausibility rule. Values are stable and appear in logs,
// metrics labels and API responses.
type RuleID string

const (
	RuleNegativeField         RuleID = "negative_field"
	RuleMinDuration           RuleID = "min_duration"
	RuleScoreRate             RuleID = "score_rate"
	RuleScorePerJump          RuleID = "score_per_jump"
	RuleLowJumps              RuleID = "low_jumps"
	RuleCurrencyRate          RuleID = "currency_rate"
	RuleCurrencyScore         RuleID = "currency_score"
	RuleScoreCeiling          RuleID = "score_ceiling"
	RuleCurrencyBonusMismatch RuleID = "currency_bonus_mismatch"
	RuleBounds                RuleID = "bounds"
)

// RuleViolation is one failed plausibility check.
type RuleViolation struct {
	Rule    RuleID `json:"rule"`
	Message string `json:"message"`
}

func (v RuleViolation) String() string {
	return fmt.Sprintf("%s: %s", v.Rule, v.Message)
}

// ValidationOutcome carries every violation found. A result with no
// violations is accepted.
type ValidationOutcome struct {
	Violations []RuleViolation
}

// Accepted reports whether the result passed every rule.
func (o ValidationOutcome) Accepted() bool {
	return len(o.Violations) == 0
}

// Has reports whether the given rule failed.
func (o ValidationOutcome) Has(rule RuleID) bool {
	for _, v := range o.Violations {
		if v.Rule == rule {
			return true
		}
	}
	return false
}

// Rules returns the failed rule ids in evaluation order.
func (o ValidationOutcome) Rules() []RuleID {
	out := make([]RuleID, 0, len(o.Violations))
	for _, v := range o.Violations {
		out = append(out, v.Rule)
	}
	return out
}

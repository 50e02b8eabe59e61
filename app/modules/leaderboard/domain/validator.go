package leaderboarddomain

import (
	"fmt"
	"math"
)

// Validator applies a fixed set of Thresholds. It holds no other state and is
// safe for concurrent use.
type Validator struct {
	t Thresholds
}

// NewValidator returns a Validator for the given thresholds.
func NewValidator(t Thresholds) *Validator {
	return &Validator{t: t}
}

// Thresholds returns the limits in force.
func (v *Validator) Thresholds() Thresholds {
	return v.t
}

// Validate checks result against the default thresholds.
func Validate(result GameResult) ValidationOutcome {
	return NewValidator(DefaultThresholds()).Validate(result)
}

// Validate evaluates every rule and collects all violations.
func (v *Validator) Validate(r GameResult) ValidationOutcome {
	var out ValidationOutcome
	fail := func(rule RuleID, format string, args ...any) {
		out.Violations = append(out.Violations, RuleViolation{Rule: rule, Message: fmt.Sprintf(format, args...)})
	}

	if r.Score < 0 || r.DurationMs < 0 || r.JumpCount < 0 || r.BonusCount < 0 || r.CurrencyEarned < 0 {
		fail(RuleNegativeField, "fields must not be negative")
		// The ratio rules below are meaningless on negative input.
		return out
	}

	t := v.t
	secs := r.seconds()

	if r.DurationMs < t.MinDuration.Milliseconds() {
		fail(RuleMinDuration, "game lasted %dms, minimum is %dms", r.DurationMs, t.MinDuration.Milliseconds())
	}

	if limit := t.PointsPerSecond*secs + float64(t.ScoreSlack); float64(r.Score) > limit {
		fail(RuleScoreRate, "score %d exceeds %.0f for %.1fs of play", r.Score, math.Floor(limit), secs)
	}

	// A run without jumps is held to the single-jump ceiling.
	if perJump := float64(r.Score) / float64(max(r.JumpCount, 1)); perJump > t.MaxScorePerJump {
		fail(RuleScorePerJump, "%.2f points per jump exceeds %.2f", perJump, t.MaxScorePerJump)
	}

	if r.Score > t.HighScoreFloor && r.JumpCount < t.MinJumpsForHighScore {
		fail(RuleLowJumps, "score %d needs at least %d jumps, got %d", r.Score, t.MinJumpsForHighScore, r.JumpCount)
	}

	if t.BonusSpawnInterval > 0 {
		spawned := int64(secs / t.BonusSpawnInterval.Seconds())
		if limit := spawned + t.CurrencySlack; r.CurrencyEarned > limit {
			fail(RuleCurrencyRate, "currency %d exceeds %d possible in %.1fs", r.CurrencyEarned, limit, secs)
		}
	}

	if floor := r.CurrencyEarned*t.PointsPerBonus - t.CurrencyScoreTolerance; r.Score < floor {
		fail(RuleCurrencyScore, "score %d is below the %d points implied by %d bonuses", r.Score, floor, r.CurrencyEarned)
	}

	if r.Score > t.MaxScore {
		fail(RuleScoreCeiling, "score %d exceeds ceiling %d", r.Score, t.MaxScore)
	}

	if r.CurrencyEarned != r.BonusCount {
		fail(RuleCurrencyBonusMismatch, "currency %d does not match %d bonuses", r.CurrencyEarned, r.BonusCount)
	}

	if r.DurationMs > t.MaxDuration.Milliseconds() || r.JumpCount > t.MaxJumps || r.CurrencyEarned > t.MaxCurrency {
		fail(RuleBounds, "duration, jumps or currency outside accepted range")
	}

	return out
}

package leaderboarddomain

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		result    GameResult
		wantRules []RuleID
	}{
		{
			name:   "short honest run",
			result: GameResult{Score: 12, DurationMs: 15000, JumpCount: 6, BonusCount: 2, CurrencyEarned: 2},
		},
		{
			name:   "long honest run",
			result: GameResult{Score: 180, DurationMs: 200000, JumpCount: 90, BonusCount: 30, CurrencyEarned: 30},
		},
		{
			name:      "too short",
			result:    GameResult{Score: 0, DurationMs: 2000},
			wantRules: []RuleID{RuleMinDuration},
		},
		{
			name:      "too many points per second",
			result:    GameResult{Score: 500, DurationMs: 10000, JumpCount: 200},
			wantRules: []RuleID{RuleScoreRate},
		},
		{
			name:      "every obvious cheat at once",
			result:    GameResult{Score: 300, DurationMs: 4000, JumpCount: 1},
			wantRules: []RuleID{RuleMinDuration, RuleScoreRate, RuleScorePerJump, RuleLowJumps},
		},
		{
			name:      "points per jump",
			result:    GameResult{Score: 40, DurationMs: 60000, JumpCount: 10},
			wantRules: []RuleID{RuleScorePerJump},
		},
		{
			name:      "high score with few jumps",
			result:    GameResult{Score: 51, DurationMs: 60000, JumpCount: 0},
			wantRules: []RuleID{RuleScorePerJump, RuleLowJumps},
		},
		{
			name:      "points without any jump",
			result:    GameResult{Score: 50, DurationMs: 60000, JumpCount: 0},
			wantRules: []RuleID{RuleScorePerJump},
		},
		{
			name:   "no jumps within the single-jump ceiling",
			result: GameResult{Score: 3, DurationMs: 60000, JumpCount: 0},
		},
		{
			name:      "currency faster than bonuses spawn",
			result:    GameResult{Score: 30, DurationMs: 20000, JumpCount: 15, BonusCount: 7, CurrencyEarned: 7},
			wantRules: []RuleID{RuleCurrencyRate},
		},
		{
			name:      "currency without the points it implies",
			result:    GameResult{Score: 3, DurationMs: 30000, JumpCount: 3, BonusCount: 4, CurrencyEarned: 4},
			wantRules: []RuleID{RuleCurrencyScore},
		},
		{
			name:      "currency not backed by bonuses",
			result:    GameResult{Score: 12, DurationMs: 15000, JumpCount: 6, BonusCount: 0, CurrencyEarned: 2},
			wantRules: []RuleID{RuleCurrencyBonusMismatch},
		},
		{
			name:      "absolute ceiling",
			result:    GameResult{Score: 10001, DurationMs: 3_000_000, JumpCount: 5000},
			wantRules: []RuleID{RuleScoreRate, RuleScoreCeiling},
		},
		{
			name:      "run longer than an hour",
			result:    GameResult{Score: 10, DurationMs: 3_600_001, JumpCount: 10},
			wantRules: []RuleID{RuleBounds},
		},
		{
			name:      "negative fields stop evaluation",
			result:    GameResult{Score: -1, DurationMs: 15000, JumpCount: 6},
			wantRules: []RuleID{RuleNegativeField},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.result)
			if len(tt.wantRules) == 0 {
				assert.True(t, got.Accepted(), "unexpected violations: %v", got.Violations)
				return
			}
			assert.False(t, got.Accepted())
			assert.ElementsMatch(t, tt.wantRules, got.Rules())
			for _, v := range got.Violations {
				assert.NotEmpty(t, v.Message)
			}
		})
	}
}

func TestValidate_TunableThresholds(t *testing.T) {
	strict := DefaultThresholds()
	strict.MinDuration = 20 * time.Second
	strict.MaxScore = 10

	got := NewValidator(strict).Validate(GameResult{Score: 12, DurationMs: 15000, JumpCount: 6, BonusCount: 2, CurrencyEarned: 2})
	assert.ElementsMatch(t, []RuleID{RuleMinDuration, RuleScoreCeiling}, got.Rules())
}

// simulatedRun builds a result a real player could produce: obstacles and
// bonuses bounded by their spawn rates, at least one jump per obstacle.
func simulatedRun(f *gofakeit.Faker) GameResult {
	secs := f.IntRange(5, 600)
	bonuses := f.IntRange(0, secs/5)
	obstacles := f.IntRange(0, secs/2)
	score := 2*bonuses + obstacles

	jumps := obstacles
	if need := (score + 2) / 3; jumps < need {
		jumps = need
	}
	if score > 50 && jumps < 10 {
		jumps = 10
	}
	jumps += f.IntRange(0, 20)

	return GameResult{
		Score:          int64(score),
		DurationMs:     int64(secs*1000 + f.IntRange(0, 999)),
		JumpCount:      int64(jumps),
		BonusCount:     int64(bonuses),
		CurrencyEarned: int64(bonuses),
	}
}

func TestValidate_SimulatedRunsAreAccepted(t *testing.T) {
	f := gofakeit.New(42)
	for i := 0; i < 500; i++ {
		r := simulatedRun(f)
		got := Validate(r)
		if !assert.True(t, got.Accepted(), "run %+v rejected: %v", r, got.Violations) {
			return
		}
	}
}

func TestValidate_FewerJumpsNeverHelps(t *testing.T) {
	f := gofakeit.New(5)
	for i := 0; i < 500; i++ {
		r := GameResult{
			Score:      int64(f.IntRange(0, 200)),
			DurationMs: 120000,
			JumpCount:  int64(f.IntRange(1, 100)),
		}
		fewer := r
		fewer.JumpCount = int64(f.IntRange(0, int(r.JumpCount)-1))
		if Validate(r).Has(RuleScorePerJump) {
			if !assert.True(t, Validate(fewer).Has(RuleScorePerJump), "run %+v passed with fewer jumps than %+v", fewer, r) {
				return
			}
		}
	}
}

func TestValidate_ShortRunsAlwaysRejected(t *testing.T) {
	f := gofakeit.New(7)
	for i := 0; i < 500; i++ {
		bonuses := int64(f.IntRange(0, 50))
		r := GameResult{
			Score:          int64(f.IntRange(0, 20000)),
			DurationMs:     int64(f.IntRange(0, 4999)),
			JumpCount:      int64(f.IntRange(0, 500)),
			BonusCount:     bonuses,
			CurrencyEarned: bonuses,
		}
		got := Validate(r)
		if !assert.True(t, got.Has(RuleMinDuration), "run %+v not rejected for duration", r) {
			return
		}
	}
}

func TestValidate_ScoreAboveRateCeilingAlwaysRejected(t *testing.T) {
	f := gofakeit.New(11)
	th := DefaultThresholds()
	for i := 0; i < 500; i++ {
		ms := int64(f.IntRange(5000, 600000))
		ceiling := int64(th.PointsPerSecond*float64(ms)/1000) + th.ScoreSlack
		r := GameResult{
			Score:      ceiling + int64(f.IntRange(1, 1000)),
			DurationMs: ms,
			JumpCount:  int64(f.IntRange(0, 5000)),
		}
		if !assert.True(t, Validate(r).Has(RuleScoreRate), "run %+v not rejected for rate", r) {
			return
		}
	}
}

package leaderboarddomain

import "time"

// Thresholds are the tunable limits behind each plausibility rule.
type Thresholds struct {
	// MinDuration is the shortest run that can count.
	MinDuration time.Duration
	// MaxDuration caps a single run.
	MaxDuration time.Duration

	// Score may not exceed PointsPerSecond*seconds + ScoreSlack.
	PointsPerSecond float64
	ScoreSlack      int64

	// MaxScorePerJump bounds obstacles cleared per jump.
	MaxScorePerJump float64

	// Scores above HighScoreFloor need at least MinJumpsForHighScore jumps.
	HighScoreFloor       int64
	MinJumpsForHighScore int64
	MaxJumps             int64

	// Bonuses spawn once per BonusSpawnInterval; CurrencySlack covers spawn jitter.
	BonusSpawnInterval time.Duration
	CurrencySlack      int64
	MaxCurrency        int64

	// Each collected bonus is worth PointsPerBonus points.
	PointsPerBonus         int64
	CurrencyScoreTolerance int64

	// MaxScore is the hard ceiling no legitimate run reaches.
	MaxScore int64
}

// DefaultThresholds matches the stock game: obstacles every 2s worth 1 point
// (2 for giants), bonuses every 3–5s worth 2 points and 1 currency.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinDuration:            5 * time.Second,
		MaxDuration:            time.Hour,
		PointsPerSecond:        1.5,
		ScoreSlack:             10,
		MaxScorePerJump:        3,
		HighScoreFloor:         50,
		MinJumpsForHighScore:   10,
		MaxJumps:               10000,
		BonusSpawnInterval:     5 * time.Second,
		CurrencySlack:          2,
		MaxCurrency:            1000,
		PointsPerBonus:         2,
		CurrencyScoreTolerance: 0,
		MaxScore:               10000,
	}
}

package testutils

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
)

// maxPlausibleScore keeps generated runs inside the stock duration and jump bounds.
const maxPlausibleScore = 3000

// TestDataGenerator creates players and runs for integration tests.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a generator with an optional seed.
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{faker: gofakeit.New(uint64(s)), seed: s}
}

// Seed returns the seed so failures can be reproduced.
func (g *TestDataGenerator) Seed() int64 { return g.seed }

// Player is a generated player identity.
type Player struct {
	ID   string
	Name string
}

// GeneratePlayers returns count players with unique ids and valid display names.
func (g *TestDataGenerator) GeneratePlayers(count int) []Player {
	players := make([]Player, count)
	for i := range players {
		players[i] = Player{
			ID:   g.faker.UUID(),
			Name: "runner_" + g.faker.LetterN(8),
		}
	}
	return players
}

// PlausibleRun builds a result the stock validator accepts for the given score:
// one second of play per point, one jump per two points and a bonus every
// five seconds.
func PlausibleRun(score int64) leaderboarddomain.GameResult {
	score = min(max(score, 0), maxPlausibleScore)
	secs := max(score, 5)
	bonuses := secs / 5
	if limit := score / 2; bonuses > limit {
		bonuses = limit
	}
	return leaderboarddomain.GameResult{
		Score:          score,
		DurationMs:     secs * 1000,
		JumpCount:      max((score+1)/2, 10),
		BonusCount:     bonuses,
		CurrencyEarned: bonuses,
	}
}

// GenerateRun returns a plausible run with a random score.
func (g *TestDataGenerator) GenerateRun() leaderboarddomain.GameResult {
	return PlausibleRun(int64(g.faker.IntRange(0, maxPlausibleScore)))
}

// GenerateScores returns count distinct random scores, all below the
// plausible maximum so a test can always submit a new leader.
func (g *TestDataGenerator) GenerateScores(count int) []int64 {
	seen := make(map[int64]struct{}, count)
	out := make([]int64, 0, count)
	for len(out) < count {
		s := int64(g.faker.IntRange(1, maxPlausibleScore-1))
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

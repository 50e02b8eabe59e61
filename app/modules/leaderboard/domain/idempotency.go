package leaderboarddomain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeResultHash generates a deterministic hash of a submitted result.
// A submission id replayed with a different payload hashes differently, which
// lets the service tell a retry apart from a reused id.
func ComputeResultHash(playerID string, r GameResult) string {
	payload := fmt.Sprintf("%s|%d|%d|%d|%d|%d", playerID, r.Score, r.DurationMs, r.JumpCount, r.BonusCount, r.CurrencyEarned)
	hash := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(hash[:])
}

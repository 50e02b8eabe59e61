package profiledb

import (
	"time"

	"github.com/uptrace/bun"
)

// Profile holds a player's cumulative stats.
type Profile struct {
	bun.BaseModel `bun:"table:player_profiles,alias:pp"`

	PlayerID        string    `bun:"player_id,pk" json:"player_id"`
	DisplayName     string    `bun:"display_name,notnull" json:"display_name"`
	HighestScore    int64     `bun:"highest_score,notnull" json:"highest_score"`
	CurrencyBalance int64     `bun:"currency_balance,notnull" json:"currency_balance"`
	GamesPlayed     int64     `bun:"games_played,notnull" json:"games_played"`
	NameChanges     int       `bun:"name_changes,notnull" json:"name_changes"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Accumulation is the per-game delta applied to a profile.
type Accumulation struct {
	PlayerID    string
	DisplayName string
	Score       int64
	Currency    int64
	At          time.Time
}

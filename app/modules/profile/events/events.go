package profileevents

import "time"

// DisplayNameChangedV1 is published after a player renames themselves.
const DisplayNameChangedV1 = "profile.display_name.changed.v1"

// DisplayNameChangedPayloadV1 carries the old and new display names.
type DisplayNameChangedPayloadV1 struct {
	PlayerID  string    `json:"player_id"`
	OldName   string    `json:"old_name"`
	NewName   string    `json:"new_name"`
	ChangedAt time.Time `json:"changed_at"`
}

package leaderboardsubscribers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/opti-runner/app/eventbus"
	leaderboardservice "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/application"
	profileevents "github.com/Black-And-White-Club/opti-runner/app/modules/profile/events"
)

// LeaderboardSubscribers reacts to events from other modules.
type LeaderboardSubscribers struct {
	service leaderboardservice.Service
	logger  *slog.Logger
}

// NewLeaderboardSubscribers creates a new LeaderboardSubscribers instance.
func NewLeaderboardSubscribers(service leaderboardservice.Service, logger *slog.Logger) *LeaderboardSubscribers {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardSubscribers{service: service, logger: logger}
}

// Register binds every leaderboard consumer to the router.
func (s *LeaderboardSubscribers) Register(r *eventbus.Router) {
	eventbus.Handle(r, "leaderboard.rename_on_display_name_changed", profileevents.DisplayNameChangedV1, s.HandleDisplayNameChanged)
}

// HandleDisplayNameChanged copies a profile rename onto the player's
// leaderboard rows. Returning an error lets the router retry.
func (s *LeaderboardSubscribers) HandleDisplayNameChanged(ctx context.Context, p profileevents.DisplayNameChangedPayloadV1) error {
	if p.PlayerID == "" || p.NewName == "" {
		s.logger.WarnContext(ctx, "Ignoring display name change without player or name",
			slog.String("player_id", p.PlayerID),
		)
		return nil
	}

	rows, err := s.service.RenameDisplayName(ctx, p.PlayerID, p.NewName)
	if err != nil {
		return fmt.Errorf("failed to propagate display name: %w", err)
	}

	s.logger.InfoContext(ctx, "Propagated display name to leaderboard",
		slog.String("player_id", p.PlayerID),
		slog.String("new_name", p.NewName),
		slog.Int64("rows", rows),
	)
	return nil
}

package leaderboardhandlers

import (
	"log/slog"
	"net/http"

	leaderboardservice "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/application"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
	"github.com/go-chi/chi/v5"
)

// maxBodyBytes bounds a submission body.
const maxBodyBytes = 4 << 10

// LeaderboardHandlers serves the leaderboard HTTP endpoints.
type LeaderboardHandlers struct {
	service leaderboardservice.Service
	weeks   *WeekParser
	clock   shared.Clock
	logger  *slog.Logger
}

// NewLeaderboardHandlers creates a new instance of LeaderboardHandlers.
func NewLeaderboardHandlers(service leaderboardservice.Service, clock shared.Clock, logger *slog.Logger) *LeaderboardHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = shared.RealClock{}
	}
	return &LeaderboardHandlers{
		service: service,
		weeks:   NewWeekParser(),
		clock:   clock,
		logger:  logger,
	}
}

// Routes mounts the leaderboard routes. Reads are public; submissions need a player.
func (h *LeaderboardHandlers) Routes(r chi.Router, requirePlayer func(http.Handler) http.Handler) {
	r.With(requirePlayer).Post("/", h.HandleSubmit)
	r.Get("/", h.HandleGetLeaderboard)
	r.Get("/export.xlsx", h.HandleExport)
	r.Get("/chart.png", h.HandleChart)
}

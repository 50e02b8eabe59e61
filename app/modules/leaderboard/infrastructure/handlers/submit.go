package leaderboardhandlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	authdomain "github.com/Black-And-White-Club/opti-runner/app/modules/auth/domain"
	leaderboardservice "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/application"
	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	profiledb "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
	"github.com/google/uuid"
)

// submitRequest is the client's game-over report. Pointers mark required fields.
type submitRequest struct {
	Score        *int64 `json:"score"`
	OptiEarned   *int64 `json:"optiEarned"`
	GameDuration *int64 `json:"gameDuration"`
	JumpCount    *int64 `json:"jumpCount"`
	BonusCount   *int64 `json:"bonusCount,omitempty"`
	SubmissionID string `json:"submissionId,omitempty"`
}

func (r submitRequest) toResult() (leaderboarddomain.GameResult, error) {
	required := []struct {
		name  string
		value *int64
	}{
		{"score", r.Score},
		{"optiEarned", r.OptiEarned},
		{"gameDuration", r.GameDuration},
		{"jumpCount", r.JumpCount},
	}
	for _, f := range required {
		if f.value == nil {
			return leaderboarddomain.GameResult{}, fmt.Errorf("missing required field: %s", f.name)
		}
	}

	bonus := *r.OptiEarned
	if r.BonusCount != nil {
		bonus = *r.BonusCount
	}
	return leaderboarddomain.GameResult{
		Score:          *r.Score,
		DurationMs:     *r.GameDuration,
		JumpCount:      *r.JumpCount,
		BonusCount:     bonus,
		CurrencyEarned: *r.OptiEarned,
	}, nil
}

type submitResponse struct {
	Status    leaderboardservice.SubmitStatus `json:"status"`
	Global    leaderboarddomain.UpsertOutcome `json:"global"`
	Weekly    leaderboarddomain.UpsertOutcome `json:"weekly"`
	WeekStart string                          `json:"week_start"`
	Replayed  bool                            `json:"replayed,omitempty"`
	Profile   *profiledb.Profile              `json:"profile,omitempty"`
}

// HandleSubmit validates and records a finished game.
func (h *LeaderboardHandlers) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	player, ok := authdomain.PlayerFromContext(ctx)
	if !ok {
		shared.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req submitRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// The body must hold exactly one JSON object.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		shared.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	result, err := req.toResult()
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.SubmissionID != "" {
		if _, err := uuid.Parse(req.SubmissionID); err != nil {
			shared.WriteError(w, http.StatusBadRequest, "submissionId must be a UUID")
			return
		}
	}

	outcome, err := h.service.Submit(ctx, leaderboardservice.SubmitRequest{
		PlayerID:     player.ID,
		DisplayName:  player.Name,
		Result:       result,
		SubmissionID: req.SubmissionID,
	})
	if err != nil {
		h.writeSubmitError(w, r, player.ID, err)
		return
	}

	if !outcome.Accepted() {
		shared.WriteJSON(w, http.StatusBadRequest, shared.Envelope{
			Success: false,
			Error:   "Score rejected: " + outcome.Violations[0].Message,
			Reasons: outcome.Violations,
		})
		return
	}

	shared.WriteSuccess(w, submitResponse{
		Status:    outcome.Status,
		Global:    outcome.Global,
		Weekly:    outcome.Weekly,
		WeekStart: outcome.WeekStart.Format("2006-01-02"),
		Replayed:  outcome.Replayed,
		Profile:   outcome.Profile,
	})
}

func (h *LeaderboardHandlers) writeSubmitError(w http.ResponseWriter, r *http.Request, playerID string, err error) {
	var perr *leaderboardservice.PersistenceError
	switch {
	case errors.Is(err, leaderboardservice.ErrSubmissionConflict):
		shared.WriteError(w, http.StatusConflict, "Submission id already used for a different result")
	case errors.Is(err, leaderboardservice.ErrMissingPlayer):
		shared.WriteError(w, http.StatusUnauthorized, "Authentication required")
	case errors.As(err, &perr):
		shared.WriteJSON(w, http.StatusServiceUnavailable, shared.Envelope{
			Success:   false,
			Error:     "Failed to save score, please retry",
			Retryable: perr.Retryable(),
		})
	default:
		h.logger.ErrorContext(r.Context(), "Failed to submit score",
			slog.String("player_id", playerID),
			slog.Any("error", err),
		)
		shared.WriteError(w, http.StatusInternalServerError, "Failed to submit score")
	}
}

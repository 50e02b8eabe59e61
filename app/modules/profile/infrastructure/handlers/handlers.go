package profilehandlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	authdomain "github.com/Black-And-White-Club/opti-runner/app/modules/auth/domain"
	profileservice "github.com/Black-And-White-Club/opti-runner/app/modules/profile/application"
	profiledomain "github.com/Black-And-White-Club/opti-runner/app/modules/profile/domain"
	profiledb "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 10

// ProfileHandlers serves the player profile endpoints.
type ProfileHandlers struct {
	service profileservice.Service
	logger  *slog.Logger
}

// NewProfileHandlers creates a new ProfileHandlers instance.
func NewProfileHandlers(service profileservice.Service, logger *slog.Logger) *ProfileHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileHandlers{service: service, logger: logger}
}

// Routes mounts the profile routes. requirePlayer must authenticate the caller.
func (h *ProfileHandlers) Routes(r chi.Router, requirePlayer func(http.Handler) http.Handler) {
	r.With(requirePlayer).Get("/", h.HandleGetProfile)
	r.With(requirePlayer).Put("/username", h.HandleChangeUsername)
}

// HandleGetProfile returns the caller's profile.
func (h *ProfileHandlers) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	player, ok := authdomain.PlayerFromContext(ctx)
	if !ok {
		shared.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	profile, err := h.service.GetProfile(ctx, player.ID, player.Name)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load profile", slog.String("player_id", player.ID), slog.Any("error", err))
		shared.WriteError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}
	shared.WriteSuccess(w, profile)
}

type changeUsernameRequest struct {
	Username string `json:"username"`
}

// HandleChangeUsername renames the caller.
func (h *ProfileHandlers) HandleChangeUsername(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	player, ok := authdomain.PlayerFromContext(ctx)
	if !ok {
		shared.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req changeUsernameRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		shared.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	profile, err := h.service.ChangeDisplayName(ctx, player.ID, req.Username)
	switch {
	case err == nil:
		shared.WriteSuccess(w, profile)
	case errors.Is(err, profiledomain.ErrDisplayNameLength):
		shared.WriteError(w, http.StatusBadRequest, profiledomain.ErrDisplayNameLength.Error())
	case errors.Is(err, profiledomain.ErrDisplayNameCharset):
		shared.WriteError(w, http.StatusBadRequest, profiledomain.ErrDisplayNameCharset.Error())
	case errors.Is(err, profiledb.ErrChangeLimitReached):
		shared.WriteError(w, http.StatusConflict, "Username change limit reached")
	default:
		h.logger.ErrorContext(ctx, "Failed to change username", slog.String("player_id", player.ID), slog.Any("error", err))
		shared.WriteError(w, http.StatusInternalServerError, "Failed to change username")
	}
}

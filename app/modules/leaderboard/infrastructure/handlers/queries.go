package leaderboardhandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	"github.com/Black-And-White-Club/opti-runner/app/shared"
)

// Row is one ranked leaderboard line in API responses.
type Row struct {
	Rank       int       `json:"rank"`
	Username   string    `json:"username"`
	Score      int64     `json:"score"`
	OptiEarned int64     `json:"opti_earned"`
	GameDate   time.Time `json:"game_date"`
}

type topQuery struct {
	scope leaderboarddomain.Scope
	limit int
	week  time.Time
}

// parseTopQuery reads scope, limit and week. isWeekly=true is the older
// spelling of scope=weekly.
func (h *LeaderboardHandlers) parseTopQuery(r *http.Request) (topQuery, error) {
	q := r.URL.Query()

	scopeParam := q.Get("scope")
	if scopeParam == "" && q.Get("isWeekly") == "true" {
		scopeParam = string(leaderboarddomain.ScopeWeekly)
	}
	scope, err := leaderboarddomain.ParseScope(scopeParam)
	if err != nil {
		return topQuery{}, err
	}

	limit := 0
	if v := q.Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil {
			return topQuery{}, errors.New("limit must be an integer")
		}
	}

	var week time.Time
	if v := q.Get("week"); v != "" {
		if scope != leaderboarddomain.ScopeWeekly {
			return topQuery{}, errors.New("week only applies to the weekly scope")
		}
		week, err = h.weeks.Parse(v, h.clock.NowUTC())
		if err != nil {
			return topQuery{}, err
		}
	}

	return topQuery{scope: scope, limit: limit, week: week}, nil
}

// top runs the query and ranks the result. It writes the error response
// itself and reports whether the caller should continue.
func (h *LeaderboardHandlers) top(w http.ResponseWriter, r *http.Request) ([]Row, topQuery, bool) {
	ctx := r.Context()
	q, err := h.parseTopQuery(r)
	if err != nil {
		shared.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, q, false
	}

	entries, err := h.service.TopN(ctx, q.scope, q.limit, q.week)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to load leaderboard",
			slog.String("scope", string(q.scope)),
			slog.Any("error", err),
		)
		shared.WriteError(w, http.StatusInternalServerError, "Failed to load leaderboard")
		return nil, q, false
	}

	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{
			Rank:       i + 1,
			Username:   e.DisplayName,
			Score:      e.Score,
			OptiEarned: e.CurrencyEarned,
			GameDate:   e.RecordedAt,
		}
	}
	return rows, q, true
}

// HandleGetLeaderboard returns the ranked top of a scope.
func (h *LeaderboardHandlers) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, _, ok := h.top(w, r)
	if !ok {
		return
	}
	shared.WriteSuccess(w, rows)
}

package leaderboardhandlers

import (
	"errors"
	"strings"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrInvalidWeek is returned for week input that is neither a date nor a
// recognisable phrase.
var ErrInvalidWeek = errors.New("unrecognised week")

// WeekParser resolves the week query parameter to a week start.
type WeekParser struct {
	parser *when.Parser
}

// NewWeekParser builds a parser with the English and common rule sets.
func NewWeekParser() *WeekParser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &WeekParser{parser: w}
}

// Parse accepts an ISO date ("2026-10-12") or a phrase such as "yesterday"
// or "last friday", relative to now. An empty input is the zero time, which
// the service reads as the current week.
func (p *WeekParser) Parse(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" || input == "current" || input == "this week" {
		return time.Time{}, nil
	}

	if t, err := time.Parse(time.DateOnly, input); err == nil {
		return leaderboarddomain.WeekOf(t), nil
	}

	r, err := p.parser.Parse(input, now.UTC())
	if err != nil || r == nil {
		return time.Time{}, ErrInvalidWeek
	}
	return leaderboarddomain.WeekOf(r.Time), nil
}

package leaderboardservice

import (
	"fmt"
	"strings"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	leaderboarddb "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/repositories"
	profiledb "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories"
)

// SubmitRequest is one completed game.
type SubmitRequest struct {
	PlayerID string
	// DisplayName seeds a new profile. Existing profiles keep their own name.
	DisplayName string
	Result      leaderboarddomain.GameResult
	// SubmissionID makes the submit retry-safe when set.
	SubmissionID string
}

// SubmitStatus is the top-level verdict of a submission.
type SubmitStatus string

const (
	StatusAccepted SubmitStatus = "accepted"
	StatusRejected SubmitStatus = "rejected"
)

// SubmitOutcome is either Accepted with both upsert outcomes or Rejected
// with the failed rules.
type SubmitOutcome struct {
	Status     SubmitStatus                      `json:"status"`
	Violations []leaderboarddomain.RuleViolation `json:"violations,omitempty"`
	Global     leaderboarddomain.UpsertOutcome   `json:"global,omitempty"`
	Weekly     leaderboarddomain.UpsertOutcome   `json:"weekly,omitempty"`
	WeekStart  time.Time                         `json:"week_start,omitzero"`
	// Profile is nil for rejections and replays.
	Profile *profiledb.Profile `json:"profile,omitempty"`
	// Replayed is set when the submission id had already been applied.
	Replayed bool `json:"replayed,omitempty"`
}

// Accepted reports whether the submission passed validation.
func (o SubmitOutcome) Accepted() bool { return o.Status == StatusAccepted }

func rejected(v leaderboarddomain.ValidationOutcome) SubmitOutcome {
	return SubmitOutcome{Status: StatusRejected, Violations: v.Violations}
}

func replayed(sub *leaderboarddb.Submission) SubmitOutcome {
	return SubmitOutcome{
		Status:    StatusAccepted,
		Global:    leaderboarddomain.UpsertOutcome(sub.GlobalOutcome),
		Weekly:    leaderboarddomain.UpsertOutcome(sub.WeeklyOutcome),
		WeekStart: sub.WeekStart,
		Replayed:  true,
	}
}

// Step names one write of the submit transaction.
type Step string

const (
	StepLookupSubmission  Step = "lookup_submission"
	StepLoadProfile       Step = "load_profile"
	StepUpsertGlobal      Step = "upsert_global"
	StepUpsertWeekly      Step = "upsert_weekly"
	StepAccumulateProfile Step = "accumulate_profile"
	StepRecordSubmission  Step = "record_submission"
)

// PersistenceError reports a failed submit write. Inside a transaction
// RolledBack is true and nothing was applied. Without one, Applied lists the
// steps that did commit.
type PersistenceError struct {
	Step       Step
	Applied    []Step
	RolledBack bool
	Err        error
}

func (e *PersistenceError) Error() string {
	applied := make([]string, len(e.Applied))
	for i, s := range e.Applied {
		applied[i] = string(s)
	}
	return fmt.Sprintf("persistence failed at %s (applied=[%s] rolled_back=%t): %v",
		e.Step, strings.Join(applied, ","), e.RolledBack, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Retryable reports that the whole submit may be retried.
func (e *PersistenceError) Retryable() bool { return true }

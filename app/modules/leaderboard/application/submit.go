package leaderboardservice

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Black-And-White-Club/opti-runner/app/eventbus"
	leaderboarddomain "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/domain"
	leaderboardevents "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/events"
	leaderboarddb "github.com/Black-And-White-Club/opti-runner/app/modules/leaderboard/infrastructure/repositories"
	profiledomain "github.com/Black-And-White-Club/opti-runner/app/modules/profile/domain"
	profiledb "github.com/Black-And-White-Club/opti-runner/app/modules/profile/infrastructure/repositories"
	"github.com/uptrace/bun"
)

// StepCommit covers failures raised by the transaction itself.
const StepCommit Step = "commit"

// Submit validates a completed game and applies it.
//
// Flow:
//  1. Validate; a rejection persists nothing
//  2. Replay a previously applied submission id
//  3. Upsert the global entry, then the weekly entry
//  4. Accumulate the profile
//  5. Record the submission id
//
// Steps 2-5 share one transaction when a database is configured.
func (s *LeaderboardService) Submit(ctx context.Context, req SubmitRequest) (SubmitOutcome, error) {
	return withTelemetry(s, ctx, "Submit", req.PlayerID, func(ctx context.Context) (SubmitOutcome, error) {
		return s.submit(ctx, req)
	})
}

// applied tracks which steps of one attempt reached storage.
type applied struct {
	steps []Step
}

func (a *applied) done(step Step) { a.steps = append(a.steps, step) }

func (a *applied) fail(step Step, err error) *PersistenceError {
	return &PersistenceError{Step: step, Applied: append([]Step(nil), a.steps...), Err: err}
}

func (s *LeaderboardService) submit(ctx context.Context, req SubmitRequest) (SubmitOutcome, error) {
	req.PlayerID = strings.TrimSpace(req.PlayerID)
	if req.PlayerID == "" {
		return SubmitOutcome{}, ErrMissingPlayer
	}

	verdict := s.validator.Validate(req.Result)
	if !verdict.Accepted() {
		s.recordRejection(ctx, req, verdict)
		return rejected(verdict), nil
	}

	now := s.opts.Clock.NowUTC()
	weekStart := leaderboarddomain.WeekOf(now)
	var resultHash string
	if req.SubmissionID != "" {
		resultHash = leaderboarddomain.ComputeResultHash(req.PlayerID, req.Result)
	}

	outcome, err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (SubmitOutcome, error) {
		return s.applySubmission(ctx, db, &applied{}, req, resultHash, now, weekStart)
	})
	if err != nil {
		return s.resolveSubmitError(ctx, req, resultHash, err)
	}

	if outcome.Replayed {
		s.metrics.RecordSubmission(ctx, "replayed")
		s.logger.InfoContext(ctx, "Submission replayed",
			slog.String("player_id", req.PlayerID),
			slog.String("submission_id", req.SubmissionID),
		)
		return outcome, nil
	}

	s.metrics.RecordSubmission(ctx, string(StatusAccepted))
	s.metrics.RecordUpsert(ctx, string(leaderboarddomain.ScopeGlobal), string(outcome.Global))
	s.metrics.RecordUpsert(ctx, string(leaderboarddomain.ScopeWeekly), string(outcome.Weekly))
	s.logger.InfoContext(ctx, "Submission accepted",
		slog.String("player_id", req.PlayerID),
		slog.Int64("score", req.Result.Score),
		slog.String("global", string(outcome.Global)),
		slog.String("weekly", string(outcome.Weekly)),
	)

	s.invalidateChanged(ctx, outcome)
	s.publishAccepted(ctx, req, outcome, now)
	return outcome, nil
}

func (s *LeaderboardService) applySubmission(
	ctx context.Context,
	db bun.IDB,
	progress *applied,
	req SubmitRequest,
	resultHash string,
	now, weekStart time.Time,
) (SubmitOutcome, error) {
	if req.SubmissionID != "" {
		prior, err := s.repo.FindSubmission(ctx, db, req.PlayerID, req.SubmissionID)
		switch {
		case err == nil:
			if prior.ResultHash != resultHash {
				return SubmitOutcome{}, ErrSubmissionConflict
			}
			return replayed(prior), nil
		case !errors.Is(err, leaderboarddb.ErrNotFound):
			return SubmitOutcome{}, progress.fail(StepLookupSubmission, err)
		}
	}

	profile, err := s.profiles.GetOrCreateForUpdate(ctx, db, req.PlayerID, s.seedName(req.DisplayName))
	if err != nil {
		return SubmitOutcome{}, progress.fail(StepLoadProfile, err)
	}

	entry := leaderboarddomain.NewEntry(req.PlayerID, profile.DisplayName, req.Result, now)
	global, err := s.repo.UpsertIfBetter(ctx, db, leaderboarddomain.ScopeGlobal, entry)
	if err != nil {
		return SubmitOutcome{}, progress.fail(StepUpsertGlobal, err)
	}
	progress.done(StepUpsertGlobal)

	entry.WeekStart = weekStart
	weekly, err := s.repo.UpsertIfBetter(ctx, db, leaderboarddomain.ScopeWeekly, entry)
	if err != nil {
		return SubmitOutcome{}, progress.fail(StepUpsertWeekly, err)
	}
	progress.done(StepUpsertWeekly)

	// A losing run still counts as a game played.
	updated, err := s.profiles.Accumulate(ctx, db, profiledb.Accumulation{
		PlayerID:    req.PlayerID,
		DisplayName: profile.DisplayName,
		Score:       req.Result.Score,
		Currency:    req.Result.CurrencyEarned,
		At:          now,
	})
	if err != nil {
		return SubmitOutcome{}, progress.fail(StepAccumulateProfile, err)
	}
	progress.done(StepAccumulateProfile)

	if req.SubmissionID != "" {
		err := s.repo.RecordSubmission(ctx, db, &leaderboarddb.Submission{
			PlayerID:      req.PlayerID,
			SubmissionID:  req.SubmissionID,
			ResultHash:    resultHash,
			Score:         req.Result.Score,
			WeekStart:     weekStart,
			GlobalOutcome: string(global),
			WeeklyOutcome: string(weekly),
			AppliedAt:     now,
		})
		if err != nil {
			return SubmitOutcome{}, progress.fail(StepRecordSubmission, err)
		}
		progress.done(StepRecordSubmission)
	}

	return SubmitOutcome{
		Status:    StatusAccepted,
		Global:    global,
		Weekly:    weekly,
		WeekStart: weekStart,
		Profile:   updated,
	}, nil
}

// resolveSubmitError turns a failed attempt into its caller-facing form. A
// concurrent duplicate that lost the race at the submission record is
// answered with the winner's stored outcome.
func (s *LeaderboardService) resolveSubmitError(ctx context.Context, req SubmitRequest, resultHash string, err error) (SubmitOutcome, error) {
	if errors.Is(err, ErrSubmissionConflict) {
		return SubmitOutcome{}, err
	}

	var perr *PersistenceError
	if !errors.As(err, &perr) {
		perr = &PersistenceError{Step: StepCommit, Err: err}
	}
	if s.db != nil {
		perr.RolledBack = true
		perr.Applied = nil
	}

	if perr.RolledBack && perr.Step == StepRecordSubmission && errors.Is(perr.Err, leaderboarddb.ErrDuplicateSubmission) {
		prior, findErr := s.repo.FindSubmission(ctx, nil, req.PlayerID, req.SubmissionID)
		if findErr == nil {
			if prior.ResultHash != resultHash {
				return SubmitOutcome{}, ErrSubmissionConflict
			}
			s.metrics.RecordSubmission(ctx, "replayed")
			return replayed(prior), nil
		}
	}

	s.metrics.RecordPersistenceError(ctx, string(perr.Step))
	s.logger.ErrorContext(ctx, "Submission persistence failed",
		slog.String("player_id", req.PlayerID),
		slog.String("step", string(perr.Step)),
		slog.Bool("rolled_back", perr.RolledBack),
		slog.Any("error", perr.Err),
	)
	return SubmitOutcome{}, perr
}

func (s *LeaderboardService) seedName(name string) string {
	if normalized, err := profiledomain.NormalizeDisplayName(name); err == nil {
		return normalized
	}
	return s.opts.DefaultName
}

func (s *LeaderboardService) recordRejection(ctx context.Context, req SubmitRequest, verdict leaderboarddomain.ValidationOutcome) {
	s.metrics.RecordSubmission(ctx, string(StatusRejected))
	rules := make([]string, 0, len(verdict.Violations))
	for _, v := range verdict.Violations {
		s.metrics.RecordViolation(ctx, string(v.Rule))
		rules = append(rules, string(v.Rule))
	}
	s.logger.InfoContext(ctx, "Submission rejected",
		slog.String("player_id", req.PlayerID),
		slog.Int64("score", req.Result.Score),
		slog.Int64("duration_ms", req.Result.DurationMs),
		slog.Any("rules", rules),
	)

	s.publish(ctx, leaderboardevents.ScoreRejectedV1, leaderboardevents.ScoreRejectedPayloadV1{
		PlayerID: req.PlayerID,
		Result: leaderboardevents.ResultV1{
			Score:          req.Result.Score,
			DurationMs:     req.Result.DurationMs,
			JumpCount:      req.Result.JumpCount,
			BonusCount:     req.Result.BonusCount,
			CurrencyEarned: req.Result.CurrencyEarned,
		},
		Violations: verdict.Violations,
		RejectedAt: s.opts.Clock.NowUTC(),
	})
}

func (s *LeaderboardService) publishAccepted(ctx context.Context, req SubmitRequest, outcome SubmitOutcome, at time.Time) {
	name := ""
	if outcome.Profile != nil {
		name = outcome.Profile.DisplayName
	}
	s.publish(ctx, leaderboardevents.ScoreAcceptedV1, leaderboardevents.ScoreAcceptedPayloadV1{
		PlayerID:       req.PlayerID,
		DisplayName:    name,
		Score:          req.Result.Score,
		CurrencyEarned: req.Result.CurrencyEarned,
		WeekStart:      outcome.WeekStart,
		GlobalOutcome:  outcome.Global,
		WeeklyOutcome:  outcome.Weekly,
		SubmissionID:   req.SubmissionID,
		AcceptedAt:     at,
	})
}

func (s *LeaderboardService) invalidateChanged(ctx context.Context, outcome SubmitOutcome) {
	var scopes []leaderboarddomain.Scope
	if outcome.Global.Changed() {
		scopes = append(scopes, leaderboarddomain.ScopeGlobal)
	}
	if outcome.Weekly.Changed() {
		scopes = append(scopes, leaderboarddomain.ScopeWeekly)
	}
	s.invalidate(ctx, scopes...)
}

func (s *LeaderboardService) invalidate(ctx context.Context, scopes ...leaderboarddomain.Scope) {
	if len(scopes) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, scopes...); err != nil {
		s.logger.WarnContext(ctx, "Failed to invalidate leaderboard cache", slog.Any("error", err))
	}
}

// publish is best-effort; storage has already committed.
func (s *LeaderboardService) publish(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := eventbus.Publish(ctx, s.publisher, topic, payload); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish leaderboard event",
			slog.String("topic", topic),
			slog.Any("error", err),
		)
	}
}

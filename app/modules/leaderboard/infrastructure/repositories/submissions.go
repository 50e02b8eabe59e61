package leaderboarddb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// FindSubmission looks up a recorded submission id.
func (r *Impl) FindSubmission(ctx context.Context, db bun.IDB, playerID, submissionID string) (*Submission, error) {
	db = r.resolveDB(db)
	sub := new(Submission)
	err := db.NewSelect().
		Model(sub).
		Where("sub.player_id = ?", playerID).
		Where("sub.submission_id = ?", submissionID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("leaderboarddb.FindSubmission: %w", err)
	}
	return sub, nil
}

// RecordSubmission inserts a submission record unless the id already exists.
func (r *Impl) RecordSubmission(ctx context.Context, db bun.IDB, sub *Submission) error {
	db = r.resolveDB(db)
	res, err := db.NewInsert().
		Model(sub).
		On("CONFLICT (player_id, submission_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("leaderboarddb.RecordSubmission: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("leaderboarddb.RecordSubmission: rows affected: %w", err)
	}
	if n == 0 {
		return ErrDuplicateSubmission
	}
	return nil
}

package profiledb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new profile repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// GetByPlayerID retrieves a profile by player id.
func (r *Impl) GetByPlayerID(ctx context.Context, db bun.IDB, playerID string) (*Profile, error) {
	db = r.resolveDB(db)
	p := new(Profile)
	err := db.NewSelect().
		Model(p).
		Where("pp.player_id = ?", playerID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("profiledb.GetByPlayerID: %w", err)
	}
	return p, nil
}

// GetOrCreate inserts a default profile when none exists, then reads it back.
func (r *Impl) GetOrCreate(ctx context.Context, db bun.IDB, playerID, defaultName string) (*Profile, error) {
	db = r.resolveDB(db)
	now := time.Now().UTC()
	_, err := db.NewInsert().
		Model(&Profile{PlayerID: playerID, DisplayName: defaultName, CreatedAt: now, UpdatedAt: now}).
		On("CONFLICT (player_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("profiledb.GetOrCreate: %w", err)
	}
	return r.GetByPlayerID(ctx, db, playerID)
}

// GetOrCreateForUpdate is GetOrCreate with the row held FOR NO KEY UPDATE
// until db's transaction ends, so a rename cannot commit between the read and
// the caller's writes.
func (r *Impl) GetOrCreateForUpdate(ctx context.Context, db bun.IDB, playerID, defaultName string) (*Profile, error) {
	db = r.resolveDB(db)
	now := time.Now().UTC()
	_, err := db.NewInsert().
		Model(&Profile{PlayerID: playerID, DisplayName: defaultName, CreatedAt: now, UpdatedAt: now}).
		On("CONFLICT (player_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("profiledb.GetOrCreateForUpdate: %w", err)
	}

	p := new(Profile)
	err = db.NewSelect().
		Model(p).
		Where("pp.player_id = ?", playerID).
		For("NO KEY UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("profiledb.GetOrCreateForUpdate: %w", err)
	}
	return p, nil
}

const accumulateSQL = `
INSERT INTO player_profiles AS p
	(player_id, display_name, highest_score, currency_balance, games_played, name_changes, created_at, updated_at)
VALUES (?, ?, ?, ?, 1, 0, ?, ?)
ON CONFLICT (player_id) DO UPDATE SET
	highest_score = GREATEST(p.highest_score, EXCLUDED.highest_score),
	currency_balance = p.currency_balance + EXCLUDED.currency_balance,
	games_played = p.games_played + 1,
	updated_at = EXCLUDED.updated_at
RETURNING *`

// Accumulate applies a game's score and currency to the profile atomically.
func (r *Impl) Accumulate(ctx context.Context, db bun.IDB, a Accumulation) (*Profile, error) {
	db = r.resolveDB(db)
	at := a.At.UTC()
	if a.At.IsZero() {
		at = time.Now().UTC()
	}

	p := new(Profile)
	err := db.NewRaw(accumulateSQL, a.PlayerID, a.DisplayName, a.Score, a.Currency, at, at).Scan(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("profiledb.Accumulate: %w", err)
	}
	return p, nil
}

// ChangeDisplayName renames the player while the change budget allows it.
func (r *Impl) ChangeDisplayName(ctx context.Context, db bun.IDB, playerID, name string, maxChanges int) (*Profile, error) {
	db = r.resolveDB(db)
	p := new(Profile)
	err := db.NewUpdate().
		Model(p).
		Set("display_name = ?", name).
		Set("name_changes = pp.name_changes + 1").
		Set("updated_at = ?", time.Now().UTC()).
		Where("pp.player_id = ?", playerID).
		Where("pp.name_changes < ?", maxChanges).
		Returning("*").
		Scan(ctx)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("profiledb.ChangeDisplayName: %w", err)
	}

	// Nothing matched: either the player is unknown or out of changes.
	if _, getErr := r.GetByPlayerID(ctx, db, playerID); getErr != nil {
		return nil, getErr
	}
	return nil, ErrChangeLimitReached
}

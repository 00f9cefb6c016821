package user

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines user data access interface
type Repository interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetSyncState(ctx context.Context, id string) (*SyncState, error)
	FilterExistingIDs(ctx context.Context, ids []string) ([]string, error)
	SetRelationsLastUpdate(ctx context.Context, id string, at time.Time) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new user repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT * FROM users WHERE id = $1`
	var u User
	if err := r.db.GetContext(ctx, &u, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) GetSyncState(ctx context.Context, id string) (*SyncState, error) {
	query := `SELECT id, city_id, facebook_token, relations_last_update FROM users WHERE id = $1`
	var s SyncState
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FilterExistingIDs returns the subset of ids that have local accounts
func (r *repository) FilterExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT id FROM users WHERE id = ANY($1)`
	var existing []string
	if err := r.db.SelectContext(ctx, &existing, query, pq.Array(ids)); err != nil {
		return nil, err
	}
	return existing, nil
}

func (r *repository) SetRelationsLastUpdate(ctx context.Context, id string, at time.Time) error {
	query := `UPDATE users SET relations_last_update = $2, modified = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrUserNotFound
	}
	return nil
}

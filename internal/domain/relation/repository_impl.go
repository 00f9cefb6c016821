package relation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new relation repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id string) (*Relation, error) {
	query := `SELECT * FROM relations WHERE id = $1`
	var rel Relation
	if err := r.db.GetContext(ctx, &rel, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rel, nil
}

func (r *repository) ListByObject(ctx context.Context, objectID string) ([]*Relation, error) {
	query := `SELECT * FROM relations WHERE object_id = $1 ORDER BY created ASC`
	var rels []*Relation
	if err := r.db.SelectContext(ctx, &rels, query, objectID); err != nil {
		return nil, err
	}
	return rels, nil
}

func (r *repository) DeleteByObject(ctx context.Context, objectID string) (int64, error) {
	query := `DELETE FROM relations WHERE object_id = $1`
	result, err := r.db.ExecContext(ctx, query, objectID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) Create(ctx context.Context, rel *Relation) error {
	query := `
		INSERT INTO relations (id, object_id, subject_id, type, banned, follow, user_exists,
		                       mutual_friends_count, mutual_friends_avatars, created, modified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.ExecContext(ctx, query,
		rel.ID, rel.ObjectID, rel.SubjectID, rel.Type, rel.Banned, rel.Follow,
		rel.UserExists, rel.MutualFriendsCount, rel.MutualFriendsAvatars)
	return err
}

func (r *repository) UpdateFlags(ctx context.Context, id string, banned, follow *bool) (*Relation, error) {
	query := `
		UPDATE relations
		SET banned = COALESCE($2, banned),
		    follow = COALESCE($3, follow),
		    modified = NOW()
		WHERE id = $1
		RETURNING *
	`
	var rel Relation
	if err := r.db.GetContext(ctx, &rel, query, id, banned, follow); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rel, nil
}

func (r *repository) ListFriendEdges(ctx context.Context, objectIDs []string) ([]Relation, error) {
	if len(objectIDs) == 0 {
		return nil, nil
	}
	query := `SELECT * FROM relations WHERE object_id = ANY($1) AND type = $2`
	var edges []Relation
	if err := r.db.SelectContext(ctx, &edges, query, pq.Array(objectIDs), TypeFriend); err != nil {
		return nil, err
	}
	return edges, nil
}

func (r *repository) ListFollowerIDs(ctx context.Context, subjectID string) ([]string, error) {
	query := `SELECT object_id FROM relations WHERE subject_id = $1 AND NOT banned AND type = $2`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, subjectID, TypeStranger); err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repository) MapByObjectAndSubjects(ctx context.Context, objectID string, subjectIDs []string) (map[string]*Relation, error) {
	if len(subjectIDs) == 0 {
		return map[string]*Relation{}, nil
	}
	query := `SELECT * FROM relations WHERE object_id = $1 AND subject_id = ANY($2)`
	var rels []*Relation
	if err := r.db.SelectContext(ctx, &rels, query, objectID, pq.Array(subjectIDs)); err != nil {
		return nil, err
	}
	bySubject := make(map[string]*Relation, len(rels))
	for _, rel := range rels {
		bySubject[rel.SubjectID] = rel
	}
	return bySubject, nil
}

// candidateRow is the wire form used for set-based bulk writes
type candidateRow struct {
	ID                   string   `json:"id"`
	ObjectID             string   `json:"object_id"`
	SubjectID            string   `json:"subject_id"`
	Type                 Type     `json:"type"`
	Banned               bool     `json:"banned"`
	Follow               bool     `json:"follow"`
	UserExists           bool     `json:"user_exists"`
	MutualFriendsCount   int      `json:"mutual_friends_count"`
	MutualFriendsAvatars []string `json:"mutual_friends_avatars"`
}

func marshalCandidates(candidates []Candidate) ([]byte, error) {
	rows := make([]candidateRow, 0, len(candidates))
	for _, c := range candidates {
		avatars := c.MutualFriendsAvatars
		if avatars == nil {
			avatars = []string{}
		}
		rows = append(rows, candidateRow{
			ID:                   c.ID(),
			ObjectID:             c.ObjectID,
			SubjectID:            c.SubjectID,
			Type:                 c.Type,
			Banned:               c.Banned,
			Follow:               c.Follow,
			UserExists:           c.UserExists,
			MutualFriendsCount:   c.MutualFriendsCount,
			MutualFriendsAvatars: avatars,
		})
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal candidate batch: %w", err)
	}
	return payload, nil
}

func (r *repository) CreateBulk(ctx context.Context, candidates []Candidate) (int64, error) {
	if len(candidates) == 0 {
		return 0, nil
	}
	payload, err := marshalCandidates(candidates)
	if err != nil {
		return 0, err
	}

	// ON CONFLICT DO NOTHING keeps retries after a partial failure
	// idempotent under the composite id.
	query := `
		INSERT INTO relations (id, object_id, subject_id, type, banned, follow, user_exists,
		                       mutual_friends_count, mutual_friends_avatars, created, modified)
		SELECT c.id, c.object_id, c.subject_id, c.type, c.banned, c.follow, c.user_exists,
		       c.mutual_friends_count, c.mutual_friends_avatars, NOW(), NOW()
		FROM jsonb_to_recordset($1::jsonb) AS c(
			id text, object_id text, subject_id text, type smallint,
			banned boolean, follow boolean, user_exists boolean,
			mutual_friends_count int, mutual_friends_avatars text[])
		ON CONFLICT (object_id, subject_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, payload)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (r *repository) UpdateBulk(ctx context.Context, candidates []Candidate) (int64, error) {
	if len(candidates) == 0 {
		return 0, nil
	}
	payload, err := marshalCandidates(candidates)
	if err != nil {
		return 0, err
	}

	query := `
		UPDATE relations AS r
		SET mutual_friends_count   = c.mutual_friends_count,
		    mutual_friends_avatars = c.mutual_friends_avatars,
		    user_exists            = c.user_exists,
		    modified               = NOW()
		FROM jsonb_to_recordset($1::jsonb) AS c(
			object_id text, subject_id text,
			mutual_friends_count int, mutual_friends_avatars text[], user_exists boolean)
		WHERE r.object_id = c.object_id AND r.subject_id = c.subject_id
	`
	result, err := r.db.ExecContext(ctx, query, payload)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

package matching

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/roomster/roomster-api/internal/domain/relation"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

type feedRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Description  sql.NullString `db:"description"`
	CityID       string         `db:"city_id"`
	IsMoving     bool           `db:"is_moving"`
	MoveInDate   sql.NullTime   `db:"move_in_date"`
	Created      time.Time      `db:"created"`
	AvatarURL    sql.NullString `db:"avatar_url"`
	LocationName sql.NullString `db:"location_name"`
}

type relatedRow struct {
	feedRow
	RelType              relation.Type  `db:"rel_type"`
	MutualFriendsCount   int            `db:"mutual_friends_count"`
	MutualFriendsAvatars pq.StringArray `db:"mutual_friends_avatars"`
}

func (r feedRow) toItem() MatchItem {
	item := MatchItem{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		CityID:      r.CityID,
		IsMoving:    r.IsMoving,
		Created:     r.Created,
	}
	if r.MoveInDate.Valid {
		d := r.MoveInDate.Time
		item.MoveInDate = &d
	}
	if r.AvatarURL.Valid {
		item.Avatar = &Avatar{URL: r.AvatarURL.String}
	}
	if r.LocationName.Valid {
		item.Apartment = &Apartment{LocationName: r.LocationName.String}
	}
	return item
}

const feedUserColumns = `
		u.id, u.name, u.description, u.city_id, u.is_moving, u.move_in_date, u.created,
		av.url AS avatar_url`

const avatarJoin = `
		LEFT JOIN LATERAL (
			SELECT url FROM images
			WHERE user_id = u.id AND is_avatar
			ORDER BY created DESC
			LIMIT 1
		) av ON true`

const apartmentJoin = `
		LEFT JOIN LATERAL (
			SELECT name FROM locations
			WHERE user_id = u.id AND type = 'apartment'
			ORDER BY created DESC
			LIMIT 1
		) ap ON true`

func (r *repository) ListRelated(ctx context.Context, userID, cityID string, offset, limit int) ([]MatchItem, error) {
	query := `
		SELECT` + feedUserColumns + `,
			NULL::text AS location_name,
			rel.type AS rel_type,
			rel.mutual_friends_count,
			rel.mutual_friends_avatars
		FROM relations rel
		JOIN users u ON u.id = rel.subject_id` + avatarJoin + `
		WHERE rel.object_id = $1
			AND rel.user_exists
			AND NOT rel.banned
			AND NOT rel.follow
			AND u.city_id = $2
		ORDER BY rel.type ASC, rel.mutual_friends_count DESC, rel.follow ASC, rel.created ASC
		OFFSET $3
		LIMIT $4`

	var rows []relatedRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, cityID, offset, limit); err != nil {
		return nil, fmt.Errorf("failed to list related candidates: %w", err)
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		item := row.toItem()
		item.Relation = &RelationInfo{
			Type:                 row.RelType,
			MutualFriendsCount:   row.MutualFriendsCount,
			MutualFriendsAvatars: row.MutualFriendsAvatars,
		}
		items = append(items, item)
	}
	return items, nil
}

// emptyIfNil keeps the exclusion bind a real text[] value. A nil slice
// binds as SQL NULL and ANY(NULL) is unknown for every row, which would
// empty the stranger pool for users with no relations yet.
func emptyIfNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func (r *repository) ListStrangers(ctx context.Context, userID, cityID string, excludeIDs []string, offset, limit int) ([]MatchItem, error) {
	query := `
		SELECT` + feedUserColumns + `,
			ap.name AS location_name
		FROM users u` + avatarJoin + apartmentJoin + `
		WHERE u.city_id = $1
			AND u.id <> $2
			AND NOT (u.id = ANY($3))
		ORDER BY u.created DESC
		OFFSET $4
		LIMIT $5`

	var rows []feedRow
	if err := r.db.SelectContext(ctx, &rows, query, cityID, userID, pq.Array(emptyIfNil(excludeIDs)), offset, limit); err != nil {
		return nil, fmt.Errorf("failed to list stranger candidates: %w", err)
	}

	items := make([]MatchItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toItem())
	}
	return items, nil
}

func (r *repository) ExcludedIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT subject_id FROM relations WHERE object_id = $1
		UNION
		SELECT object_id FROM relations WHERE subject_id = $1 AND banned`

	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list excluded candidate ids: %w", err)
	}
	return ids, nil
}

func (r *repository) CountValidRelations(ctx context.Context, userID, cityID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM relations rel
		JOIN users u ON u.id = rel.subject_id
		WHERE rel.object_id = $1
			AND rel.user_exists
			AND NOT rel.banned
			AND u.city_id = $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, userID, cityID); err != nil {
		return 0, fmt.Errorf("failed to count valid relations: %w", err)
	}
	return count, nil
}

package user

import (
	"database/sql"
	"time"
)

// User represents a user account. The primary key is the social-graph
// id of the account, so relation subjects that later register keep the
// same identifier they had as graph-only candidates.
type User struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	CityID      string         `db:"city_id"`
	IsMoving    bool           `db:"is_moving"`
	MoveInDate  sql.NullTime   `db:"move_in_date"`

	// Friend-source access token issued at login
	FacebookToken sql.NullString `db:"facebook_token"`

	// Last successful relation-graph synchronization
	RelationsLastUpdate sql.NullTime `db:"relations_last_update"`

	Created  time.Time `db:"created"`
	Modified time.Time `db:"modified"`
}

// SyncState is the projection of a user row the graph synchronizer
// needs: cooldown bookkeeping plus the friend-source credentials.
type SyncState struct {
	ID                  string         `db:"id"`
	CityID              string         `db:"city_id"`
	FacebookToken       sql.NullString `db:"facebook_token"`
	RelationsLastUpdate sql.NullTime   `db:"relations_last_update"`
}

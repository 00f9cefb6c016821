package relation

import (
	"context"
)

// Repository defines relation data access interface. Every destructive
// or scoped read is keyed by the owning objectID.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Relation, error)
	ListByObject(ctx context.Context, objectID string) ([]*Relation, error)
	DeleteByObject(ctx context.Context, objectID string) (int64, error)

	Create(ctx context.Context, rel *Relation) error
	UpdateFlags(ctx context.Context, id string, banned, follow *bool) (*Relation, error)

	// ListFriendEdges returns known FRIEND edges owned by any of the
	// given users (the one-hop neighborhood source).
	ListFriendEdges(ctx context.Context, objectIDs []string) ([]Relation, error)

	// ListFollowerIDs returns ids of users who already classified the
	// given user as a non-banned STRANGER candidate.
	ListFollowerIDs(ctx context.Context, subjectID string) ([]string, error)

	// MapByObjectAndSubjects loads the owner's relations restricted to
	// the given subjects in one scoped query, keyed by subject id.
	MapByObjectAndSubjects(ctx context.Context, objectID string, subjectIDs []string) (map[string]*Relation, error)

	// CreateBulk inserts candidates under their composite ids,
	// skipping rows that already exist. Returns the created count.
	CreateBulk(ctx context.Context, candidates []Candidate) (int64, error)

	// UpdateBulk issues unordered point-updates of the mutual-friend
	// fields for the given candidates in one round trip. Returns the
	// modified count.
	UpdateBulk(ctx context.Context, candidates []Candidate) (int64, error)
}

package relation

import (
	"time"

	"github.com/lib/pq"
)

// Type classifies how the owning user is connected to the subject
type Type int

const (
	TypeFriend         Type = 10
	TypeFriendOfFriend Type = 20
	TypeStranger       Type = 30
)

// DefaultType is assigned to relations created outside graph
// synchronization, e.g. a ban or follow on a user never met through
// the friend graph.
const DefaultType = TypeStranger

// MaxMutualAvatars caps how many mutual-friend avatar URLs are stored
// per relation. The mutual-friend count is not capped.
const MaxMutualAvatars = 4

// Relation is a directed edge from SubjectID (the other person) to
// ObjectID (the owning user). Two users following each other are two
// independent rows, one per direction.
type Relation struct {
	ID                   string         `db:"id"`
	ObjectID             string         `db:"object_id"`
	SubjectID            string         `db:"subject_id"`
	Type                 Type           `db:"type"`
	Banned               bool           `db:"banned"`
	Follow               bool           `db:"follow"`
	UserExists           bool           `db:"user_exists"`
	MutualFriendsCount   int            `db:"mutual_friends_count"`
	MutualFriendsAvatars pq.StringArray `db:"mutual_friends_avatars"`
	Created              time.Time      `db:"created"`
	Modified             time.Time      `db:"modified"`
}

// Candidate is the pre-persistence form of a Relation produced during
// graph synchronization.
type Candidate struct {
	ObjectID             string
	SubjectID            string
	Type                 Type
	Banned               bool
	Follow               bool
	UserExists           bool
	MutualFriendsCount   int
	MutualFriendsAvatars []string
}

// ID returns the candidate's deterministic composite id
func (c Candidate) ID() string {
	return ComposeID(c.ObjectID, c.SubjectID)
}

// ComposeID derives the composite relation id. It is deterministic so
// repeated synchronizations upsert instead of duplicating rows.
func ComposeID(objectID, subjectID string) string {
	return objectID + ":" + subjectID
}

package relation

import (
	"time"
)

// RelationResponse represents a relation in API responses
type RelationResponse struct {
	ID                   string    `json:"id"`
	ObjectID             string    `json:"objectId"`
	SubjectID            string    `json:"subjectId"`
	Type                 Type      `json:"type"`
	Banned               bool      `json:"banned"`
	Follow               bool      `json:"follow"`
	UserExists           bool      `json:"userExists"`
	MutualFriendsCount   int       `json:"mutualFriendsCount"`
	MutualFriendsAvatars []string  `json:"mutualFriendsAvatars"`
	Created              time.Time `json:"created"`
	Modified             time.Time `json:"modified"`
}

// RelationFromEntity converts entity to response
func RelationFromEntity(rel *Relation) *RelationResponse {
	return &RelationResponse{
		ID:                   rel.ID,
		ObjectID:             rel.ObjectID,
		SubjectID:            rel.SubjectID,
		Type:                 rel.Type,
		Banned:               rel.Banned,
		Follow:               rel.Follow,
		UserExists:           rel.UserExists,
		MutualFriendsCount:   rel.MutualFriendsCount,
		MutualFriendsAvatars: rel.MutualFriendsAvatars,
		Created:              rel.Created,
		Modified:             rel.Modified,
	}
}

// SyncResponse for POST /relations/sync
type SyncResponse struct {
	Created        int       `json:"created"`
	Modified       int       `json:"modified"`
	LastUpdateDate time.Time `json:"lastUpdateDate"`
}

// UpsertRelationRequest for PUT /relations
type UpsertRelationRequest struct {
	SubjectID string `json:"subjectId" validate:"required"`
	Banned    *bool  `json:"banned"`
	Follow    *bool  `json:"follow"`
}

// DeleteAllResponse for DELETE /relations/my
type DeleteAllResponse struct {
	Count int64 `json:"count"`
}

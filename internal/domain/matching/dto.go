package matching

import (
	"time"

	"github.com/roomster/roomster-api/internal/domain/relation"
)

type Avatar struct {
	URL string `json:"url"`
}

type Apartment struct {
	LocationName string `json:"locationName"`
}

type RelationInfo struct {
	Type                 relation.Type `json:"type"`
	MutualFriendsCount   int           `json:"mutualFriendsCount"`
	MutualFriendsAvatars []string      `json:"mutualFriendsAvatars"`
}

// MatchItem is a single feed entry. Avatar, Apartment and Relation are
// nil when the candidate has no avatar picture, no saved apartment or
// no relation edge to the requesting user.
type MatchItem struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	CityID      string        `json:"cityId"`
	IsMoving    bool          `json:"isMoving"`
	MoveInDate  *time.Time    `json:"moveInDate,omitempty"`
	Created     time.Time     `json:"created"`
	Avatar      *Avatar       `json:"avatar"`
	Apartment   *Apartment    `json:"apartment"`
	Relation    *RelationInfo `json:"relation"`
}

type Page struct {
	Result   []MatchItem `json:"result"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
}

type CountResponse struct {
	Count int `json:"count"`
}

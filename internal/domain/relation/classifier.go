package relation

// MutualFriend is one shared friend between the owning user and a
// candidate subject. AvatarURL is empty when the friend source returned
// no usable picture.
type MutualFriend struct {
	ID        string
	AvatarURL string
}

// MutualFriendsMap groups mutual friends by candidate subject id
type MutualFriendsMap map[string][]MutualFriend

// ClassifyDirect maps every direct friend id to a FRIEND candidate
func ClassifyDirect(objectID string, friendIDs []string, mutuals MutualFriendsMap, existing map[string]bool) []Candidate {
	candidates := make([]Candidate, 0, len(friendIDs))
	for _, id := range friendIDs {
		candidates = append(candidates, newCandidate(objectID, id, TypeFriend, mutuals[id], existing[id]))
	}
	return candidates
}

// ClassifyIndirect maps the subjects of the friends' own FRIEND edges
// to FRIEND_OF_FRIEND candidates. Subjects that are also direct friends
// are dropped later by the ordered dedup, which keeps the FRIEND
// candidate classified first.
func ClassifyIndirect(objectID string, friendEdges []Relation, mutuals MutualFriendsMap, existing map[string]bool) []Candidate {
	candidates := make([]Candidate, 0, len(friendEdges))
	for _, edge := range friendEdges {
		id := edge.SubjectID
		candidates = append(candidates, newCandidate(objectID, id, TypeFriendOfFriend, mutuals[id], existing[id]))
	}
	return candidates
}

// ClassifyStrangers maps follower ids to STRANGER candidates. Followers
// already have local accounts, so userExists is always true and there
// is no mutual-friend data to attach.
func ClassifyStrangers(objectID string, ids []string) []Candidate {
	candidates := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		candidates = append(candidates, newCandidate(objectID, id, TypeStranger, nil, true))
	}
	return candidates
}

// MergeAndFilterSelf concatenates candidate lists in priority order and
// drops self-relations.
func MergeAndFilterSelf(lists ...[]Candidate) []Candidate {
	var merged []Candidate
	for _, list := range lists {
		for _, c := range list {
			if c.SubjectID == c.ObjectID {
				continue
			}
			merged = append(merged, c)
		}
	}
	return merged
}

// DedupByCompositeID keeps the first candidate per composite id. Direct
// friends are classified before friend-of-friends, so first-wins gives
// FRIEND priority over FRIEND_OF_FRIEND for the same subject.
func DedupByCompositeID(candidates []Candidate) []Candidate {
	seen := make(map[string]bool, len(candidates))
	deduped := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		key := c.ID()
		if seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, c)
	}
	return deduped
}

// newCandidate builds a candidate from raw mutual-friend data. Avatars
// are taken from the first MaxMutualAvatars mutual friends and only
// entries with a picture URL are kept; the count always reflects the
// full mutual list.
func newCandidate(objectID, subjectID string, t Type, mutuals []MutualFriend, exists bool) Candidate {
	capped := mutuals
	if len(capped) > MaxMutualAvatars {
		capped = capped[:MaxMutualAvatars]
	}
	avatars := make([]string, 0, len(capped))
	for _, m := range capped {
		if m.AvatarURL != "" {
			avatars = append(avatars, m.AvatarURL)
		}
	}

	return Candidate{
		ObjectID:             objectID,
		SubjectID:            subjectID,
		Type:                 t,
		UserExists:           exists,
		MutualFriendsCount:   len(mutuals),
		MutualFriendsAvatars: avatars,
	}
}

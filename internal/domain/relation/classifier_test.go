package relation

import (
	"reflect"
	"testing"
)

func TestClassifyDirectBuildsFriendCandidates(t *testing.T) {
	mutuals := MutualFriendsMap{
		"friend-1": {
			{ID: "m-1", AvatarURL: "http://cdn/m1.jpg"},
			{ID: "m-2", AvatarURL: ""},
		},
	}
	existing := map[string]bool{"friend-1": true}

	candidates := ClassifyDirect("me", []string{"friend-1", "friend-2"}, mutuals, existing)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}

	first := candidates[0]
	if first.Type != TypeFriend {
		t.Errorf("expected FRIEND type, got %d", first.Type)
	}
	if !first.UserExists {
		t.Error("expected userExists for a known local user")
	}
	if first.MutualFriendsCount != 2 {
		t.Errorf("expected full mutual count 2, got %d", first.MutualFriendsCount)
	}
	if !reflect.DeepEqual(first.MutualFriendsAvatars, []string{"http://cdn/m1.jpg"}) {
		t.Errorf("expected only the valid avatar URL, got %v", first.MutualFriendsAvatars)
	}

	second := candidates[1]
	if second.UserExists {
		t.Error("expected userExists=false for an unknown subject")
	}
	if second.MutualFriendsCount != 0 || len(second.MutualFriendsAvatars) != 0 {
		t.Errorf("expected empty mutual data, got count=%d avatars=%v",
			second.MutualFriendsCount, second.MutualFriendsAvatars)
	}
}

func TestAvatarsCappedBeforeFiltering(t *testing.T) {
	// The first four mutual friends are taken first and only then
	// filtered for a usable picture, so a missing picture inside the
	// capped window shrinks the list even when later friends have one.
	mutuals := MutualFriendsMap{
		"friend-1": {
			{ID: "m-1", AvatarURL: "http://cdn/1.jpg"},
			{ID: "m-2", AvatarURL: ""},
			{ID: "m-3", AvatarURL: "http://cdn/3.jpg"},
			{ID: "m-4", AvatarURL: "http://cdn/4.jpg"},
			{ID: "m-5", AvatarURL: "http://cdn/5.jpg"},
			{ID: "m-6", AvatarURL: "http://cdn/6.jpg"},
		},
	}

	candidates := ClassifyDirect("me", []string{"friend-1"}, mutuals, nil)
	c := candidates[0]

	if c.MutualFriendsCount != 6 {
		t.Errorf("expected count to cover all 6 mutual friends, got %d", c.MutualFriendsCount)
	}
	want := []string{"http://cdn/1.jpg", "http://cdn/3.jpg", "http://cdn/4.jpg"}
	if !reflect.DeepEqual(c.MutualFriendsAvatars, want) {
		t.Errorf("expected avatars %v, got %v", want, c.MutualFriendsAvatars)
	}
}

func TestClassifyIndirectUsesEdgeSubjects(t *testing.T) {
	edges := []Relation{
		{ObjectID: "friend-1", SubjectID: "fof-1", Type: TypeFriend},
		{ObjectID: "friend-2", SubjectID: "fof-2", Type: TypeFriend},
	}

	candidates := ClassifyIndirect("me", edges, nil, nil)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	for _, c := range candidates {
		if c.Type != TypeFriendOfFriend {
			t.Errorf("expected FRIEND_OF_FRIEND type, got %d", c.Type)
		}
		if c.ObjectID != "me" {
			t.Errorf("expected candidate owned by me, got %s", c.ObjectID)
		}
	}
}

func TestClassifyStrangersMarksUserExists(t *testing.T) {
	candidates := ClassifyStrangers("me", []string{"follower-1"})
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	c := candidates[0]
	if c.Type != TypeStranger || !c.UserExists {
		t.Errorf("expected existing STRANGER candidate, got type=%d userExists=%v", c.Type, c.UserExists)
	}
	if c.MutualFriendsCount != 0 {
		t.Errorf("expected no mutual friends, got %d", c.MutualFriendsCount)
	}
}

func TestMergeAndFilterSelfDropsSelfEdges(t *testing.T) {
	merged := MergeAndFilterSelf(
		[]Candidate{{ObjectID: "me", SubjectID: "me"}, {ObjectID: "me", SubjectID: "a"}},
		[]Candidate{{ObjectID: "me", SubjectID: "me"}, {ObjectID: "me", SubjectID: "b"}},
	)

	if len(merged) != 2 {
		t.Fatalf("expected 2 candidates after self filtering, got %d", len(merged))
	}
	if merged[0].SubjectID != "a" || merged[1].SubjectID != "b" {
		t.Errorf("unexpected merge order: %v", merged)
	}
}

func TestDedupKeepsFriendOverFriendOfFriend(t *testing.T) {
	candidates := []Candidate{
		{ObjectID: "me", SubjectID: "x", Type: TypeFriend},
		{ObjectID: "me", SubjectID: "y", Type: TypeFriendOfFriend},
		{ObjectID: "me", SubjectID: "x", Type: TypeFriendOfFriend},
		{ObjectID: "me", SubjectID: "y", Type: TypeStranger},
	}

	deduped := DedupByCompositeID(candidates)
	if len(deduped) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(deduped))
	}
	if deduped[0].SubjectID != "x" || deduped[0].Type != TypeFriend {
		t.Errorf("expected first-classified FRIEND edge to win, got %+v", deduped[0])
	}
	if deduped[1].SubjectID != "y" || deduped[1].Type != TypeFriendOfFriend {
		t.Errorf("expected first-classified FRIEND_OF_FRIEND edge to win, got %+v", deduped[1])
	}

	// Deduplication is stable: running it again changes nothing.
	again := DedupByCompositeID(deduped)
	if !reflect.DeepEqual(again, deduped) {
		t.Errorf("expected idempotent dedup, got %v", again)
	}
}

func TestComposeID(t *testing.T) {
	if got := ComposeID("obj", "subj"); got != "obj:subj" {
		t.Errorf("expected obj:subj, got %s", got)
	}
	c := Candidate{ObjectID: "obj", SubjectID: "subj"}
	if c.ID() != "obj:subj" {
		t.Errorf("expected obj:subj, got %s", c.ID())
	}
}

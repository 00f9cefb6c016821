package relation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/roomster/roomster-api/internal/domain/user"
	"github.com/roomster/roomster-api/internal/pkg/facebook"
)

// FriendSource is the external social-graph collaborator
type FriendSource interface {
	ListFriendsAll(ctx context.Context, userID, accessToken string) ([]facebook.Friend, error)
	MutualFriendsBulk(ctx context.Context, ids []string, accessToken string, limit int) ([]facebook.MutualFriend, error)
}

// Locker serializes synchronization runs per user
type Locker interface {
	Acquire(ctx context.Context, userID string) (bool, error)
	Release(ctx context.Context, userID string) error
}

// SyncResult summarizes one synchronization run
type SyncResult struct {
	Created        int
	Modified       int
	LastUpdateDate time.Time
}

// ServiceConfig holds synchronizer tunables
type ServiceConfig struct {
	// UpdatePeriod is the cooldown between synchronizations per user
	UpdatePeriod time.Duration
	// MutualFriendsLimit caps mutual friends requested per candidate
	MutualFriendsLimit int
}

// Service synchronizes a user's relation graph against the external
// friend source and owns all relation writes for that user.
type Service struct {
	repo         Repository
	users        user.Repository
	friends      FriendSource
	lock         Locker
	updatePeriod time.Duration
	mutualLimit  int
}

// NewService creates new relation service
func NewService(repo Repository, users user.Repository, friends FriendSource, lock Locker, cfg ServiceConfig) *Service {
	return &Service{
		repo:         repo,
		users:        users,
		friends:      friends,
		lock:         lock,
		updatePeriod: cfg.UpdatePeriod,
		mutualLimit:  cfg.MutualFriendsLimit,
	}
}

// Synchronize rebuilds the user's relation graph from the friend
// source. Unless force is set, a run inside the cooldown window is
// skipped and the stored last-update date is returned with zero
// counts. Writes are idempotent by composite id, so a failed run is
// safe to retry on the next eligible call.
func (s *Service) Synchronize(ctx context.Context, userID string, force bool) (*SyncResult, error) {
	state, err := s.users.GetSyncState(ctx, userID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if !force && state.RelationsLastUpdate.Valid {
		last := state.RelationsLastUpdate.Time
		if start.Sub(last) < s.updatePeriod {
			return &SyncResult{LastUpdateDate: last}, nil
		}
	}

	if !state.FacebookToken.Valid || state.FacebookToken.String == "" {
		return nil, ErrNoAccessToken
	}
	token := state.FacebookToken.String

	acquired, err := s.lock.Acquire(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("acquire sync lock: %w", err)
	}
	if !acquired {
		return nil, ErrSyncInProgress
	}
	defer func() {
		if err := s.lock.Release(context.WithoutCancel(ctx), userID); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("Failed to release sync lock")
		}
	}()

	candidates, err := s.fetchCandidates(ctx, userID, token)
	if err != nil {
		return nil, err
	}

	created, modified, err := s.reconcile(ctx, userID, candidates)
	if err != nil {
		return nil, err
	}

	// The timestamp moves only after a fully successful run, so a
	// failed sync stays eligible for retry.
	if err := s.users.SetRelationsLastUpdate(ctx, userID, start); err != nil {
		return nil, fmt.Errorf("advance last sync date: %w", err)
	}

	log.Info().
		Str("user_id", userID).
		Int64("created", created).
		Int64("modified", modified).
		Msg("Relation graph synchronized")

	return &SyncResult{
		Created:        int(created),
		Modified:       int(modified),
		LastUpdateDate: start,
	}, nil
}

// fetchCandidates pulls raw graph data and classifies it into a
// deduplicated candidate set. Independent fetches run concurrently;
// any failure aborts the whole fetch.
func (s *Service) fetchCandidates(ctx context.Context, userID, token string) ([]Candidate, error) {
	var (
		friends     []facebook.Friend
		followerIDs []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		friends, err = s.friends.ListFriendsAll(gctx, userID, token)
		if err != nil {
			return fmt.Errorf("fetch friends: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		followerIDs, err = s.repo.ListFollowerIDs(gctx, userID)
		if err != nil {
			return fmt.Errorf("fetch followers: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	friendIDs := make([]string, 0, len(friends))
	for _, f := range friends {
		friendIDs = append(friendIDs, f.ID)
	}

	friendEdges, err := s.repo.ListFriendEdges(ctx, friendIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch friend edges: %w", err)
	}

	candidateIDs := unionIDs(friendIDs, friendEdges)

	var (
		existingIDs []string
		rawMutuals  []facebook.MutualFriend
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		existingIDs, err = s.users.FilterExistingIDs(gctx, candidateIDs)
		if err != nil {
			return fmt.Errorf("fetch existing users: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		rawMutuals, err = s.friends.MutualFriendsBulk(gctx, candidateIDs, token, s.mutualLimit)
		if err != nil {
			return fmt.Errorf("fetch mutual friends: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	existing := make(map[string]bool, len(existingIDs))
	for _, id := range existingIDs {
		existing[id] = true
	}
	mutuals := groupMutualFriends(rawMutuals)

	merged := MergeAndFilterSelf(
		ClassifyDirect(userID, friendIDs, mutuals, existing),
		ClassifyIndirect(userID, friendEdges, mutuals, existing),
		ClassifyStrangers(userID, followerIDs),
	)
	return DedupByCompositeID(merged), nil
}

// reconcile diffs candidates against the stored graph and writes only
// what changed.
func (s *Service) reconcile(ctx context.Context, userID string, candidates []Candidate) (created, modified int64, err error) {
	subjectIDs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		subjectIDs = append(subjectIDs, c.SubjectID)
	}

	stored, err := s.repo.MapByObjectAndSubjects(ctx, userID, subjectIDs)
	if err != nil {
		return 0, 0, fmt.Errorf("load existing relations: %w", err)
	}

	var createSet, updateSet []Candidate
	for _, c := range candidates {
		existing, ok := stored[c.SubjectID]
		if !ok {
			createSet = append(createSet, c)
			continue
		}
		if needsUpdate(existing, c) {
			updateSet = append(updateSet, c)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		created, err = s.repo.CreateBulk(gctx, createSet)
		if err != nil {
			return fmt.Errorf("create relations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		modified, err = s.repo.UpdateBulk(gctx, updateSet)
		if err != nil {
			return fmt.Errorf("update relations: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return 0, 0, err
	}
	return created, modified, nil
}

// needsUpdate reports whether the stored relation differs from the
// candidate in avatar-list length, mutual count or existence flag.
// Ordering differences inside the avatar list are not a change.
func needsUpdate(existing *Relation, c Candidate) bool {
	return len(existing.MutualFriendsAvatars) != len(c.MutualFriendsAvatars) ||
		existing.MutualFriendsCount != c.MutualFriendsCount ||
		existing.UserExists != c.UserExists
}

// groupMutualFriends converts the friend-source payload into the
// classifier's per-subject grouping
func groupMutualFriends(raw []facebook.MutualFriend) MutualFriendsMap {
	grouped := make(MutualFriendsMap)
	for _, m := range raw {
		grouped[m.FriendID] = append(grouped[m.FriendID], MutualFriend{
			ID:        m.Friend.ID,
			AvatarURL: m.AvatarURL(),
		})
	}
	return grouped
}

// unionIDs returns the deduplicated union of direct friend ids and the
// subjects of their FRIEND edges
func unionIDs(friendIDs []string, friendEdges []Relation) []string {
	seen := make(map[string]bool, len(friendIDs)+len(friendEdges))
	union := make([]string, 0, len(friendIDs)+len(friendEdges))
	for _, id := range friendIDs {
		if !seen[id] {
			seen[id] = true
			union = append(union, id)
		}
	}
	for _, edge := range friendEdges {
		if !seen[edge.SubjectID] {
			seen[edge.SubjectID] = true
			union = append(union, edge.SubjectID)
		}
	}
	return union
}

// ListMy returns all relations owned by the given user
func (s *Service) ListMy(ctx context.Context, userID string) ([]*Relation, error) {
	return s.repo.ListByObject(ctx, userID)
}

// RemoveAllMy deletes all relations owned by the given user
func (s *Service) RemoveAllMy(ctx context.Context, userID string) (int64, error) {
	return s.repo.DeleteByObject(ctx, userID)
}

// Upsert updates the ban/follow flags of one relation, creating a
// STRANGER-typed edge when none exists yet
func (s *Service) Upsert(ctx context.Context, userID, subjectID string, banned, follow *bool) (*Relation, error) {
	if subjectID == userID {
		return nil, ErrSelfRelation
	}
	if banned == nil && follow == nil {
		return nil, ErrFlagsRequired
	}

	id := ComposeID(userID, subjectID)
	updated, err := s.repo.UpdateFlags(ctx, id, banned, follow)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		return updated, nil
	}

	rel := &Relation{
		ID:                   id,
		ObjectID:             userID,
		SubjectID:            subjectID,
		Type:                 DefaultType,
		Banned:               banned != nil && *banned,
		Follow:               follow != nil && *follow,
		UserExists:           true,
		MutualFriendsAvatars: []string{},
	}
	if err := s.repo.Create(ctx, rel); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

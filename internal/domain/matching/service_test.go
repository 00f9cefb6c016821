package matching

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

type repoStub struct {
	related   []MatchItem
	strangers []MatchItem
	excluded  []string

	relatedErr  error
	strangerErr error

	relatedCalls       int
	lastRelatedOffset  int
	lastRelatedLimit   int
	strangerCalls      int
	lastStrangerOffset int
	lastStrangerLimit  int
	lastExcludeIDs     []string
}

func window(items []MatchItem, offset, limit int) []MatchItem {
	if offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func (s *repoStub) ListRelated(ctx context.Context, userID, cityID string, offset, limit int) ([]MatchItem, error) {
	s.relatedCalls++
	s.lastRelatedOffset = offset
	s.lastRelatedLimit = limit
	if s.relatedErr != nil {
		return nil, s.relatedErr
	}
	return window(s.related, offset, limit), nil
}

func (s *repoStub) ListStrangers(ctx context.Context, userID, cityID string, excludeIDs []string, offset, limit int) ([]MatchItem, error) {
	s.strangerCalls++
	s.lastStrangerOffset = offset
	s.lastStrangerLimit = limit
	s.lastExcludeIDs = excludeIDs
	if s.strangerErr != nil {
		return nil, s.strangerErr
	}
	return window(s.strangers, offset, limit), nil
}

func (s *repoStub) ExcludedIDs(ctx context.Context, userID string) ([]string, error) {
	return s.excluded, nil
}

func (s *repoStub) CountValidRelations(ctx context.Context, userID, cityID string) (int, error) {
	return len(s.related), nil
}

func makeItems(prefix string, n int) []MatchItem {
	items := make([]MatchItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, MatchItem{ID: fmt.Sprintf("%s-%d", prefix, i)})
	}
	return items
}

func mustDecode(t *testing.T, token *string) Cursor {
	t.Helper()
	if token == nil {
		t.Fatal("expected cursor token, got nil")
	}
	cursor, err := DecodeCursor(*token)
	if err != nil {
		t.Fatalf("failed to decode cursor: %v", err)
	}
	return *cursor
}

func TestFeedFirstPageBlendsPools(t *testing.T) {
	repo := &repoStub{
		related:   makeItems("rel", 4),
		strangers: makeItems("str", 50),
		excluded:  []string{"rel-0", "rel-1", "rel-2", "rel-3"},
	}
	service := NewService(repo, 10)

	page, err := service.GetFeedPage(context.Background(), "user-1", "city-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Result) != 10 {
		t.Fatalf("expected 10 items, got %d", len(page.Result))
	}
	for i := 0; i < 4; i++ {
		if page.Result[i].ID != fmt.Sprintf("rel-%d", i) {
			t.Errorf("expected related item rel-%d at position %d, got %s", i, i, page.Result[i].ID)
		}
	}
	if page.Result[4].ID != "str-0" {
		t.Errorf("expected strangers to follow related items, got %s", page.Result[4].ID)
	}

	if repo.lastStrangerOffset != 0 || repo.lastStrangerLimit != 6 {
		t.Errorf("expected stranger query offset=0 limit=6, got offset=%d limit=%d",
			repo.lastStrangerOffset, repo.lastStrangerLimit)
	}
	if len(repo.lastExcludeIDs) != 4 {
		t.Errorf("expected 4 excluded ids, got %d", len(repo.lastExcludeIDs))
	}

	next := mustDecode(t, page.Next)
	if next != (Cursor{Limit: 10, Offset: 10, Diff: 6}) {
		t.Errorf("unexpected next cursor: %+v", next)
	}
	if page.Previous != nil {
		t.Errorf("expected no previous cursor on first page, got %v", *page.Previous)
	}
}

func TestFeedSecondPageStrangersOnly(t *testing.T) {
	repo := &repoStub{
		related:   makeItems("rel", 4),
		strangers: makeItems("str", 50),
	}
	service := NewService(repo, 10)

	token := EncodeCursor(Cursor{Limit: 10, Offset: 10, Diff: 6})
	page, err := service.GetFeedPage(context.Background(), "user-1", "city-1", token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Result) != 10 {
		t.Fatalf("expected 10 items, got %d", len(page.Result))
	}
	if page.Result[0].ID != "str-6" {
		t.Errorf("expected stranger pool to resume at str-6, got %s", page.Result[0].ID)
	}
	if repo.lastStrangerOffset != 6 || repo.lastStrangerLimit != 10 {
		t.Errorf("expected stranger query offset=6 limit=10, got offset=%d limit=%d",
			repo.lastStrangerOffset, repo.lastStrangerLimit)
	}

	next := mustDecode(t, page.Next)
	if next != (Cursor{Limit: 10, Offset: 20, Diff: 16}) {
		t.Errorf("unexpected next cursor: %+v", next)
	}
	previous := mustDecode(t, page.Previous)
	if previous != (Cursor{Limit: 10, Offset: 0, Diff: 0}) {
		t.Errorf("unexpected previous cursor: %+v", previous)
	}
}

func TestFeedRelatedFillsPageSkipsStrangerQuery(t *testing.T) {
	repo := &repoStub{
		related:   makeItems("rel", 25),
		strangers: makeItems("str", 50),
	}
	service := NewService(repo, 10)

	page, err := service.GetFeedPage(context.Background(), "user-1", "city-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.strangerCalls != 0 {
		t.Errorf("expected stranger pool to be skipped, got %d calls", repo.strangerCalls)
	}
	if len(page.Result) != 10 {
		t.Fatalf("expected 10 items, got %d", len(page.Result))
	}

	next := mustDecode(t, page.Next)
	if next != (Cursor{Limit: 10, Offset: 10, Diff: 0}) {
		t.Errorf("unexpected next cursor: %+v", next)
	}
}

func TestFeedPartialPageHasNoNext(t *testing.T) {
	repo := &repoStub{
		related:   makeItems("rel", 4),
		strangers: makeItems("str", 2),
	}
	service := NewService(repo, 10)

	page, err := service.GetFeedPage(context.Background(), "user-1", "city-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Result) != 6 {
		t.Fatalf("expected 6 items, got %d", len(page.Result))
	}
	if page.Next != nil {
		t.Errorf("expected no next cursor on a partial page, got %v", *page.Next)
	}
	if page.Previous != nil {
		t.Errorf("expected no previous cursor, got %v", *page.Previous)
	}
}

func TestFeedNewUserSeesStrangers(t *testing.T) {
	// A user with no relation rows at all still gets a full stranger
	// page, the empty exclusion list must not filter anyone out.
	repo := &repoStub{strangers: makeItems("str", 12)}
	service := NewService(repo, 10)

	page, err := service.GetFeedPage(context.Background(), "user-1", "city-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Result) != 10 {
		t.Fatalf("expected 10 strangers, got %d", len(page.Result))
	}
	if page.Result[0].ID != "str-0" {
		t.Errorf("expected stranger pool from the start, got %s", page.Result[0].ID)
	}

	next := mustDecode(t, page.Next)
	if next != (Cursor{Limit: 10, Offset: 10, Diff: 10}) {
		t.Errorf("unexpected next cursor: %+v", next)
	}
}

func TestFeedEmptyCity(t *testing.T) {
	repo := &repoStub{}
	service := NewService(repo, 10)

	page, err := service.GetFeedPage(context.Background(), "user-1", "city-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(page.Result) != 0 {
		t.Errorf("expected empty result, got %d items", len(page.Result))
	}
	if page.Next != nil || page.Previous != nil {
		t.Error("expected no cursors on an empty page")
	}
}

func TestFeedRejectsBadCursor(t *testing.T) {
	service := NewService(&repoStub{}, 10)

	_, err := service.GetFeedPage(context.Background(), "user-1", "city-1", "###")
	if !errors.Is(err, ErrBadCursor) {
		t.Errorf("expected ErrBadCursor, got %v", err)
	}
}

func TestFeedPropagatesRepositoryError(t *testing.T) {
	repoErr := errors.New("db down")
	service := NewService(&repoStub{relatedErr: repoErr}, 10)

	_, err := service.GetFeedPage(context.Background(), "user-1", "city-1", "")
	if !errors.Is(err, repoErr) {
		t.Errorf("expected repository error, got %v", err)
	}
}

func TestMatchCount(t *testing.T) {
	repo := &repoStub{related: makeItems("rel", 7)}
	service := NewService(repo, 10)

	count, err := service.GetMatchCount(context.Background(), "user-1", "city-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 7 {
		t.Errorf("expected 7, got %d", count)
	}
}

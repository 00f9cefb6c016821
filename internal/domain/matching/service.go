package matching

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type Service struct {
	repo     Repository
	pageSize int
}

func NewService(repo Repository, pageSize int) *Service {
	return &Service{
		repo:     repo,
		pageSize: pageSize,
	}
}

// GetFeedPage assembles one feed page for the user: the related pool
// first, topped up with strangers when the related pool cannot fill the
// page. The returned next and previous tokens carry all the state the
// following request needs, the server keeps none.
func (s *Service) GetFeedPage(ctx context.Context, userID, cityID, cursorToken string) (*Page, error) {
	cursor := Cursor{Limit: s.pageSize}
	if cursorToken != "" {
		decoded, err := DecodeCursor(cursorToken)
		if err != nil {
			return nil, err
		}
		cursor = *decoded
	}

	var (
		related  []MatchItem
		excluded []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		related, err = s.repo.ListRelated(gctx, userID, cityID, cursor.Offset, cursor.Limit)
		return err
	})
	g.Go(func() error {
		var err error
		excluded, err = s.repo.ExcludedIDs(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// How much of the page the related pool left unfilled. The stranger
	// pool advances by exactly this amount, accumulated in the cursor.
	memo := cursor.Limit - len(related)

	var strangers []MatchItem
	if memo > 0 {
		var err error
		strangers, err = s.repo.ListStrangers(ctx, userID, cityID, excluded, cursor.Diff, memo)
		if err != nil {
			return nil, err
		}
	}

	page := &Page{Result: append(related, strangers...)}

	if cursor.Limit <= len(page.Result) {
		next := EncodeCursor(Cursor{
			Limit:  cursor.Limit,
			Offset: cursor.Offset + cursor.Limit,
			Diff:   cursor.Diff + memo,
		})
		page.Next = &next
	}

	if cursor.Diff > 0 {
		diff := cursor.Diff - memo
		if diff < 0 {
			diff = 0
		}
		previous := EncodeCursor(Cursor{
			Limit:  cursor.Limit,
			Offset: cursor.Offset - cursor.Limit,
			Diff:   diff,
		})
		page.Previous = &previous
	}

	return page, nil
}

// GetMatchCount reports how many non-banned existing relations the
// user has in their city, unpaged. Followed users are included, unlike
// in the feed's related pool.
func (s *Service) GetMatchCount(ctx context.Context, userID, cityID string) (int, error) {
	return s.repo.CountValidRelations(ctx, userID, cityID)
}

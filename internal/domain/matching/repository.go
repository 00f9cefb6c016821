package matching

import "context"

type Repository interface {
	// ListRelated returns the city-scoped slice of candidates the user
	// already has a usable relation edge to, in relation order.
	ListRelated(ctx context.Context, userID, cityID string, offset, limit int) ([]MatchItem, error)

	// ListStrangers returns city-scoped candidates without any usable
	// edge, newest profile first. Candidates in excludeIDs and the user
	// themselves are skipped.
	ListStrangers(ctx context.Context, userID, cityID string, excludeIDs []string, offset, limit int) ([]MatchItem, error)

	// ExcludedIDs returns every candidate id the stranger pool must
	// skip: anyone the user has an edge to, plus anyone who banned the
	// user.
	ExcludedIDs(ctx context.Context, userID string) ([]string, error)

	// CountValidRelations counts the user's non-banned existing
	// relations in the city. Followed users count even though the feed
	// pool hides them.
	CountValidRelations(ctx context.Context, userID, cityID string) (int, error)
}

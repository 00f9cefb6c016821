package relation

import "errors"

var (
	ErrSyncInProgress = errors.New("relation synchronization already in progress")
	ErrNoAccessToken  = errors.New("user has no friend source access token")
	ErrSelfRelation   = errors.New("relation subject cannot be the owning user")
	ErrFlagsRequired  = errors.New("at least one of banned or follow must be set")
)

package matching

import "errors"

var (
	ErrBadCursor        = errors.New("cursor contains bad value")
	ErrFilterNotAllowed = errors.New("caller-supplied filters are not allowed")
)

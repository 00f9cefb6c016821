package matching

import (
	"encoding/base64"
	"encoding/json"
)

// Cursor carries the paging state of a feed page. Offset walks the
// related pool, Diff walks the stranger pool, Limit is the page size
// the first request was issued with.
type Cursor struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Diff   int `json:"diff"`
}

// EncodeCursor renders a cursor as an opaque URL-safe token.
func EncodeCursor(c Cursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a token previously produced by EncodeCursor.
// Anything that does not decode to a well-formed cursor is rejected
// with ErrBadCursor.
func DecodeCursor(token string) (*Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrBadCursor
	}

	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, ErrBadCursor
	}
	if c.Limit <= 0 || c.Offset < 0 || c.Diff < 0 {
		return nil, ErrBadCursor
	}

	return &c, nil
}

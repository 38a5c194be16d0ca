// AngelaMos | 2026
// cursor.go

package core

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Cursor is the keyset position of the last row a client has seen.
// Rank is only meaningful for orderings that sort by a rank column first.
type Cursor struct {
	Rank int       `json:"r,omitempty"`
	At   time.Time `json:"t"`
	ID   string    `json:"i"`
}

func EncodeCursor(c Cursor) string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses an opaque cursor. An empty string yields nil.
func DecodeCursor(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", ErrInvalidInput)
	}

	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode cursor: %w", ErrInvalidInput)
	}

	if c.ID == "" || c.At.IsZero() {
		return nil, fmt.Errorf("decode cursor: incomplete: %w", ErrInvalidInput)
	}

	return &c, nil
}

// ClampLimit bounds a requested page size.
func ClampLimit(limit, def, maxLimit int) int {
	if limit < 1 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor указывает на последнюю отданную запись архива звонков.
// Порядок выдачи: ended_at DESC, session_id DESC.
type Cursor struct {
	EndedAt   time.Time `json:"ended_at"`
	SessionID string    `json:"session_id"`
}

func Encode(c Cursor) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode: пустая строка означает первую страницу (nil, nil).
func Decode(s string) (*Cursor, error) {
	if s == "" {
		return nil, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: decode base64: %v", ErrInvalidCursor, err)
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrInvalidCursor, err)
	}
	if c.SessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrInvalidCursor)
	}
	return &c, nil
}

// Older: запись (endedAt, sessionID) идёт строго после курсора в порядке выдачи.
func (c *Cursor) Older(endedAt time.Time, sessionID string) bool {
	if c == nil {
		return true
	}
	if !endedAt.Equal(c.EndedAt) {
		return endedAt.Before(c.EndedAt)
	}
	return sessionID < c.SessionID
}

// Newer задаёт порядок выдачи: true, если a должна идти раньше b.
func Newer(aEnded time.Time, aSession string, bEnded time.Time, bSession string) bool {
	if !aEnded.Equal(bEnded) {
		return aEnded.After(bEnded)
	}
	return aSession > bSession
}

package domain

import "time"

// CallRecord: архивная запись завершённой сессии комнаты.
type CallRecord struct {
	RoomID       string        `json:"roomId"`
	SessionID    string        `json:"sessionId"`
	StartedAt    time.Time     `json:"startedAt"`
	EndedAt      time.Time     `json:"endedAt"`
	DurationSec  int64         `json:"durationSec"`
	Participants []Participant `json:"participants"`
	ChatCount    int           `json:"chatCount"`
}

type Recording struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
}

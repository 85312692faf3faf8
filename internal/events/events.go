package events

import (
	"context"
	"time"
)

type Type string

const (
	SessionStarted Type = "session.started"
	SessionEnded   Type = "session.ended"
	DeviceOnline   Type = "device.online"
	DeviceOffline  Type = "device.offline"
)

// Event уходит внешним обработчикам (транскрипция, биллинг). В relay не участвует.
type Event struct {
	Type        Type      `json:"type"`
	RoomID      string    `json:"roomId,omitempty"`
	SessionID   string    `json:"sessionId,omitempty"`
	DeviceID    string    `json:"deviceId,omitempty"`
	DurationSec int64     `json:"durationSec,omitempty"`
	At          time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }

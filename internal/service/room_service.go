package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/events"
	"github.com/cwrk-planet/call-service/internal/pagination"

	"github.com/moby/locker"
)

type RoomRepository interface {
	FindByRoomID(ctx context.Context, roomID string) (*domain.Room, error)
	Create(ctx context.Context, room *domain.Room) error
	Save(ctx context.Context, room *domain.Room) error
}

type CallHistoryRepository interface {
	Record(ctx context.Context, rec domain.CallRecord) error
	ListByRoom(ctx context.Context, roomID string, after *pagination.Cursor, limit int) ([]domain.CallRecord, error)
}

const publishTimeout = 2 * time.Second

// RoomService ведёт персистентный документ комнаты. Все изменения одной
// комнаты выполняются под блокировкой по roomId (read-modify-write документа).
type RoomService struct {
	rooms RoomRepository
	calls CallHistoryRepository
	pub   events.Publisher
	locks *locker.Locker

	now func() time.Time
}

func NewRoomService(rooms RoomRepository, calls CallHistoryRepository, pub events.Publisher) *RoomService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &RoomService{
		rooms: rooms,
		calls: calls,
		pub:   pub,
		locks: locker.New(),
		now:   time.Now,
	}
}

// Join загружает или создаёт комнату и записывает участника.
// Комната после рестарта ended получает новую сессию.
// При ошибке сохранения возвращается и комната (в памяти), и ошибка.
func (s *RoomService) Join(ctx context.Context, roomID string, p domain.ParticipantInfo) (*domain.Room, error) {
	s.locks.Lock(roomID)
	defer s.locks.Unlock(roomID)

	now := s.now()
	room, err := s.rooms.FindByRoomID(ctx, roomID)
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		room = domain.NewRoom(roomID, p, now)
		if err := s.rooms.Create(ctx, room); err != nil {
			return room, fmt.Errorf("rooms.Create: %w", err)
		}
		return room, nil
	case err != nil:
		return nil, fmt.Errorf("rooms.FindByRoomID: %w", err)
	}

	if room.Status == domain.RoomEnded {
		slog.Info("room restarted after end", "room", roomID, "prev_session", room.SessionID)
		room.Restart(now)
	}
	room.AddParticipant(p, now)

	if err := s.rooms.Save(ctx, room); err != nil {
		return room, fmt.Errorf("rooms.Save: %w", err)
	}
	return room, nil
}

// Activate переводит waiting -> active. Для комнаты в другом статусе ничего не делает.
func (s *RoomService) Activate(ctx context.Context, roomID string) (*domain.Room, error) {
	s.locks.Lock(roomID)
	defer s.locks.Unlock(roomID)

	room, err := s.rooms.FindByRoomID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("rooms.FindByRoomID: %w", err)
	}
	if room.Status != domain.RoomWaiting {
		return room, nil
	}

	_ = room.Start(s.now())
	if err := s.rooms.Save(ctx, room); err != nil {
		return room, fmt.Errorf("rooms.Save: %w", err)
	}

	s.publish(ctx, events.Event{
		Type:      events.SessionStarted,
		RoomID:    room.RoomID,
		SessionID: room.SessionID,
		At:        *room.CallStartTime,
	})
	return room, nil
}

// Leave отмечает уход участника. Если живых участников не осталось и звонок
// шёл, комната завершается и сессия уходит в архив.
func (s *RoomService) Leave(ctx context.Context, roomID, participantID string, roomEmpty bool) (*domain.Room, error) {
	s.locks.Lock(roomID)
	defer s.locks.Unlock(roomID)

	room, err := s.rooms.FindByRoomID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("rooms.FindByRoomID: %w", err)
	}

	now := s.now()
	room.RemoveParticipant(participantID, now)

	ended := false
	if roomEmpty && room.Status == domain.RoomActive {
		_ = room.End(now)
		ended = true
	}

	if err := s.rooms.Save(ctx, room); err != nil {
		return room, fmt.Errorf("rooms.Save: %w", err)
	}

	if ended {
		if err := s.calls.Record(ctx, room.CallRecord()); err != nil {
			slog.Warn("call history record failed", "room", roomID, "session", room.SessionID, "err", err)
		}
		s.publish(ctx, events.Event{
			Type:        events.SessionEnded,
			RoomID:      room.RoomID,
			SessionID:   room.SessionID,
			DurationSec: room.CallDuration,
			At:          *room.CallEndTime,
		})
	}
	return room, nil
}

// AppendChat сохраняет сообщение в текущую сессию комнаты.
// Сообщение возвращается и при ошибке хранилища, чтобы его можно было разослать.
func (s *RoomService) AppendChat(ctx context.Context, roomID, senderID, senderName, text string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, domain.ErrEmptyMessage
	}

	s.locks.Lock(roomID)
	defer s.locks.Unlock(roomID)

	now := s.now()
	room, err := s.rooms.FindByRoomID(ctx, roomID)
	if err != nil {
		return domain.NewChatMessage(senderID, senderName, text, now), fmt.Errorf("rooms.FindByRoomID: %w", err)
	}

	msg := room.AddChatMessage(senderID, senderName, text, now)
	if err := s.rooms.Save(ctx, room); err != nil {
		return msg, fmt.Errorf("rooms.Save: %w", err)
	}
	return msg, nil
}

// CallHistory архив завершённых сессий комнаты, новые первыми.
// cursor берётся из предыдущей страницы; пустой next значит, что страниц больше нет.
func (s *RoomService) CallHistory(ctx context.Context, roomID, cursor string, limit int) ([]domain.CallRecord, string, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	after, err := pagination.Decode(cursor)
	if err != nil {
		return nil, "", err
	}

	items, err := s.calls.ListByRoom(ctx, roomID, after, limit)
	if err != nil {
		return nil, "", fmt.Errorf("calls.ListByRoom: %w", err)
	}

	var next string
	if len(items) == limit {
		last := items[len(items)-1]
		next, _ = pagination.Encode(pagination.Cursor{EndedAt: last.EndedAt, SessionID: last.SessionID})
	}
	return items, next, nil
}

func (s *RoomService) publish(ctx context.Context, e events.Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.pub.Publish(ctx, e); err != nil {
		slog.Warn("publish event failed", "type", e.Type, "room", e.RoomID, "err", err)
	}
}

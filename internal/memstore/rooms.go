package memstore

import (
	"context"
	"sync"

	"github.com/cwrk-planet/call-service/internal/domain"
)

// RoomStore хранит документы комнат в памяти процесса. Используется в dev
// и в тестах, где через SetErr можно сымитировать отказ хранилища.
type RoomStore struct {
	mu    sync.RWMutex
	rooms map[string]*domain.Room
	err   error
}

func NewRoomStore() *RoomStore {
	return &RoomStore{rooms: make(map[string]*domain.Room)}
}

// SetErr заставляет все операции возвращать err, nil возвращает нормальную работу.
func (s *RoomStore) SetErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *RoomStore) FindByRoomID(_ context.Context, roomID string) (*domain.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return r.Clone(), nil
}

func (s *RoomStore) Create(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	if _, ok := s.rooms[room.RoomID]; ok {
		return domain.ErrRoomExists
	}
	s.rooms[room.RoomID] = room.Clone()
	return nil
}

func (s *RoomStore) Save(_ context.Context, room *domain.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.rooms[room.RoomID] = room.Clone()
	return nil
}

func (s *RoomStore) Ping(context.Context) error { return nil }

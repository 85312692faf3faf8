package ws

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/metrics"
	"github.com/cwrk-planet/call-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/moby/locker"
)

var ErrCoordinatorClosed = errors.New("coordinator closed")

// RoomStore: персистентная сторона комнаты (service.RoomService).
type RoomStore interface {
	Join(ctx context.Context, roomID string, p domain.ParticipantInfo) (*domain.Room, error)
	Activate(ctx context.Context, roomID string) (*domain.Room, error)
	Leave(ctx context.Context, roomID, participantID string, roomEmpty bool) (*domain.Room, error)
	AppendChat(ctx context.Context, roomID, senderID, senderName, text string) (domain.ChatMessage, error)
}

// DeviceStore: персистентный статус устройств (service.DeviceService).
type DeviceStore interface {
	SetOnline(ctx context.Context, deviceID string) error
	SetOffline(ctx context.Context, deviceID string) error
}

// Coordinator владеет реестрами комнат и устройств. Создаётся в main,
// Close вызывается при остановке сервиса.
type Coordinator struct {
	rooms   *Hub
	devices *DeviceRegistry

	roomStore   RoomStore
	deviceStore DeviceStore

	// join/leave одной комнаты и bind/unbind одного устройства
	// не должны перемежаться на время I/O хранилища
	roomLocks   *locker.Locker
	deviceLocks *locker.Locker

	mu       sync.Mutex
	sessions map[*Session]struct{}
	closed   bool
	// Add в Attach, Done в конце Detach; Close ждёт всех
	active sync.WaitGroup
}

func NewCoordinator(rooms RoomStore, devices DeviceStore) *Coordinator {
	return &Coordinator{
		rooms:       NewHub(),
		devices:     NewDeviceRegistry(),
		roomStore:   rooms,
		deviceStore: devices,
		roomLocks:   locker.New(),
		deviceLocks: locker.New(),
		sessions:    make(map[*Session]struct{}),
	}
}

// Attach регистрирует соединение: комната сразу выполняет join,
// устройство привязывается к своему deviceId.
func (c *Coordinator) Attach(ctx context.Context, conn Conn, ident Identity) (*Session, error) {
	log := logger.FromContext(ctx).With("conn", uuid.NewString()[:8], "role", ident.Role.String())
	switch ident.Role {
	case RoleRoom:
		log = log.With("room", ident.RoomID, "participant", ident.Participant.ID)
	case RoleDevice:
		log = log.With("device", ident.DeviceID)
	}
	s := newSession(conn, ident, log)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrCoordinatorClosed
	}
	c.sessions[s] = struct{}{}
	c.active.Add(1)
	c.mu.Unlock()
	metrics.Connections.WithLabelValues(ident.Role.String()).Inc()

	log.Info("ws connected")
	switch ident.Role {
	case RoleRoom:
		c.join(ctx, s)
	case RoleDevice:
		c.bindDevice(ctx, s, ident.DeviceID)
	}
	return s, nil
}

// Detach вызывается после закрытия сокета.
func (c *Coordinator) Detach(ctx context.Context, s *Session) {
	defer c.active.Done()

	switch s.ident.Role {
	case RoleRoom:
		c.leave(ctx, s)
	case RoleDevice:
		c.unbindDevice(ctx, s)
	}

	c.mu.Lock()
	delete(c.sessions, s)
	c.mu.Unlock()
	metrics.Connections.WithLabelValues(s.ident.Role.String()).Dec()

	s.log.Info("ws disconnected")
}

// Close закрывает все живые соединения и ждёт, пока каждое пройдёт Detach
// (leave и offline записаны в хранилище). Ожидание ограничено ctx.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	sessions := make([]*Session, 0, len(c.sessions))
	for s := range c.sessions {
		sessions = append(sessions, s)
	}
	c.mu.Unlock()

	for _, s := range sessions {
		_ = s.Close()
	}

	drained := make(chan struct{})
	go func() {
		c.active.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		slog.Info("coordinator closed", "connections", len(sessions))
		return nil
	case <-ctx.Done():
		return fmt.Errorf("coordinator drain: %w", ctx.Err())
	}
}

func (c *Coordinator) Rooms() []RoomSnapshot { return c.rooms.Snapshot() }

type Stats struct {
	Rooms       int `json:"rooms"`
	Devices     int `json:"devices"`
	Connections int `json:"connections"`
}

func (c *Coordinator) Stats() Stats {
	c.mu.Lock()
	n := len(c.sessions)
	c.mu.Unlock()
	return Stats{Rooms: c.rooms.Len(), Devices: c.devices.Len(), Connections: n}
}

// storeFailure: ошибки хранилища логируются и проглатываются,
// в силе остаётся состояние в памяти.
func storeFailure(log *slog.Logger, op string, err error) {
	metrics.StoreFailures.WithLabelValues(op).Inc()
	log.Error("store failure, continuing with in-memory state", "op", op, "err", err)
}

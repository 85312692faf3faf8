package ws

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cwrk-planet/call-service/internal/domain"
)

type Role uint8

const (
	RoleRoom Role = iota + 1
	RoleDevice
)

func (r Role) String() string {
	switch r {
	case RoleRoom:
		return "room"
	case RoleDevice:
		return "device"
	default:
		return "unknown"
	}
}

// Identity: результат классификации handshake.
type Identity struct {
	Role        Role
	RoomID      string
	Participant domain.ParticipantInfo
	DeviceID    string
}

// Session: состояние одного соединения внутри координатора.
// Роль не меняется, deviceId может быть перепривязан сообщением register.
type Session struct {
	Conn

	ident Identity
	log   *slog.Logger

	// seated: соединение занимает место в комнате. Сброс true -> false
	// выполняется ровно один раз на каждое место, это и есть защита от двойного leave.
	seated atomic.Bool

	mu       sync.RWMutex
	deviceID string
}

func newSession(conn Conn, ident Identity, log *slog.Logger) *Session {
	return &Session{
		Conn:     conn,
		ident:    ident,
		log:      log,
		deviceID: ident.DeviceID,
	}
}

func (s *Session) Identity() Identity { return s.ident }

func (s *Session) Seated() bool { return s.seated.Load() }

func (s *Session) DeviceID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.deviceID
}

func (s *Session) setDeviceID(id string) {
	s.mu.Lock()
	s.deviceID = id
	s.mu.Unlock()
}

func (s *Session) peerInfo() PeerInfo {
	return PeerInfo{
		ParticipantID:   s.ident.Participant.ID,
		ParticipantName: s.ident.Participant.Name,
		Role:            s.ident.Participant.Role,
	}
}

// send: best-effort, закрытые соединения пропускаются.
func (s *Session) send(msg any) bool {
	if !s.Open() {
		return false
	}
	if err := s.Send(msg); err != nil {
		s.log.Debug("ws send failed", "err", err)
		return false
	}
	return true
}

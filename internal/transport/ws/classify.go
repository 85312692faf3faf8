package ws

import (
	"errors"
	"net/url"
	"strings"

	"github.com/cwrk-planet/call-service/internal/domain"

	"github.com/google/uuid"
)

var ErrUnclassified = errors.New("handshake has neither roomId nor deviceId")

const defaultParticipantName = "Anonymous"

// Classify разбирает query handshake: roomId -> комната, иначе deviceId -> устройство.
func Classify(q url.Values) (Identity, error) {
	if roomID := strings.TrimSpace(q.Get("roomId")); roomID != "" {
		return Identity{
			Role:   RoleRoom,
			RoomID: roomID,
			Participant: domain.ParticipantInfo{
				ID:   participantID(q.Get("participantId")),
				Name: participantName(q.Get("participantName")),
				Role: participantRole(q.Get("role")),
			},
		}, nil
	}

	if deviceID := strings.TrimSpace(q.Get("deviceId")); deviceID != "" {
		return Identity{Role: RoleDevice, DeviceID: deviceID}, nil
	}

	return Identity{}, ErrUnclassified
}

func participantID(raw string) string {
	if id := strings.TrimSpace(raw); id != "" {
		return id
	}
	return uuid.NewString()
}

// Клиенты кодируют имя через encodeURIComponent поверх query-кодирования,
// поэтому декодируем ещё раз. PathUnescape не превращает '+' в пробел.
func participantName(raw string) string {
	name := raw
	if dec, err := url.PathUnescape(raw); err == nil {
		name = dec
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return defaultParticipantName
	}
	return name
}

func participantRole(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), domain.RoleAdmin) {
		return domain.RoleAdmin
	}
	return domain.RoleUser
}

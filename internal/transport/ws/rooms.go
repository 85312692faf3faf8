package ws

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/metrics"
)

func (c *Coordinator) join(ctx context.Context, s *Session) {
	if s.seated.Load() {
		s.log.Debug("join-room ignored, already seated")
		return
	}

	roomID, p := s.ident.RoomID, s.ident.Participant
	c.roomLocks.Lock(roomID)
	defer c.roomLocks.Unlock(roomID)

	if !c.rooms.CanSeat(roomID, p.ID) {
		c.rejectFull(s)
		return
	}

	room, err := c.roomStore.Join(ctx, roomID, p)
	if err != nil {
		storeFailure(s.log, "join", err)
	}

	n, ok := c.rooms.Seat(roomID, s)
	if !ok {
		c.rejectFull(s)
		return
	}
	s.seated.Store(true)

	switch PhaseOf(n) {
	case PhaseWaiting:
		s.send(RoomStatusMessage{
			Type:      TypeRoomStatus,
			Status:    StatusWaiting,
			RoomID:    roomID,
			SessionID: sessionOf(room),
		})
		s.send(chatHistory(roomID, room))

	case PhaseReady:
		if activated, err := c.roomStore.Activate(ctx, roomID); err != nil {
			storeFailure(s.log, "activate", err)
		} else {
			room = activated
		}

		var other *Session
		if peers := c.rooms.Peers(roomID, s); len(peers) > 0 {
			other = peers[0]
		}
		status := RoomStatusMessage{
			Type:      TypeRoomStatus,
			Status:    StatusReady,
			RoomID:    roomID,
			SessionID: sessionOf(room),
		}
		if other != nil {
			info := other.peerInfo()
			status.OtherParticipant = &info
		}
		s.send(status)
		s.send(chatHistory(roomID, room))

		if other != nil {
			other.send(ParticipantJoinedMessage{Type: TypeParticipantJoined, PeerInfo: s.peerInfo()})
		}
	}
	s.log.Info("participant joined", "occupants", n)
}

func (c *Coordinator) rejectFull(s *Session) {
	metrics.RoomFull.Inc()
	s.log.Info("room is full, join rejected")
	s.send(RoomStatusMessage{Type: TypeRoomStatus, Status: StatusFull, RoomID: s.ident.RoomID})
}

// leave выполняется не более одного раза на занятое место.
func (c *Coordinator) leave(ctx context.Context, s *Session) {
	if !s.seated.CompareAndSwap(true, false) {
		return
	}

	roomID, p := s.ident.RoomID, s.ident.Participant
	c.roomLocks.Lock(roomID)
	defer c.roomLocks.Unlock(roomID)

	remaining, removed := c.rooms.Unseat(roomID, s)
	if !removed {
		// место уже занято новым соединением с тем же participantId
		s.log.Debug("leave skipped, connection was replaced")
		return
	}

	if _, err := c.roomStore.Leave(ctx, roomID, p.ID, PhaseOf(remaining) == PhaseEmpty); err != nil {
		storeFailure(s.log, "leave", err)
	}

	c.rooms.Broadcast(roomID, s, ParticipantLeftMessage{Type: TypeParticipantLeft, ParticipantID: p.ID})
	s.log.Info("participant left", "occupants", remaining)
}

// holdsSeat: соединение занимает место и не вытеснено новым с тем же participantId.
func (c *Coordinator) holdsSeat(s *Session) bool {
	return s.seated.Load() && c.rooms.Member(s.ident.RoomID, s.ident.Participant.ID) == s
}

func (c *Coordinator) chat(ctx context.Context, s *Session, data []byte) {
	if !c.holdsSeat(s) {
		s.log.Debug("chat from connection without a seat ignored")
		return
	}
	var in chatIn
	if err := json.Unmarshal(data, &in); err != nil {
		s.log.Warn("malformed chat-message", "err", err)
		return
	}
	text := strings.TrimSpace(in.text())
	if text == "" {
		s.log.Debug("empty chat-message ignored")
		return
	}

	roomID, p := s.ident.RoomID, s.ident.Participant
	msg, err := c.roomStore.AppendChat(ctx, roomID, p.ID, p.Name, text)
	if err != nil {
		storeFailure(s.log, "chat", err)
	}
	if c.rooms.Broadcast(roomID, s, chatOut(roomID, msg)) > 0 {
		metrics.Relayed.WithLabelValues(KindChatMessage.String()).Inc()
	}
}

// relaySignal пересылает webrtc-* как есть, содержимое не разбирается.
func (c *Coordinator) relaySignal(s *Session, kind Kind, data []byte) {
	if !c.holdsSeat(s) {
		s.log.Debug("signal from connection without a seat ignored")
		return
	}
	if c.rooms.Broadcast(s.ident.RoomID, s, json.RawMessage(data)) > 0 {
		metrics.Relayed.WithLabelValues(kind.String()).Inc()
	}
}

func (c *Coordinator) adminControl(s *Session, data []byte) {
	if !s.ident.Participant.IsAdmin() {
		s.log.Warn("admin-control-media from non-admin")
		s.send(errorMsg("only admin can control participant media"))
		return
	}
	var in adminControlIn
	if err := json.Unmarshal(data, &in); err != nil {
		s.log.Warn("malformed admin-control-media", "err", err)
		return
	}
	if !c.holdsSeat(s) {
		return
	}

	target := c.rooms.Member(s.ident.RoomID, in.TargetParticipantID)
	if target == nil {
		s.log.Debug("admin-control-media target not connected", "target", in.TargetParticipantID)
		return
	}
	if target.send(AdminControlMessage{
		Type:                TypeAdminControlMedia,
		TargetParticipantID: in.TargetParticipantID,
		MediaType:           in.MediaType,
		Enabled:             in.Enabled,
		FromAdmin:           s.ident.Participant.ID,
	}) {
		metrics.Relayed.WithLabelValues(KindAdminControlMedia.String()).Inc()
	}
}

func sessionOf(room *domain.Room) string {
	if room == nil {
		return ""
	}
	return room.SessionID
}

func chatOut(roomID string, m domain.ChatMessage) ChatMessageOut {
	return ChatMessageOut{
		Type:            TypeChatMessage,
		ID:              m.ID,
		RoomID:          roomID,
		ParticipantID:   m.SenderID,
		ParticipantName: m.SenderName,
		Message:         m.Text,
		Timestamp:       m.CreatedAt.UnixMilli(),
	}
}

// chatHistory: сообщения текущей сессии. Без документа история пустая.
func chatHistory(roomID string, room *domain.Room) ChatHistoryMessage {
	out := ChatHistoryMessage{Type: TypeChatHistory, RoomID: roomID, Messages: []ChatMessageOut{}}
	if room == nil {
		return out
	}
	for _, m := range room.CurrentChat() {
		out.Messages = append(out.Messages, chatOut(roomID, m))
	}
	return out
}

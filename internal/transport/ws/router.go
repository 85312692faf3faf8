package ws

import (
	"context"
	"encoding/json"

	"github.com/cwrk-planet/call-service/internal/metrics"
)

// Handle разбирает одно входящее сообщение и доводит его обработку до конца.
// Битый JSON логируется, соединение остаётся открытым.
func (c *Coordinator) Handle(ctx context.Context, s *Session, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		s.log.Warn("malformed message", "err", err)
		return
	}
	kind := ParseKind(env.Type)
	metrics.Inbound.WithLabelValues(s.ident.Role.String(), kind.String()).Inc()

	switch s.ident.Role {
	case RoleRoom:
		c.handleRoom(ctx, s, kind, env.Type, data)
	case RoleDevice:
		c.handleDevice(ctx, s, kind, env.Type, data)
	}
}

func (c *Coordinator) handleRoom(ctx context.Context, s *Session, kind Kind, raw string, data []byte) {
	switch kind {
	case KindJoinRoom:
		c.join(ctx, s)
	case KindLeaveRoom:
		c.leave(ctx, s)
	case KindChatMessage:
		c.chat(ctx, s, data)
	case KindWebRTCOffer, KindWebRTCAnswer, KindWebRTCIceCandidate:
		c.relaySignal(s, kind, data)
	case KindAdminControlMedia:
		c.adminControl(s, data)
	case KindRegister, KindCallInitiate, KindCallAccept, KindCallReject, KindCallEnd, KindUnknown:
		s.log.Debug("message ignored", "type", raw)
	}
}

func (c *Coordinator) handleDevice(ctx context.Context, s *Session, kind Kind, raw string, data []byte) {
	switch kind {
	case KindRegister:
		c.register(ctx, s, data)
	case KindCallInitiate, KindCallAccept, KindCallReject, KindCallEnd,
		KindChatMessage, KindWebRTCOffer, KindWebRTCAnswer, KindWebRTCIceCandidate:
		c.forward(s, kind, data)
	case KindJoinRoom, KindLeaveRoom, KindAdminControlMedia, KindUnknown:
		s.log.Debug("message ignored", "type", raw)
	}
}

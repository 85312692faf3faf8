package ws

import "strings"

// Kind: закрытый набор входящих типов сообщений.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindJoinRoom
	KindLeaveRoom
	KindChatMessage
	KindWebRTCOffer
	KindWebRTCAnswer
	KindWebRTCIceCandidate
	KindAdminControlMedia
	KindRegister
	KindCallInitiate
	KindCallAccept
	KindCallReject
	KindCallEnd
)

var kindNames = [...]string{
	KindUnknown:            "unknown",
	KindJoinRoom:           "join-room",
	KindLeaveRoom:          "leave-room",
	KindChatMessage:        "chat-message",
	KindWebRTCOffer:        "webrtc-offer",
	KindWebRTCAnswer:       "webrtc-answer",
	KindWebRTCIceCandidate: "webrtc-ice-candidate",
	KindAdminControlMedia:  "admin-control-media",
	KindRegister:           "register",
	KindCallInitiate:       "call-initiate",
	KindCallAccept:         "call-accept",
	KindCallReject:         "call-reject",
	KindCallEnd:            "call-end",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, name := range kindNames {
		if Kind(k) != KindUnknown {
			m[name] = Kind(k)
		}
	}
	return m
}()

func ParseKind(s string) Kind {
	if k, ok := kindByName[strings.TrimSpace(s)]; ok {
		return k
	}
	return KindUnknown
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindUnknown]
}

// Исходящие типы
const (
	TypeRoomStatus        = "room-status"
	TypeChatHistory       = "chat-history"
	TypeParticipantJoined = "participant-joined"
	TypeParticipantLeft   = "participant-left"
	TypeChatMessage       = "chat-message"
	TypeAdminControlMedia = "admin-control-media"
	TypeRegistered        = "registered"
	TypeError             = "error"
)

type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusReady   RoomStatus = "ready"
	StatusFull    RoomStatus = "full"
)

type envelope struct {
	Type string `json:"type"`
}

type chatIn struct {
	Message string `json:"message"`
	Text    string `json:"text"`
}

func (c chatIn) text() string {
	if c.Message != "" {
		return c.Message
	}
	return c.Text
}

type adminControlIn struct {
	TargetParticipantID string `json:"targetParticipantId"`
	MediaType           string `json:"mediaType"`
	Enabled             bool   `json:"enabled"`
}

type registerIn struct {
	DeviceID string `json:"deviceId"`
}

type PeerInfo struct {
	ParticipantID   string `json:"participantId"`
	ParticipantName string `json:"participantName"`
	Role            string `json:"role"`
}

type RoomStatusMessage struct {
	Type             string     `json:"type"`
	Status           RoomStatus `json:"status"`
	RoomID           string     `json:"roomId"`
	SessionID        string     `json:"sessionId,omitempty"`
	OtherParticipant *PeerInfo  `json:"otherParticipant,omitempty"`
}

type ChatMessageOut struct {
	Type            string `json:"type"`
	ID              string `json:"id"`
	RoomID          string `json:"roomId"`
	ParticipantID   string `json:"participantId"`
	ParticipantName string `json:"participantName"`
	Message         string `json:"message"`
	Timestamp       int64  `json:"timestamp"`
}

type ChatHistoryMessage struct {
	Type     string           `json:"type"`
	RoomID   string           `json:"roomId"`
	Messages []ChatMessageOut `json:"messages"`
}

type ParticipantJoinedMessage struct {
	Type string `json:"type"`
	PeerInfo
}

type ParticipantLeftMessage struct {
	Type          string `json:"type"`
	ParticipantID string `json:"participantId"`
}

type AdminControlMessage struct {
	Type                string `json:"type"`
	TargetParticipantID string `json:"targetParticipantId"`
	MediaType           string `json:"mediaType"`
	Enabled             bool   `json:"enabled"`
	FromAdmin           string `json:"fromAdmin"`
}

type RegisteredMessage struct {
	Type     string `json:"type"`
	DeviceID string `json:"deviceId"`
}

type ErrorMessage struct {
	Type           string `json:"type"`
	Message        string `json:"message"`
	TargetDeviceID string `json:"targetDeviceId,omitempty"`
}

func errorMsg(text string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: text}
}

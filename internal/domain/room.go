package domain

import (
	"fmt"
	"time"
)

type RoomStatus string

const (
	RoomWaiting RoomStatus = "waiting"
	RoomActive  RoomStatus = "active"
	RoomEnded   RoomStatus = "ended"
)

// Room: персистентный документ комнаты. Чат не очищается при рестарте сессии,
// сообщения размечены SessionID и CurrentChat отдаёт только текущую сессию.
type Room struct {
	RoomID         string        `json:"roomId"`
	SessionID      string        `json:"sessionId"`
	Creator        string        `json:"creator"`
	Status         RoomStatus    `json:"status"`
	Participants   []Participant `json:"participants"`
	CallStartTime  *time.Time    `json:"callStartTime,omitempty"`
	CallEndTime    *time.Time    `json:"callEndTime,omitempty"`
	CallDuration   int64         `json:"callDuration"`
	ChatMessages   []ChatMessage `json:"chatMessages"`
	Recordings     []Recording   `json:"recordings"`
	ReconnectCount int           `json:"reconnectCount"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

func NewSessionID(roomID string, now time.Time) string {
	return fmt.Sprintf("%s-%d", roomID, now.UnixMilli())
}

// NewRoom создаёт комнату в статусе waiting с создателем в качестве первого участника.
func NewRoom(roomID string, creator ParticipantInfo, now time.Time) *Room {
	now = now.UTC()
	r := &Room{
		RoomID:    roomID,
		SessionID: NewSessionID(roomID, now),
		Creator:   creator.ID,
		Status:    RoomWaiting,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.AddParticipant(creator, now)
	return r
}

func (r *Room) participant(id string) *Participant {
	for i := range r.Participants {
		if r.Participants[i].ID == id {
			return &r.Participants[i]
		}
	}
	return nil
}

func (r *Room) HasParticipant(id string) bool { return r.participant(id) != nil }

// AddParticipant добавляет участника, если его ещё нет. Повторный вход считается
// переподключением и увеличивает ReconnectCount.
func (r *Room) AddParticipant(p ParticipantInfo, now time.Time) bool {
	if r.HasParticipant(p.ID) {
		r.ReconnectCount++
		return false
	}
	r.Participants = append(r.Participants, Participant{
		ID:       p.ID,
		Name:     p.Name,
		Role:     p.Role,
		JoinedAt: now.UTC(),
	})
	r.UpdatedAt = now.UTC()
	return true
}

// RemoveParticipant проставляет leftAt один раз, повторные вызовы ничего не меняют.
func (r *Room) RemoveParticipant(id string, now time.Time) bool {
	p := r.participant(id)
	if p == nil || p.LeftAt != nil {
		return false
	}
	t := now.UTC()
	p.LeftAt = &t
	r.UpdatedAt = t
	return true
}

func (r *Room) AddChatMessage(senderID, senderName, text string, now time.Time) ChatMessage {
	m := NewChatMessage(senderID, senderName, text, now)
	m.SessionID = r.SessionID
	r.ChatMessages = append(r.ChatMessages, m)
	r.UpdatedAt = m.CreatedAt
	return m
}

// CurrentChat возвращает сообщения текущей сессии в порядке добавления.
func (r *Room) CurrentChat() []ChatMessage {
	out := make([]ChatMessage, 0, len(r.ChatMessages))
	for _, m := range r.ChatMessages {
		if m.SessionID == r.SessionID {
			out = append(out, m)
		}
	}
	return out
}

// Start переводит waiting -> active.
func (r *Room) Start(now time.Time) error {
	if r.Status != RoomWaiting {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, RoomActive)
	}
	t := now.UTC()
	r.CallStartTime = &t
	r.Status = RoomActive
	r.UpdatedAt = t
	return nil
}

// End переводит active -> ended и считает длительность.
func (r *Room) End(now time.Time) error {
	if r.Status != RoomActive {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, RoomEnded)
	}
	t := now.UTC()
	r.CallEndTime = &t
	r.CalculateDuration()
	r.Status = RoomEnded
	r.UpdatedAt = t
	return nil
}

// CalculateDuration: целые секунды между началом и концом звонка, не меньше нуля.
func (r *Room) CalculateDuration() int64 {
	if r.CallStartTime == nil || r.CallEndTime == nil {
		r.CallDuration = 0
		return 0
	}
	d := int64(r.CallEndTime.Sub(*r.CallStartTime) / time.Second)
	if d < 0 {
		d = 0
	}
	r.CallDuration = d
	return d
}

// Restart начинает новую сессию после ended.
func (r *Room) Restart(now time.Time) {
	now = now.UTC()
	sid := NewSessionID(r.RoomID, now)
	if sid == r.SessionID {
		sid = NewSessionID(r.RoomID, now.Add(time.Millisecond))
	}
	r.SessionID = sid
	r.Participants = nil
	r.CallStartTime = nil
	r.CallEndTime = nil
	r.CallDuration = 0
	r.ReconnectCount = 0
	r.Status = RoomWaiting
	r.UpdatedAt = now
}

// CallRecord снимок завершённой сессии для архива.
func (r *Room) CallRecord() CallRecord {
	rec := CallRecord{
		RoomID:       r.RoomID,
		SessionID:    r.SessionID,
		DurationSec:  r.CallDuration,
		Participants: append([]Participant(nil), r.Participants...),
		ChatCount:    len(r.CurrentChat()),
	}
	if r.CallStartTime != nil {
		rec.StartedAt = *r.CallStartTime
	}
	if r.CallEndTime != nil {
		rec.EndedAt = *r.CallEndTime
	}
	return rec
}

// Clone глубокая копия, хранилища отдают и принимают копии.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Participants = make([]Participant, len(r.Participants))
	for i, p := range r.Participants {
		if p.LeftAt != nil {
			t := *p.LeftAt
			p.LeftAt = &t
		}
		cp.Participants[i] = p
	}
	cp.ChatMessages = append([]ChatMessage(nil), r.ChatMessages...)
	cp.Recordings = append([]Recording(nil), r.Recordings...)
	if r.CallStartTime != nil {
		t := *r.CallStartTime
		cp.CallStartTime = &t
	}
	if r.CallEndTime != nil {
		t := *r.CallEndTime
		cp.CallEndTime = &t
	}
	return &cp
}

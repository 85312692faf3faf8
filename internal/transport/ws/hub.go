package ws

import (
	"sort"
	"sync"

	"github.com/cwrk-planet/call-service/internal/metrics"
)

type liveRoom struct {
	order   []string // participantId в порядке входа
	members map[string]*Session
}

func (r *liveRoom) remove(id string) {
	delete(r.members, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// Hub: реестр живых комнат: roomId -> participantId -> Session.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*liveRoom
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*liveRoom)}
}

// CanSeat проверяет вместимость комнаты для participantID.
func (h *Hub) CanSeat(roomID, participantID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rooms[roomID]
	if !ok {
		return true
	}
	_, present := r.members[participantID]
	return CanSeat(len(r.members), present)
}

// Seat регистрирует сессию под её participantId. Старое соединение с тем же
// id заменяется без закрытия. Возвращает число участников после посадки.
func (h *Hub) Seat(roomID string, s *Session) (int, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		r = &liveRoom{members: make(map[string]*Session, RoomCapacity)}
		h.rooms[roomID] = r
		metrics.LiveRooms.Set(float64(len(h.rooms)))
	}

	id := s.ident.Participant.ID
	if _, present := r.members[id]; present {
		r.members[id] = s
		return len(r.members), true
	}
	if !CanSeat(len(r.members), false) {
		return len(r.members), false
	}
	r.members[id] = s
	r.order = append(r.order, id)
	return len(r.members), true
}

// Unseat удаляет сессию, только если под её id зарегистрирована именно она.
// Пустая комната удаляется из реестра.
func (h *Hub) Unseat(roomID string, s *Session) (remaining int, removed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[roomID]
	if !ok {
		return 0, false
	}
	id := s.ident.Participant.ID
	if r.members[id] != s {
		return len(r.members), false
	}
	r.remove(id)
	if len(r.members) == 0 {
		delete(h.rooms, roomID)
		metrics.LiveRooms.Set(float64(len(h.rooms)))
	}
	return len(r.members), true
}

func (h *Hub) Member(roomID, participantID string) *Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if r, ok := h.rooms[roomID]; ok {
		return r.members[participantID]
	}
	return nil
}

// Peers: снимок участников комнаты кроме except, в порядке входа.
func (h *Hub) Peers(roomID string, except *Session) []*Session {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rooms[roomID]
	if !ok {
		return nil
	}
	out := make([]*Session, 0, len(r.members))
	for _, id := range r.order {
		if s := r.members[id]; s != except {
			out = append(out, s)
		}
	}
	return out
}

// Broadcast рассылает msg всем участникам кроме except. Запись идёт вне
// блокировки реестра, закрытые соединения пропускаются.
func (h *Hub) Broadcast(roomID string, except *Session, msg any) int {
	sent := 0
	for _, s := range h.Peers(roomID, except) {
		if s.send(msg) {
			sent++
		}
	}
	return sent
}

func (h *Hub) Count(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if r, ok := h.rooms[roomID]; ok {
		return len(r.members)
	}
	return 0
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

type RoomSnapshot struct {
	RoomID       string     `json:"roomId"`
	Phase        string     `json:"phase"`
	Participants []PeerInfo `json:"participants"`
}

func (h *Hub) Snapshot() []RoomSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]RoomSnapshot, 0, len(h.rooms))
	for id, r := range h.rooms {
		snap := RoomSnapshot{
			RoomID:       id,
			Phase:        PhaseOf(len(r.members)).String(),
			Participants: make([]PeerInfo, 0, len(r.order)),
		}
		for _, pid := range r.order {
			snap.Participants = append(snap.Participants, r.members[pid].peerInfo())
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomID < out[j].RoomID })
	return out
}

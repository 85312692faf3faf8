package ws

import (
	"testing"

	"github.com/cwrk-planet/call-service/internal/domain"
)

func roomSession(id string) (*Session, *fakeConn) {
	conn := &fakeConn{}
	return newSession(conn, Identity{
		Role:        RoleRoom,
		RoomID:      "R1",
		Participant: domain.ParticipantInfo{ID: id, Name: id, Role: domain.RoleUser},
	}, discardLogger()), conn
}

func TestHub_SeatAndCapacity(t *testing.T) {
	h := NewHub()
	a, _ := roomSession("a")
	b, _ := roomSession("b")
	c, _ := roomSession("c")

	if n, ok := h.Seat("R1", a); !ok || n != 1 {
		t.Fatalf("seat a: n=%d ok=%v", n, ok)
	}
	if n, ok := h.Seat("R1", b); !ok || n != 2 {
		t.Fatalf("seat b: n=%d ok=%v", n, ok)
	}
	if h.CanSeat("R1", "c") {
		t.Fatal("third participant must not fit")
	}
	if n, ok := h.Seat("R1", c); ok || n != 2 {
		t.Fatalf("seat c: n=%d ok=%v", n, ok)
	}
	if !h.CanSeat("R1", "a") {
		t.Fatal("seated participant must be able to rejoin")
	}

	a2, _ := roomSession("a")
	if n, ok := h.Seat("R1", a2); !ok || n != 2 || h.Member("R1", "a") != a2 {
		t.Fatalf("replace a: n=%d ok=%v", n, ok)
	}
}

func TestHub_UnseatCompareAndDelete(t *testing.T) {
	h := NewHub()
	a, _ := roomSession("a")
	a2, _ := roomSession("a")
	h.Seat("R1", a)
	h.Seat("R1", a2)

	if _, removed := h.Unseat("R1", a); removed {
		t.Fatal("stale session removed the live entry")
	}
	if rem, removed := h.Unseat("R1", a2); !removed || rem != 0 {
		t.Fatalf("unseat a2: rem=%d removed=%v", rem, removed)
	}
	if h.Len() != 0 {
		t.Fatal("empty room not deleted")
	}
}

func TestHub_BroadcastSkipsSenderAndClosed(t *testing.T) {
	h := NewHub()
	a, connA := roomSession("a")
	b, connB := roomSession("b")
	h.Seat("R1", a)
	h.Seat("R1", b)

	if n := h.Broadcast("R1", a, map[string]string{"type": "x"}); n != 1 {
		t.Fatalf("sent = %d, want 1", n)
	}
	if len(connA.all()) != 0 || len(connB.all()) != 1 {
		t.Fatal("broadcast must exclude the sender")
	}

	_ = connB.Close()
	if n := h.Broadcast("R1", a, map[string]string{"type": "x"}); n != 0 {
		t.Fatalf("sent to closed connection: %d", n)
	}
}

func TestHub_Snapshot(t *testing.T) {
	h := NewHub()
	a, _ := roomSession("a")
	b, _ := roomSession("b")
	h.Seat("R1", a)
	h.Seat("R1", b)

	snap := h.Snapshot()
	if len(snap) != 1 || snap[0].Phase != "ready" || len(snap[0].Participants) != 2 || snap[0].Participants[0].ParticipantID != "a" {
		t.Fatalf("snapshot = %+v", snap)
	}
}

func TestDeviceRegistry(t *testing.T) {
	r := NewDeviceRegistry()
	s1 := newSession(&fakeConn{}, Identity{Role: RoleDevice, DeviceID: "D1"}, discardLogger())
	s2 := newSession(&fakeConn{}, Identity{Role: RoleDevice, DeviceID: "D1"}, discardLogger())

	if prev := r.Bind("D1", s1); prev != nil {
		t.Fatal("unexpected previous binding")
	}
	if prev := r.Bind("D1", s2); prev != s1 {
		t.Fatal("expected s1 to be replaced")
	}
	if r.Unbind("D1", s1) {
		t.Fatal("stale unbind succeeded")
	}
	if !r.Unbind("D1", s2) || r.Len() != 0 {
		t.Fatal("unbind failed")
	}
}

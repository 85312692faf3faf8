package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/memstore"
	"github.com/cwrk-planet/call-service/internal/service"
)

type fakeConn struct {
	mu     sync.Mutex
	msgs   []json.RawMessage
	closed bool

	// onClose вызывается один раз, как завершение read loop у настоящего сокета
	onClose func()
}

func (f *fakeConn) Send(msg any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrConnClosed
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	f.msgs = append(f.msgs, b)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	first := !f.closed
	f.closed = true
	hook := f.onClose
	f.mu.Unlock()

	if first && hook != nil {
		hook()
	}
	return nil
}

func (f *fakeConn) Open() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

func (f *fakeConn) all() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]map[string]any, 0, len(f.msgs))
	for _, b := range f.msgs {
		var m map[string]any
		_ = json.Unmarshal(b, &m)
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) types() []string {
	var out []string
	for _, m := range f.all() {
		t, _ := m["type"].(string)
		out = append(out, t)
	}
	return out
}

func (f *fakeConn) ofType(typ string) []map[string]any {
	var out []map[string]any
	for _, m := range f.all() {
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	f.msgs = nil
	f.mu.Unlock()
}

type fixture struct {
	coord   *Coordinator
	rooms   *memstore.RoomStore
	devices *memstore.DeviceStore
	calls   *memstore.CallHistory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rooms:   memstore.NewRoomStore(),
		devices: memstore.NewDeviceStore(),
		calls:   memstore.NewCallHistory(),
	}
	f.coord = NewCoordinator(
		service.NewRoomService(f.rooms, f.calls, nil),
		service.NewDeviceService(f.devices, nil),
	)
	return f
}

func (f *fixture) attachRoom(t *testing.T, roomID, id, name, role string) (*Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	s, err := f.coord.Attach(context.Background(), conn, Identity{
		Role:        RoleRoom,
		RoomID:      roomID,
		Participant: domain.ParticipantInfo{ID: id, Name: name, Role: role},
	})
	if err != nil {
		t.Fatalf("attach %s: %v", id, err)
	}
	return s, conn
}

func (f *fixture) attachDevice(t *testing.T, id string) (*Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	s, err := f.coord.Attach(context.Background(), conn, Identity{Role: RoleDevice, DeviceID: id})
	if err != nil {
		t.Fatalf("attach device %s: %v", id, err)
	}
	return s, conn
}

func (f *fixture) send(s *Session, msg string) {
	f.coord.Handle(context.Background(), s, []byte(msg))
}

// disconnect повторяет то, что делает HandleWS при закрытии сокета.
func (f *fixture) disconnect(s *Session) {
	_ = s.Close()
	f.coord.Detach(context.Background(), s)
}

func (f *fixture) storedRoom(t *testing.T, roomID string) *domain.Room {
	t.Helper()
	r, err := f.rooms.FindByRoomID(context.Background(), roomID)
	if err != nil {
		t.Fatalf("find %s: %v", roomID, err)
	}
	return r
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// serve подключает соединение так, как это делает HandleWS: после закрытия
// сокета Detach выполняется в отдельной горутине.
func serve(t *testing.T, coord *Coordinator, ident Identity) (*Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	s, err := coord.Attach(context.Background(), conn, ident)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}
	conn.mu.Lock()
	conn.onClose = func() { go coord.Detach(context.Background(), s) }
	conn.mu.Unlock()
	return s, conn
}

func roomIdent(roomID, id string) Identity {
	return Identity{
		Role:        RoleRoom,
		RoomID:      roomID,
		Participant: domain.ParticipantInfo{ID: id, Name: id, Role: domain.RoleUser},
	}
}

// slowRooms задерживает Leave, как медленное хранилище при остановке.
type slowRooms struct {
	RoomStore
	delay time.Duration
}

func (s slowRooms) Leave(ctx context.Context, roomID, participantID string, roomEmpty bool) (*domain.Room, error) {
	time.Sleep(s.delay)
	return s.RoomStore.Leave(ctx, roomID, participantID, roomEmpty)
}

// gatedDevices сообщает о входе в SetOffline и задерживает запись.
type gatedDevices struct {
	DeviceStore
	entered chan struct{}
	once    sync.Once
	delay   time.Duration
}

func (g *gatedDevices) SetOffline(ctx context.Context, deviceID string) error {
	g.once.Do(func() { close(g.entered) })
	time.Sleep(g.delay)
	return g.DeviceStore.SetOffline(ctx, deviceID)
}

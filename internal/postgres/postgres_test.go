package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/pagination"
)

func TestMigrationFiles_Ordered(t *testing.T) {
	names, err := migrationFiles()
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(names) < 2 {
		t.Fatalf("expected embedded migrations, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("migrations not sorted: %v", names)
		}
	}
}

// testDB поднимает пул только если задан POSTGRES_TEST_DSN.
func testDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx := context.Background()
	db, err := New(ctx, Config{DSN: dsn, MaxConns: 2})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)
	if err := Migrate(ctx, db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRoomRepository_RoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := NewRoomRepository(db.Pool)

	roomID := "it-" + time.Now().Format("150405.000000")
	room := domain.NewRoom(roomID, domain.ParticipantInfo{ID: "a", Name: "Alice", Role: domain.RoleUser}, time.Now())
	room.AddChatMessage("a", "Alice", "hello", time.Now())

	if err := repo.Create(ctx, room); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, room); !errors.Is(err, domain.ErrRoomExists) {
		t.Fatalf("duplicate create: err = %v", err)
	}

	_ = room.Start(time.Now())
	if err := repo.Save(ctx, room); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.FindByRoomID(ctx, roomID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Status != domain.RoomActive || got.CallStartTime == nil || len(got.CurrentChat()) != 1 {
		t.Fatalf("unexpected room: %+v", got)
	}

	if _, err := repo.FindByRoomID(ctx, roomID+"-missing"); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("find missing: err = %v", err)
	}
}

func TestDeviceAndCallHistory(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	devices := NewDeviceRepository(db.Pool)
	id := "dev-" + time.Now().Format("150405.000000")
	if err := devices.UpdateStatus(ctx, id, domain.DeviceOnline); err != nil {
		t.Fatalf("update: %v", err)
	}
	d, err := devices.Get(ctx, id)
	if err != nil || d.Status != domain.DeviceOnline {
		t.Fatalf("device = %+v, err = %v", d, err)
	}

	calls := NewCallHistoryRepository(db.Pool)
	now := time.Now().UTC()
	rec := domain.CallRecord{RoomID: id, SessionID: id + "-1", StartedAt: now, EndedAt: now.Add(time.Minute), DurationSec: 60}
	if err := calls.Record(ctx, rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := calls.Record(ctx, rec); err != nil {
		t.Fatalf("record duplicate: %v", err)
	}
	list, err := calls.ListByRoom(ctx, id, nil, 10)
	if err != nil || len(list) != 1 || list[0].DurationSec != 60 {
		t.Fatalf("list = %+v, err = %v", list, err)
	}

	rec2 := rec
	rec2.SessionID = id + "-2"
	rec2.EndedAt = rec.EndedAt.Add(time.Minute)
	if err := calls.Record(ctx, rec2); err != nil {
		t.Fatalf("record second: %v", err)
	}
	page, err := calls.ListByRoom(ctx, id, nil, 1)
	if err != nil || len(page) != 1 || page[0].SessionID != rec2.SessionID {
		t.Fatalf("first page = %+v, err = %v", page, err)
	}
	after := &pagination.Cursor{EndedAt: page[0].EndedAt, SessionID: page[0].SessionID}
	page, err = calls.ListByRoom(ctx, id, after, 1)
	if err != nil || len(page) != 1 || page[0].SessionID != rec.SessionID {
		t.Fatalf("second page = %+v, err = %v", page, err)
	}
}

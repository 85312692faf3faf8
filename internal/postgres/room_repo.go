package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cwrk-planet/call-service/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RoomRepository хранит комнату целиком как JSONB документ,
// session_id и status продублированы колонками для выборок.
type RoomRepository struct {
	db *pgxpool.Pool
}

func NewRoomRepository(db *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) FindByRoomID(ctx context.Context, roomID string) (*domain.Room, error) {
	var doc []byte
	if err := r.db.QueryRow(ctx, queryFindRoom, roomID).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}

	var room domain.Room
	if err := json.Unmarshal(doc, &room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", roomID, err)
	}
	return &room, nil
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	doc, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room: %w", err)
	}
	tag, err := r.db.Exec(ctx, queryCreateRoom,
		room.RoomID, room.SessionID, string(room.Status), doc, room.CreatedAt, room.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRoomExists
	}
	return nil
}

// Save: upsert всего документа.
func (r *RoomRepository) Save(ctx context.Context, room *domain.Room) error {
	doc, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room: %w", err)
	}
	_, err = r.db.Exec(ctx, querySaveRoom,
		room.RoomID, room.SessionID, string(room.Status), doc, room.CreatedAt, room.UpdatedAt)
	return err
}

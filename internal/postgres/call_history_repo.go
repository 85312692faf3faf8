package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/pagination"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CallHistoryRepository struct {
	db *pgxpool.Pool
}

func NewCallHistoryRepository(db *pgxpool.Pool) *CallHistoryRepository {
	return &CallHistoryRepository{db: db}
}

func (r *CallHistoryRepository) Record(ctx context.Context, rec domain.CallRecord) error {
	parts, err := json.Marshal(rec.Participants)
	if err != nil {
		return fmt.Errorf("encode participants: %w", err)
	}
	_, err = r.db.Exec(ctx, queryRecordCall,
		rec.RoomID, rec.SessionID, rec.StartedAt, rec.EndedAt, rec.DurationSec, parts, rec.ChatCount)
	return err
}

// ListByRoom keyset-пагинация по (ended_at, session_id), новые первыми.
func (r *CallHistoryRepository) ListByRoom(ctx context.Context, roomID string, after *pagination.Cursor, limit int) ([]domain.CallRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var endedAt, sessionID any
	if after != nil {
		endedAt = after.EndedAt
		sessionID = after.SessionID
	}
	rows, err := r.db.Query(ctx, queryListCalls, roomID, endedAt, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.CallRecord, 0, limit)
	for rows.Next() {
		var (
			rec   domain.CallRecord
			parts []byte
		)
		if err := rows.Scan(&rec.RoomID, &rec.SessionID, &rec.StartedAt, &rec.EndedAt,
			&rec.DurationSec, &parts, &rec.ChatCount); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(parts, &rec.Participants); err != nil {
			return nil, fmt.Errorf("decode participants: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

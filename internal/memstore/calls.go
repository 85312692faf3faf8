package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/pagination"
)

type CallHistory struct {
	mu      sync.RWMutex
	records []domain.CallRecord
}

func NewCallHistory() *CallHistory { return &CallHistory{} }

// Record повторная запись той же сессии игнорируется.
func (s *CallHistory) Record(_ context.Context, rec domain.CallRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.SessionID == rec.SessionID {
			return nil
		}
	}
	s.records = append(s.records, rec)
	return nil
}

// ListByRoom возвращает записи комнаты строго после after, новые первыми.
func (s *CallHistory) ListByRoom(_ context.Context, roomID string, after *pagination.Cursor, limit int) ([]domain.CallRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.CallRecord, 0)
	for _, r := range s.records {
		if r.RoomID == roomID && after.Older(r.EndedAt, r.SessionID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return pagination.Newer(out[i].EndedAt, out[i].SessionID, out[j].EndedAt, out[j].SessionID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

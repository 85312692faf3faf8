package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/cwrk-planet/call-service/internal/domain"
	"github.com/cwrk-planet/call-service/internal/pagination"
	"github.com/cwrk-planet/call-service/internal/transport/ws"
	"github.com/cwrk-planet/call-service/pkg/logger"

	"github.com/go-chi/chi/v5"
)

type LiveState interface {
	Rooms() []ws.RoomSnapshot
	Stats() ws.Stats
}

type CallHistory interface {
	CallHistory(ctx context.Context, roomID, cursor string, limit int) ([]domain.CallRecord, string, error)
}

type DeviceLookup interface {
	Get(ctx context.Context, deviceID string) (*domain.Device, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	live    LiveState
	calls   CallHistory
	devices DeviceLookup
	store   Pinger
}

func NewHandler(live LiveState, calls CallHistory, devices DeviceLookup, store Pinger) *Handler {
	return &Handler{
		live:    live,
		calls:   calls,
		devices: devices,
		store:   store,
	}
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type LiveRoomsResponse struct {
	Stats ws.Stats          `json:"stats"`
	Items []ws.RoomSnapshot `json:"items"`
}

type CallHistoryResponse struct {
	RoomID     string              `json:"roomId"`
	Items      []domain.CallRecord `json:"items"`
	NextCursor string              `json:"nextCursor,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// GET /healthz
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// GET /readyz
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.store != nil {
		if err := h.store.Ping(r.Context()); err != nil {
			logger.FromContext(r.Context()).Warn("store not ready", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "store unavailable"})
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// GET /api/rooms/live
func (h *Handler) LiveRooms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, LiveRoomsResponse{
		Stats: h.live.Stats(),
		Items: h.live.Rooms(),
	})
}

// GET /api/rooms/{roomId}/calls?limit=&cursor=
func (h *Handler) RoomCalls(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	limit := 20
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = n
	}

	items, next, err := h.calls.CallHistory(r.Context(), roomID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid_cursor"})
			return
		}
		logger.FromContext(r.Context()).Error("handler.RoomCalls", "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	if items == nil {
		items = []domain.CallRecord{}
	}
	writeJSON(w, http.StatusOK, CallHistoryResponse{RoomID: roomID, Items: items, NextCursor: next})
}

// GET /api/devices/{deviceId}
func (h *Handler) GetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "deviceId")
	d, err := h.devices.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrDeviceNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "device not found"})
			return
		}
		logger.FromContext(r.Context()).Error("handler.GetDevice", "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

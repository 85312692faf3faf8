package http

import (
	"net/http"
	"time"

	"github.com/cwrk-planet/call-service/internal/metrics"

	"github.com/go-chi/chi/v5"
	middlewareChi "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	AllowedOrigins []string
}

func NewRouter(h *Handler, wsHandler http.HandlerFunc, opts RouterOptions) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middlewareChi.RequestID)
	r.Use(middlewareChi.RealIP)
	r.Use(middlewareChi.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	r.Use(withRequestLogger)
	r.Use(requestLogger)

	// WS endpoint: роль определяется по query
	r.Get("/ws", wsHandler)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(middlewareChi.Timeout(10 * time.Second))

		api.Get("/rooms/live", h.LiveRooms)
		api.Get("/rooms/{roomId}/calls", h.RoomCalls)
		api.Get("/devices/{deviceId}", h.GetDevice)
	})

	return r
}

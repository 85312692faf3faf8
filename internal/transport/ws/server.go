package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/cwrk-planet/call-service/internal/metrics"

	"github.com/gorilla/websocket"
)

type Options struct {
	PingPeriod  time.Duration
	WriteWait   time.Duration
	ReadLimit   int64
	CheckOrigin func(r *http.Request) bool
}

func (o *Options) defaults() {
	if o.PingPeriod <= 0 {
		o.PingPeriod = 15 * time.Second
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 5 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 1 << 20
	}
	if o.CheckOrigin == nil {
		o.CheckOrigin = func(r *http.Request) bool { return true }
	}
}

type Server struct {
	upgrader websocket.Upgrader
	coord    *Coordinator
	opts     Options
}

func NewServer(coord *Coordinator, opts Options) *Server {
	opts.defaults()
	return &Server{
		coord: coord,
		opts:  opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
	}
}

// WS endpoint: GET /ws?roomId=&participantId=&participantName=&role= | ?deviceId=
func (srv *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	ident, classifyErr := Classify(r.URL.Query())

	conn, err := srv.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам ответил клиенту http-ошибкой
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	if classifyErr != nil {
		metrics.RejectedHandshakes.Inc()
		slog.Info("ws handshake rejected", "remote", r.RemoteAddr, "err", classifyErr)
		_ = conn.Close()
		return
	}

	ctx := r.Context()
	c := newWsConn(conn, srv.opts.WriteWait)
	s, err := srv.coord.Attach(ctx, c, ident)
	if err != nil {
		slog.Info("ws attach refused", "err", err)
		_ = c.Close()
		return
	}

	go srv.writeLoop(ctx, c)
	srv.readLoop(ctx, s, c)

	srv.coord.Detach(ctx, s)
	_ = c.Close()
}

func (srv *Server) readLoop(ctx context.Context, s *Session, c *wsConn) {
	c.conn.SetReadLimit(srv.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * srv.opts.PingPeriod))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(2 * srv.opts.PingPeriod))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("ws read failed", "err", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		srv.coord.Handle(ctx, s, data)
	}
}

func (srv *Server) writeLoop(ctx context.Context, c *wsConn) {
	ticker := time.NewTicker(srv.opts.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := c.ping(); err != nil {
				_ = c.Close()
				return
			}
		case <-ctx.Done():
			return
		case <-c.closed:
			return
		}
	}
}

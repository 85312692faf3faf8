package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var ErrConnClosed = errors.New("connection closed")

// Conn: исходящая сторона соединения. Send должен быть безопасен для
// конкурентных вызовов: в одно соединение пишут read loop-ы соседних соединений.
type Conn interface {
	Send(msg any) error
	Close() error
	Open() bool
}

type wsConn struct {
	conn      *websocket.Conn
	writeWait time.Duration

	sendMu    chan struct{}
	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error
}

func newWsConn(c *websocket.Conn, writeWait time.Duration) *wsConn {
	return &wsConn{
		conn:      c,
		writeWait: writeWait,
		sendMu:    make(chan struct{}, 1),
		closed:    make(chan struct{}),
	}
}

func (c *wsConn) Send(msg any) error {
	if !c.Open() {
		return ErrConnClosed
	}
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	return c.conn.WriteJSON(msg)
}

func (c *wsConn) ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.writeWait))
}

func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
		c.closeErr = c.conn.Close()
	})
	return c.closeErr
}

func (c *wsConn) Open() bool {
	select {
	case <-c.closed:
		return false
	default:
		return true
	}
}

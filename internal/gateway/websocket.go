package gateway

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	wsSendBuffer   = 64
	wsMaxPayload   = 1 << 20
	wsPongWait     = 45 * time.Second
	wsPingInterval = 15 * time.Second
	wsWriteWait    = 10 * time.Second
)

var errSubscriberGone = errors.New("subscriber gone")

type wsHandler struct {
	server   *Server
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func (s *Server) newWSHandler() http.Handler {
	return &wsHandler{
		server: s,
		logger: s.logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  8192,
			WriteBufferSize: 8192,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
}

// wsClient is one broadcast subscriber. Send enqueues into a buffered
// channel drained by the write pump; a full buffer or closed connection
// reports an error so the hub evicts the client.
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan string

	mu     sync.Mutex
	closed bool
}

func (h *wsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := &wsClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan string, wsSendBuffer),
	}
	unregister := h.server.hub.Register(client)
	h.logger.Debug("subscriber connected", "client_id", client.id)

	go client.writePump()
	client.readPump()

	unregister()
	client.Close()
	h.logger.Debug("subscriber disconnected", "client_id", client.id)
}

// Send satisfies hub.Sendable.
func (c *wsClient) Send(data string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errSubscriberGone
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errSubscriberGone
	}
}

// Close satisfies io.Closer so the hub can disconnect the client on
// shutdown. Safe to call more than once.
func (c *wsClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.send)
	return c.conn.Close()
}

// readPump consumes inbound frames until the peer goes away. Subscribers
// are listen-only; inbound payloads are discarded.
func (c *wsClient) readPump() {
	c.conn.SetReadLimit(wsMaxPayload)
	_ = c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

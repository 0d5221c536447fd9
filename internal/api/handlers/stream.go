package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/lighthorse/backend/internal/dashboard"
	"github.com/wonny/lighthorse/backend/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 90 * time.Second
	pingPeriod = 45 * time.Second
	sendBuffer = 32
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// StreamHub pushes view refresh events to websocket clients
// ⭐ SSOT: 실시간 갱신 알림은 이 허브에서만
type StreamHub struct {
	service     *dashboard.Service
	logger      *logger.Logger
	events      <-chan dashboard.Event
	unsubscribe func()

	mu      sync.RWMutex
	clients map[*streamClient]struct{}
}

type streamClient struct {
	conn *websocket.Conn
	out  chan interface{}
}

type helloMessage struct {
	Type  string   `json:"type"`
	Views []string `json:"views"`
}

// NewStreamHub subscribes to service events; call Run to forward them
func NewStreamHub(svc *dashboard.Service, log *logger.Logger) *StreamHub {
	events, unsubscribe := svc.Subscribe(64)
	return &StreamHub{
		service:     svc,
		logger:      log.WithComponent("stream"),
		events:      events,
		unsubscribe: unsubscribe,
		clients:     make(map[*streamClient]struct{}),
	}
}

// Run forwards service events to every client until ctx is done
func (h *StreamHub) Run(ctx context.Context) {
	defer h.unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-h.events:
			if !ok {
				return
			}
			h.broadcast(ev)
		}
	}
}

// Clients returns the number of connected clients
func (h *StreamHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *StreamHub) broadcast(v interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.out <- v:
		default:
		}
	}
}

// ServeWS upgrades the connection and streams events
// GET /ws
func (h *StreamHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := &streamClient{conn: conn, out: make(chan interface{}, sendBuffer)}

	var keys []string
	for _, v := range h.service.Catalog().Views() {
		keys = append(keys, v.Key)
	}
	c.out <- helloMessage{Type: "hello", Views: keys}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.WithField("remote", r.RemoteAddr).Debug("Stream client connected")

	done := make(chan struct{})
	go h.writeLoop(c, done)
	h.readLoop(c)

	close(done)
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	conn.Close()

	h.logger.WithField("remote", r.RemoteAddr).Debug("Stream client disconnected")
}

// readLoop drains client frames so pongs and close frames are processed
func (h *StreamHub) readLoop(c *streamClient) {
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.WithError(err).Debug("Stream read failed")
			}
			return
		}
	}
}

func (h *StreamHub) writeLoop(c *streamClient, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case v := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(v); err != nil {
				c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				c.conn.Close()
				return
			}
		}
	}
}

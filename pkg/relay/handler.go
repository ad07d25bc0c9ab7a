package relay

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	customlog "github.com/open-teleop/steering/pkg/log"
)

const (
	outboxSize   = 32
	writeTimeout = time.Second
)

// outbox is the Peer side of a websocket connection.
type outbox chan string

func (o outbox) Deliver(text string) bool {
	select {
	case o <- text:
		return true
	default:
		return false
	}
}

// Handler bridges websocket connections to a Hub.
type Handler struct {
	hub       *Hub
	heartbeat time.Duration
	timeout   time.Duration
	logger    customlog.Logger
}

// NewHandler pings every heartbeat and drops peers silent for timeout.
func NewHandler(hub *Hub, heartbeat, timeout time.Duration, logger customlog.Logger) *Handler {
	return &Handler{
		hub:       hub,
		heartbeat: heartbeat,
		timeout:   timeout,
		logger:    logger.WithField("component", "relay"),
	}
}

// Register mounts the relay on /ws.
func (h *Handler) Register(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(h.Serve))
}

// Serve runs one peer connection until it closes, times out or the hub stops.
func (h *Handler) Serve(conn *websocket.Conn) {
	box := make(outbox, outboxSize)
	id, err := h.hub.Connect(box)
	if err != nil {
		h.logger.Warnf("Rejecting %s: %v", conn.RemoteAddr(), err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "relay shutting down"),
			time.Now().Add(writeTimeout))
		return
	}
	logger := h.logger.WithField("peer", id)
	logger.Infof("Relay WebSocket connected: %s", conn.RemoteAddr())
	defer func() {
		_ = h.hub.Disconnect(id)
		logger.Infof("Relay WebSocket disconnected: %s", conn.RemoteAddr())
	}()

	alive := func() error {
		return conn.SetReadDeadline(time.Now().Add(h.timeout))
	}
	_ = alive()
	conn.SetPongHandler(func(string) error { return alive() })

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			mt, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					logger.Warnf("Relay read error: %v", err)
				}
				return
			}
			_ = alive()
			if mt != websocket.TextMessage {
				continue
			}
			if err := h.hub.Message(id, string(msg)); err != nil {
				return
			}
		}
	}()

	defer func() {
		_ = conn.Close()
		<-readerDone
	}()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-readerDone:
			return
		case text := <-box:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
				logger.Warnf("Relay write error: %v", err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				logger.Warnf("Relay ping failed: %v", err)
				return
			}
		}
	}
}

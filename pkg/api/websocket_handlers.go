package api

import (
	"errors"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// StreamState pushes a StateResponse to the client every stream interval
// until the client goes away. Inbound messages are read and ignored so that
// close frames are noticed.
func (h *StateHandler) StreamState(conn *websocket.Conn) {
	h.logger.Infof("State WebSocket connected: %s", conn.RemoteAddr())

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Warnf("State WS read error: %v", err)
				}
				return
			}
		}
	}()

	defer func() {
		_ = conn.Close()
		<-closed
		h.logger.Infof("State WebSocket disconnected: %s", conn.RemoteAddr())
	}()

	ticker := time.NewTicker(h.streamInterval)
	defer ticker.Stop()

	for {
		if err := conn.WriteJSON(NewStateResponse(h.provider)); err != nil {
			if err != websocket.ErrCloseSent && !errors.Is(err, syscall.EPIPE) && !errors.Is(err, syscall.ECONNRESET) {
				h.logger.Warnf("State WS write error: %v", err)
			}
			return
		}

		select {
		case <-closed:
			return
		case <-ticker.C:
		}
	}
}

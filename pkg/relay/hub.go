// Package relay fans text messages out between websocket peers.
package relay

import (
	"context"
	"errors"

	"github.com/google/uuid"
	customlog "github.com/open-teleop/steering/pkg/log"
)

// ErrHubClosed is returned once the hub's Run loop has stopped.
var ErrHubClosed = errors.New("relay hub is closed")

// Peer receives broadcast text. Deliver must not block; it reports false when
// the message was dropped.
type Peer interface {
	Deliver(text string) bool
}

type connectReq struct {
	peer  Peer
	reply chan string
}

type messageReq struct {
	from string
	text string
}

// Hub owns the peer map. All access goes through its Run goroutine.
type Hub struct {
	connect    chan connectReq
	disconnect chan string
	message    chan messageReq
	count      chan chan int
	done       chan struct{}
	logger     customlog.Logger
}

func NewHub(logger customlog.Logger) *Hub {
	return &Hub{
		connect:    make(chan connectReq),
		disconnect: make(chan string),
		message:    make(chan messageReq, 64),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		logger:     logger.WithField("component", "hub"),
	}
}

// Run serves requests until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	peers := map[string]Peer{}

	for {
		select {
		case <-ctx.Done():
			h.logger.Infof("Hub stopped with %d peers", len(peers))
			return

		case req := <-h.connect:
			id := uuid.NewString()
			peers[id] = req.peer
			req.reply <- id
			h.logger.Infof("Peer %s connected (%d total)", id, len(peers))

		case id := <-h.disconnect:
			if _, ok := peers[id]; ok {
				delete(peers, id)
				h.logger.Infof("Peer %s disconnected (%d total)", id, len(peers))
			}

		case msg := <-h.message:
			for id, peer := range peers {
				if id == msg.from {
					continue
				}
				if !peer.Deliver(msg.text) {
					h.logger.Warnf("Dropped message for slow peer %s", id)
				}
			}

		case reply := <-h.count:
			reply <- len(peers)
		}
	}
}

// Connect registers peer and returns its id.
func (h *Hub) Connect(peer Peer) (string, error) {
	reply := make(chan string, 1)
	select {
	case h.connect <- connectReq{peer: peer, reply: reply}:
	case <-h.done:
		return "", ErrHubClosed
	}
	return <-reply, nil
}

// Disconnect removes the peer. Unknown ids are ignored.
func (h *Hub) Disconnect(id string) error {
	select {
	case h.disconnect <- id:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// Message broadcasts text to every peer except the sender.
func (h *Hub) Message(from, text string) error {
	select {
	case h.message <- messageReq{from: from, text: text}:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

// Count returns the number of connected peers.
func (h *Hub) Count() (int, error) {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
	case <-h.done:
		return 0, ErrHubClosed
	}
	return <-reply, nil
}

// Package zeromq publishes committed steering commands on a ZeroMQ PUB socket.
package zeromq

import (
	"errors"
	"fmt"
	"sync"

	customlog "github.com/open-teleop/steering/pkg/log"
	"github.com/pebbe/zmq4"
)

// Common errors
var (
	ErrServiceClosed  = errors.New("zeromq service is closed")
	ErrInvalidMessage = errors.New("invalid message format")
)

// FrameSender is anything that can publish a payload under a topic.
type FrameSender interface {
	PublishMessage(topic string, message []byte) error
}

// MessageSender handles sending messages to ZeroMQ sockets
type MessageSender struct {
	socket  *zmq4.Socket
	logger  customlog.Logger
	running bool
	mu      sync.Mutex
}

// newMessageSender creates a PUB socket bound to address.
func newMessageSender(ctx *zmq4.Context, address string, logger customlog.Logger) (*MessageSender, error) {
	socket, err := ctx.NewSocket(zmq4.PUB)
	if err != nil {
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}

	if err := socket.Bind(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to bind to %s: %w", address, err)
	}

	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}

	logger.Infof("MessageSender initialized on %s", address)

	return &MessageSender{
		socket:  socket,
		logger:  logger,
		running: true,
	}, nil
}

// PublishMessage sends a message with the given topic
func (s *MessageSender) PublishMessage(topic string, message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return ErrServiceClosed
	}

	// Topic frame first so subscribers can filter on it.
	if _, err := s.socket.Send(topic, zmq4.SNDMORE); err != nil {
		return fmt.Errorf("failed to send topic: %w", err)
	}
	if _, err := s.socket.SendBytes(message, 0); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close cleans up resources
func (s *MessageSender) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.running = false
	if s.socket != nil {
		s.socket.Close()
		s.socket = nil
	}
}

// ZeroMQService owns the ZeroMQ context and the command PUB socket.
type ZeroMQService struct {
	ctx    *zmq4.Context
	sender *MessageSender
	logger customlog.Logger
	mu     sync.Mutex
}

// NewZeroMQService creates a context and binds a PUB socket to bindAddress.
func NewZeroMQService(bindAddress string, logger customlog.Logger) (*ZeroMQService, error) {
	logger = logger.WithField("component", "zeromq")

	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
	}

	sender, err := newMessageSender(ctx, bindAddress, logger)
	if err != nil {
		ctx.Term()
		return nil, err
	}

	return &ZeroMQService{
		ctx:    ctx,
		sender: sender,
		logger: logger,
	}, nil
}

// PublishMessage sends a message with the given topic
func (s *ZeroMQService) PublishMessage(topic string, message []byte) error {
	s.mu.Lock()
	sender := s.sender
	s.mu.Unlock()

	if sender == nil {
		return ErrServiceClosed
	}
	return sender.PublishMessage(topic, message)
}

// Endpoint returns the address the PUB socket is bound to, with any
// wildcard port resolved.
func (s *ZeroMQService) Endpoint() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sender == nil {
		return "", ErrServiceClosed
	}
	return s.sender.socket.GetLastEndpoint()
}

// Stop closes the socket and terminates the context. Safe to call twice.
func (s *ZeroMQService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sender == nil {
		return
	}
	s.logger.Infof("Stopping ZeroMQ service")
	s.sender.Close()
	s.sender = nil

	if s.ctx != nil {
		s.ctx.Term()
		s.ctx = nil
	}
	s.logger.Infof("ZeroMQ service stopped")
}

package zeromq

import (
	"context"
	"fmt"
	"syscall"
	"time"

	customlog "github.com/open-teleop/steering/pkg/log"
	zmq "github.com/pebbe/zmq4"
)

// CommandListener subscribes to a CommandPublisher and decodes its frames.
type CommandListener struct {
	socket *zmq.Socket
	logger customlog.Logger
}

// NewCommandListener connects a SUB socket to address filtered on topic.
func NewCommandListener(address, topic string, logger customlog.Logger) (*CommandListener, error) {
	socket, err := zmq.NewSocket(zmq.SUB)
	if err != nil {
		return nil, err
	}
	if err := socket.SetSubscribe(topic); err != nil {
		socket.Close()
		return nil, err
	}
	if err := socket.SetRcvtimeo(100 * time.Millisecond); err != nil {
		socket.Close()
		return nil, err
	}
	if err := socket.Connect(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	return &CommandListener{socket: socket, logger: logger}, nil
}

// Listen calls handle for every decoded frame until ctx is done.
func (l *CommandListener) Listen(ctx context.Context, handle func(Frame)) {
	for ctx.Err() == nil {
		parts, err := l.socket.RecvMessageBytes(0)
		if err != nil {
			if zmq.AsErrno(err) != zmq.Errno(syscall.EAGAIN) {
				l.logger.Debugf("Receive error: %v", err)
			}
			continue
		}
		if len(parts) != 2 {
			l.logger.Warnf("Expected topic and payload frames, got %d", len(parts))
			continue
		}
		frame, err := DecodeCommandFrame(parts[1])
		if err != nil {
			l.logger.Warnf("Dropping command frame on %s: %v", string(parts[0]), err)
			continue
		}
		handle(frame)
	}
}

// Close closes the SUB socket.
func (l *CommandListener) Close() error {
	return l.socket.Close()
}

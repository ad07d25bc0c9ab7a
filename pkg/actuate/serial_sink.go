package actuate

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/open-teleop/steering/domain/actuation"
	serial "go.bug.st/serial"
)

var _ actuation.Sink = (*SerialSink)(nil)

// ErrSinkClosed is returned by a SerialSink after Close.
var ErrSinkClosed = errors.New("actuation sink is closed")

// SerialSink writes newline-delimited text commands to a microcontroller that
// emulates the input device:
//
//	TURN <amount>
//	PRESS <KEY>
//	RELEASE <KEY>
type SerialSink struct {
	mu   sync.Mutex
	port io.WriteCloser
}

// OpenSerialSink opens device at the given baud rate.
func OpenSerialSink(device string, baud int) (*SerialSink, error) {
	p, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial sink %s: %w", device, err)
	}
	return NewSerialSink(p), nil
}

// NewSerialSink wraps an already open port.
func NewSerialSink(port io.WriteCloser) *SerialSink {
	return &SerialSink{port: port}
}

func (s *SerialSink) RelativeTurn(amount int32) error {
	return s.writeLine(fmt.Sprintf("TURN %d", amount))
}

func (s *SerialSink) Press(key actuation.Key) error {
	return s.writeLine("PRESS " + strings.ToUpper(string(key)))
}

func (s *SerialSink) Release(key actuation.Key) error {
	return s.writeLine("RELEASE " + strings.ToUpper(string(key)))
}

func (s *SerialSink) writeLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return ErrSinkClosed
	}
	if _, err := s.port.Write(append([]byte(line), '\n')); err != nil {
		return fmt.Errorf("serial write %q: %w", line, err)
	}
	return nil
}

// Close closes the underlying port. Further writes return ErrSinkClosed.
func (s *SerialSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

package zeromq

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/open-teleop/steering/domain/steering"
	customlog "github.com/open-teleop/steering/pkg/log"
)

func testLogger() customlog.Logger {
	return customlog.NewWriterLogger("error", io.Discard)
}

type fakeSender struct {
	mu     sync.Mutex
	topics []string
	frames [][]byte
	err    error
}

func (s *fakeSender) PublishMessage(topic string, message []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.topics = append(s.topics, topic)
	s.frames = append(s.frames, append([]byte(nil), message...))
	return nil
}

func TestCommandFrameRoundTrip(t *testing.T) {
	at := time.Unix(1700000000, 123456789)
	tests := []steering.Command{
		steering.IdleCommand,
		{Turn: steering.Left(7), Walk: steering.Walk},
		{Turn: steering.Right(32), Walk: steering.Run},
	}
	for i, cmd := range tests {
		snap := steering.CommandSnapshot{Command: cmd, Seq: uint64(i + 1), UpdatedAt: at}
		frame, err := DecodeCommandFrame(EncodeCommandFrame(snap, "session-1"))
		if err != nil {
			t.Fatalf("DecodeCommandFrame(%s) failed: %v", cmd, err)
		}
		if frame.Command != cmd {
			t.Errorf("Expected command %s, got %s", cmd, frame.Command)
		}
		if frame.Seq != uint64(i+1) || frame.SessionID != "session-1" || !frame.Timestamp.Equal(at) {
			t.Errorf("Unexpected frame metadata: %+v", frame)
		}
	}
}

func TestDecodeCommandFrameRejectsShortBuffer(t *testing.T) {
	if _, err := DecodeCommandFrame([]byte{1, 2, 3}); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("Expected ErrInvalidMessage, got %v", err)
	}
}

func TestPublisherSendsEachSequenceOnce(t *testing.T) {
	state := steering.NewCommandState()
	sender := &fakeSender{}
	pub := NewCommandPublisher(sender, state, "", "abc", testLogger())

	if sent, err := pub.PublishLatest(); sent || err != nil {
		t.Fatalf("Expected nothing published before first commit, got sent=%v err=%v", sent, err)
	}

	state.Commit(steering.Command{Turn: steering.Left(3), Walk: steering.Walk})
	if sent, err := pub.PublishLatest(); !sent || err != nil {
		t.Fatalf("Expected first commit to publish, got sent=%v err=%v", sent, err)
	}
	if sent, _ := pub.PublishLatest(); sent {
		t.Fatal("Expected same sequence not to be published twice")
	}

	state.Commit(steering.IdleCommand)
	if sent, _ := pub.PublishLatest(); !sent {
		t.Fatal("Expected second commit to publish")
	}

	if len(sender.frames) != 2 || sender.topics[0] != DefaultTopic {
		t.Fatalf("Expected 2 frames on %s, got %d on %v", DefaultTopic, len(sender.frames), sender.topics)
	}
	frame, err := DecodeCommandFrame(sender.frames[1])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if frame.Seq != 2 || frame.Command != steering.IdleCommand || frame.SessionID != "abc" {
		t.Errorf("Unexpected second frame: %+v", frame)
	}
}

func TestPublisherRetriesAfterSendError(t *testing.T) {
	state := steering.NewCommandState()
	sender := &fakeSender{err: errors.New("socket gone")}
	pub := NewCommandPublisher(sender, state, "cmd", "abc", testLogger())

	state.Commit(steering.IdleCommand)
	if _, err := pub.PublishLatest(); err == nil {
		t.Fatal("Expected send error")
	}

	sender.err = nil
	if sent, err := pub.PublishLatest(); !sent || err != nil {
		t.Fatalf("Expected retry to publish, got sent=%v err=%v", sent, err)
	}
}

func TestPublishOverZeroMQ(t *testing.T) {
	svc, err := NewZeroMQService("tcp://127.0.0.1:*", testLogger())
	if err != nil {
		t.Fatalf("NewZeroMQService failed: %v", err)
	}
	defer svc.Stop()

	endpoint, err := svc.Endpoint()
	if err != nil {
		t.Fatalf("Endpoint failed: %v", err)
	}

	listener, err := NewCommandListener(endpoint, DefaultTopic, testLogger())
	if err != nil {
		t.Fatalf("NewCommandListener failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	got := make(chan Frame, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		listener.Listen(ctx, func(f Frame) {
			select {
			case got <- f:
			default:
			}
		})
	}()
	// The SUB socket belongs to the listen goroutine until it returns.
	defer func() {
		cancel()
		<-done
		listener.Close()
	}()

	state := steering.NewCommandState()
	pub := NewCommandPublisher(svc, state, DefaultTopic, "zmq-test", testLogger())
	want := steering.Command{Turn: steering.Right(12), Walk: steering.Run}

	// SUB sockets miss messages sent before the subscription lands, so keep
	// committing until one arrives.
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case f := <-got:
			if f.Command != want || f.SessionID != "zmq-test" {
				t.Fatalf("Unexpected frame: %+v", f)
			}
			return
		case <-ticker.C:
			state.Commit(want)
			if _, err := pub.PublishLatest(); err != nil {
				t.Fatalf("PublishLatest failed: %v", err)
			}
		case <-ctx.Done():
			t.Fatal("No command frame received over ZeroMQ")
		}
	}
}

func TestStoppedServiceRejectsPublish(t *testing.T) {
	svc, err := NewZeroMQService("tcp://127.0.0.1:*", testLogger())
	if err != nil {
		t.Fatalf("NewZeroMQService failed: %v", err)
	}
	svc.Stop()
	svc.Stop()

	if err := svc.PublishMessage(DefaultTopic, []byte("x")); !errors.Is(err, ErrServiceClosed) {
		t.Fatalf("Expected ErrServiceClosed, got %v", err)
	}
}

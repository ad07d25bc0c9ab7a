package actuate

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/open-teleop/steering/domain/actuation"
	customlog "github.com/open-teleop/steering/pkg/log"
)

type bufferPort struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func (p *bufferPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.Write(b)
}

func (p *bufferPort) Close() error {
	p.closed = true
	return nil
}

func TestSerialSinkProtocol(t *testing.T) {
	port := &bufferPort{}
	sink := NewSerialSink(port)

	if err := sink.Press(actuation.KeySprint); err != nil {
		t.Fatalf("Press failed: %v", err)
	}
	if err := sink.RelativeTurn(-32); err != nil {
		t.Fatalf("RelativeTurn failed: %v", err)
	}
	if err := sink.Release(actuation.KeyForward); err != nil {
		t.Fatalf("Release failed: %v", err)
	}

	want := "PRESS SPRINT\nTURN -32\nRELEASE FORWARD\n"
	if got := port.buf.String(); got != want {
		t.Fatalf("Expected %q, got %q", want, got)
	}

	if err := sink.Close(); err != nil || !port.closed {
		t.Fatalf("Close failed: %v (closed=%v)", err, port.closed)
	}
	if err := sink.Press(actuation.KeyForward); !errors.Is(err, ErrSinkClosed) {
		t.Fatalf("Expected ErrSinkClosed after Close, got %v", err)
	}
}

func TestSerialSinkConcurrentLinesStayWhole(t *testing.T) {
	port := &bufferPort{}
	sink := NewSerialSink(port)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = sink.RelativeTurn(7)
				_ = sink.Press(actuation.KeyForward)
			}
		}()
	}
	wg.Wait()

	for _, line := range strings.Split(strings.TrimSuffix(port.buf.String(), "\n"), "\n") {
		if line != "TURN 7" && line != "PRESS FORWARD" {
			t.Fatalf("Interleaved line %q", line)
		}
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(customlog.NewWriterLogger("debug", &buf))

	_ = sink.Press(actuation.KeyForward)
	_ = sink.RelativeTurn(5)

	out := buf.String()
	if !strings.Contains(out, "PRESS forward sink=log") || !strings.Contains(out, "TURN 5 sink=log") {
		t.Fatalf("Unexpected log sink output: %q", out)
	}
}

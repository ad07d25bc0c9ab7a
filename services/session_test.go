package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/open-teleop/steering/domain/actuation"
	"github.com/open-teleop/steering/domain/steering"
	"github.com/open-teleop/steering/pkg/config"
	customlog "github.com/open-teleop/steering/pkg/log"
	"github.com/open-teleop/steering/pkg/telemetry"
)

func testLogger() customlog.Logger {
	return customlog.NewWriterLogger("error", io.Discard)
}

type countingSink struct {
	mu       sync.Mutex
	turns    int
	presses  map[actuation.Key]int
	releases map[actuation.Key]int
}

func newCountingSink() *countingSink {
	return &countingSink{presses: map[actuation.Key]int{}, releases: map[actuation.Key]int{}}
}

func (s *countingSink) RelativeTurn(int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns++
	return nil
}

func (s *countingSink) Press(k actuation.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presses[k]++
	return nil
}

func (s *countingSink) Release(k actuation.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases[k]++
	return nil
}

func (s *countingSink) pressed(k actuation.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presses[k]
}

// fakeGame streams a stationary body at the origin facing yaw 0 until the
// client disconnects.
func fakeGame(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(20 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			<-ticker.C
			frame := `{"coords":{"x":0,"y":64,"z":0},"head":{"y":0,"yaw":0},"movement_speed":0}`
			if i%10 == 5 {
				frame = `{"coords":`
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
	}))
}

func testConfig(url string) *config.BootstrapConfig {
	cfg := &config.BootstrapConfig{
		Telemetry: config.TelemetryConfig{URL: url},
		Route:     config.RouteConfig{File: "route.yaml"},
		Session:   config.SessionConfig{LifetimeS: 1},
	}
	cfg.ApplyDefaults()
	return cfg
}

func testRoute(targets ...[3]float64) *config.Route {
	route := &config.Route{}
	for _, to := range targets {
		route.Instructions = append(route.Instructions, config.Instruction{Walk: config.Walk{To: to}})
	}
	return route
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http") + "/ws"
}

func TestSessionRunsUntilLifetime(t *testing.T) {
	srv := fakeGame(t)
	defer srv.Close()

	sink := newCountingSink()
	session, err := NewSession(testConfig(wsURL(srv)), testRoute([3]float64{0, 64, 10}), sink, testLogger())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	start := time.Now()
	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Expected nil at lifetime deadline, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 900*time.Millisecond || elapsed > 3*time.Second {
		t.Errorf("Expected about 1s session, took %v", elapsed)
	}

	tel := session.Telemetry()
	if tel.Frames == 0 || tel.Position.Y != 64 {
		t.Errorf("Expected telemetry to be ingested, got %+v", tel)
	}
	stats := session.IngestStats()
	if stats.Accepted == 0 || stats.Rejected == 0 {
		t.Errorf("Expected both accepted and rejected frames, got %+v", stats)
	}

	// Target 10 ahead: run tier, straight on.
	cmd := session.Command()
	if cmd.Command.Walk != steering.Run || !cmd.Command.Turn.IsIdle() || cmd.Seq == 0 {
		t.Errorf("Expected Run with idle turn, got %s (seq %d)", cmd.Command, cmd.Seq)
	}
	if sink.pressed(actuation.KeyForward) == 0 || sink.pressed(actuation.KeySprint) == 0 {
		t.Errorf("Expected forward and sprint pressed, got %v", sink.presses)
	}
	if route := session.Route(); route.Remaining != 1 {
		t.Errorf("Expected waypoint still active, got %+v", route)
	}
	if session.SessionID() == "" || session.StartedAt().IsZero() {
		t.Error("Expected session id and start time")
	}
}

func TestSessionPopsReachedWaypoint(t *testing.T) {
	srv := fakeGame(t)
	defer srv.Close()

	session, err := NewSession(testConfig(wsURL(srv)), testRoute([3]float64{0, 0, 0.5}), newCountingSink(), testLogger())
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	if err := session.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	route := session.Route()
	if route.Remaining != 0 || route.Reached != 1 {
		t.Errorf("Expected waypoint popped, got %+v", route)
	}
	if cmd := session.Command().Command; cmd != steering.IdleCommand {
		t.Errorf("Expected idle command after last waypoint, got %s", cmd)
	}
}

func TestSessionEndsOnTransportFailure(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "game closed"))
		conn.Close()
	}))
	defer srv.Close()

	cfg := testConfig(wsURL(srv))
	cfg.Session.LifetimeS = 10
	session, _ := NewSession(cfg, testRoute([3]float64{0, 0, 10}), newCountingSink(), testLogger())

	start := time.Now()
	err := session.Run(context.Background())
	if !errors.Is(err, telemetry.ErrTransport) {
		t.Fatalf("Expected ErrTransport, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("Expected session to end promptly on transport failure")
	}
}

func TestSessionDialFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv)
	srv.Close()

	session, _ := NewSession(testConfig(url), testRoute([3]float64{1, 0, 1}), newCountingSink(), testLogger())
	if err := session.Run(context.Background()); !errors.Is(err, telemetry.ErrTransport) {
		t.Fatalf("Expected ErrTransport, got %v", err)
	}
}

func TestSessionCancelledByParent(t *testing.T) {
	srv := fakeGame(t)
	defer srv.Close()

	cfg := testConfig(wsURL(srv))
	cfg.Session.LifetimeS = 10
	session, _ := NewSession(cfg, testRoute([3]float64{0, 0, 10}), newCountingSink(), testLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := session.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected parent context error, got %v", err)
	}
}

func TestNewSessionRequiresInputs(t *testing.T) {
	if _, err := NewSession(nil, testRoute(), newCountingSink(), testLogger()); err == nil {
		t.Error("Expected error for nil config")
	}
}

func TestOpenSink(t *testing.T) {
	sink, err := OpenSink(config.ActuationConfig{Sink: config.SinkLog}, testLogger())
	if err != nil || sink == nil {
		t.Fatalf("Expected log sink, got %v", err)
	}
	_ = sink.Close()

	if _, err := OpenSink(config.ActuationConfig{Sink: "hid"}, testLogger()); err == nil {
		t.Error("Expected error for unknown sink")
	}

	missing := fmt.Sprintf("/dev/does-not-exist-%d", time.Now().UnixNano())
	if _, err := OpenSink(config.ActuationConfig{Sink: config.SinkSerial, SerialDevice: missing, SerialBaud: 9600}, testLogger()); err == nil {
		t.Error("Expected error opening a missing serial device")
	}
}

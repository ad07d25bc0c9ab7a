package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/open-teleop/steering/domain/steering"
	customlog "github.com/open-teleop/steering/pkg/log"
)

const pongWriteTimeout = time.Second

// Stats counts frames seen by an Ingestor.
type Stats struct {
	Accepted uint64 `json:"accepted"`
	Rejected uint64 `json:"rejected"`
	Pings    uint64 `json:"pings"`
}

// Ingestor is the single consumer of inbound telemetry frames.
type Ingestor struct {
	conn   *websocket.Conn
	schema Schema
	state  *steering.TelemetryState
	logger customlog.Logger

	accepted atomic.Uint64
	rejected atomic.Uint64
	pings    atomic.Uint64
}

// Dial connects to the telemetry endpoint (ws://host:port/ws).
func Dial(ctx context.Context, url string, handshakeTimeout time.Duration) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrTransport, url, err)
	}
	return conn, nil
}

// NewIngestor wires conn to state. Pings on conn are answered with an empty
// pong from inside the read loop.
func NewIngestor(conn *websocket.Conn, schema Schema, state *steering.TelemetryState, logger customlog.Logger) *Ingestor {
	in := &Ingestor{
		conn:   conn,
		schema: schema,
		state:  state,
		logger: logger.WithField("task", "ingest"),
	}
	conn.SetPingHandler(in.handlePing)
	return in
}

func (in *Ingestor) handlePing(string) error {
	in.pings.Add(1)
	err := in.conn.WriteControl(websocket.PongMessage, nil, time.Now().Add(pongWriteTimeout))
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return err
	}
	return nil
}

// HandleFrame decodes one text frame and replaces the telemetry state. A
// malformed frame leaves the state untouched.
func (in *Ingestor) HandleFrame(data []byte) error {
	sample, err := Decode(in.schema, data)
	if err != nil {
		in.rejected.Add(1)
		return err
	}
	in.state.Update(sample)
	in.accepted.Add(1)
	return nil
}

// Run reads frames until the connection fails or ctx is done. It returns
// ctx.Err() when the context ended the loop and an error wrapping
// ErrTransport otherwise.
func (in *Ingestor) Run(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = in.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session over"),
				time.Now().Add(pongWriteTimeout))
			_ = in.conn.Close()
		case <-stop:
		}
	}()

	in.logger.Infof("Telemetry ingest started from %s (schema %s)", in.conn.RemoteAddr(), in.schema)
	for {
		mt, data, err := in.conn.ReadMessage()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				in.logger.Infof("Telemetry connection closed by peer: %v", err)
			} else {
				in.logger.Errorf("Telemetry read error: %v", err)
			}
			return fmt.Errorf("%w: %v", ErrTransport, err)
		}

		if mt != websocket.TextMessage {
			in.logger.Debugf("Ignoring non-text telemetry message type: %d", mt)
			continue
		}
		if err := in.HandleFrame(data); err != nil {
			in.logger.Warnf("Failed to parse telemetry frame: %v. Frame: %s", err, string(data))
		}
	}
}

// Stats returns frame counters.
func (in *Ingestor) Stats() Stats {
	return Stats{
		Accepted: in.accepted.Load(),
		Rejected: in.rejected.Load(),
		Pings:    in.pings.Load(),
	}
}

// Close closes the underlying connection.
func (in *Ingestor) Close() error {
	return in.conn.Close()
}

// Package services wires the steering components into a controller session.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/open-teleop/steering/domain/actuation"
	"github.com/open-teleop/steering/domain/steering"
	"github.com/open-teleop/steering/pkg/api"
	"github.com/open-teleop/steering/pkg/config"
	"github.com/open-teleop/steering/pkg/geometry"
	customlog "github.com/open-teleop/steering/pkg/log"
	"github.com/open-teleop/steering/pkg/telemetry"
	"github.com/open-teleop/steering/pkg/zeromq"
)

var _ api.StateProvider = (*Session)(nil)

// Session is one bounded run of the controller: it owns the shared telemetry
// state, the waypoint queue and the command state.
type Session struct {
	id     string
	cfg    *config.BootstrapConfig
	sink   actuation.Sink
	logger customlog.Logger

	telemetry *steering.TelemetryState
	queue     *steering.WaypointQueue
	commands  *steering.CommandState

	started  atomic.Pointer[time.Time]
	ingestor atomic.Pointer[telemetry.Ingestor]
}

// NewSession prepares a session over route. cfg must already be validated.
func NewSession(cfg *config.BootstrapConfig, route *config.Route, sink actuation.Sink, logger customlog.Logger) (*Session, error) {
	if cfg == nil || route == nil || sink == nil {
		return nil, fmt.Errorf("session requires config, route and sink")
	}

	id := uuid.NewString()
	s := &Session{
		id:        id,
		cfg:       cfg,
		sink:      sink,
		logger:    logger.WithField("session", id),
		telemetry: steering.NewTelemetryState(),
		queue:     steering.NewWaypointQueue(Waypoints(route), steering.QueueMode(cfg.Route.Mode)),
		commands:  steering.NewCommandState(),
	}
	return s, nil
}

// Waypoints converts route instructions into queue entries, in order.
func Waypoints(route *config.Route) []steering.Waypoint {
	out := make([]steering.Waypoint, 0, len(route.Instructions))
	for _, in := range route.Instructions {
		out = append(out, steering.Waypoint{
			From:   geometry.FromArray(in.Walk.From),
			Target: geometry.FromArray(in.Walk.To),
		})
	}
	return out
}

// Run connects to telemetry, starts every periodic task and ingests frames in
// the foreground. It returns nil when the lifetime deadline fires, the parent
// context's error if that ends first, and an error wrapping
// telemetry.ErrTransport when the connection fails. Spawned tasks observe the
// session context and are not joined.
func (s *Session) Run(parent context.Context) error {
	lifetime := s.cfg.Session.Lifetime()
	ctx, cancel := context.WithTimeout(parent, lifetime)
	defer cancel()

	now := time.Now()
	s.started.Store(&now)
	s.logger.Infof("Starting steering session: %d waypoints (%s mode), lifetime %v",
		s.queue.Len(), s.queue.Mode(), lifetime)

	conn, err := telemetry.Dial(ctx, s.cfg.Telemetry.URL, s.cfg.Telemetry.HandshakeTimeout())
	if err != nil {
		return s.finish(parent, ctx, err)
	}
	ingestor := telemetry.NewIngestor(conn, telemetry.Schema(s.cfg.Telemetry.Schema), s.telemetry, s.logger)
	s.ingestor.Store(ingestor)
	s.logger.Infof("Connected to telemetry at %s", s.cfg.Telemetry.URL)

	engine := steering.NewEngine(s.engineConfig(), s.telemetry, s.queue, s.commands, s.logger)
	period := s.cfg.Actuation.Period()

	go engine.Run(ctx)
	go actuation.NewTurnActuator(s.commands, s.sink, period, s.logger).Run(ctx)
	go actuation.NewWalkActuator(s.commands, s.sink, period, s.cfg.Actuation.Settle(), s.logger).Run(ctx)
	go actuation.NewMonitor(s.commands, period, s.logger).Run(ctx)

	if addr := s.cfg.ZeroMQ.PublishBindAddress; addr != "" {
		svc, err := zeromq.NewZeroMQService(addr, s.logger)
		if err != nil {
			s.logger.Errorf("Command publishing disabled: %v", err)
		} else {
			defer svc.Stop()
			pub := zeromq.NewCommandPublisher(svc, s.commands, s.cfg.ZeroMQ.Topic, s.id, s.logger)
			go pub.Run(ctx, s.cfg.Control.Tick())
		}
	}

	if port := s.cfg.Server.HTTPPort; port > 0 {
		app := s.newAPIApp()
		go func() {
			s.logger.Infof("Diagnostics API listening on port %d", port)
			if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
				s.logger.Errorf("Diagnostics API stopped: %v", err)
			}
		}()
		defer func() {
			if err := app.ShutdownWithTimeout(time.Second); err != nil {
				s.logger.Warnf("Diagnostics API shutdown: %v", err)
			}
		}()
	}

	return s.finish(parent, ctx, ingestor.Run(ctx))
}

func (s *Session) finish(parent, ctx context.Context, err error) error {
	switch {
	case parent.Err() != nil:
		s.logger.Infof("Session cancelled")
		return parent.Err()
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		s.logger.Infof("Terminating after %d seconds", s.cfg.Session.LifetimeS)
		return nil
	default:
		s.logger.Errorf("Session ended: %v", err)
		return err
	}
}

func (s *Session) engineConfig() steering.EngineConfig {
	return steering.EngineConfig{
		Tick:           s.cfg.Control.Tick(),
		ReachThreshold: s.cfg.Control.ReachThreshold,
		RunThreshold:   s.cfg.Control.RunThreshold,
		MaxTurnForce:   s.cfg.Control.MaxTurnForce,
		EnableRun:      s.cfg.Control.RunEnabled(),
	}
}

func (s *Session) newAPIApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Steering Controller",
		DisableStartupMessage: true,
	})
	api.RegisterStateRoutes(app, s, s.logger)
	return app
}

func (s *Session) SessionID() string { return s.id }

func (s *Session) StartedAt() time.Time {
	if t := s.started.Load(); t != nil {
		return *t
	}
	return time.Time{}
}

func (s *Session) Telemetry() steering.Telemetry { return s.telemetry.Snapshot() }

func (s *Session) Command() steering.CommandSnapshot { return s.commands.Snapshot() }

func (s *Session) Route() steering.QueueSnapshot { return s.queue.Snapshot() }

func (s *Session) IngestStats() telemetry.Stats {
	if in := s.ingestor.Load(); in != nil {
		return in.Stats()
	}
	return telemetry.Stats{}
}

package steering

import (
	"context"
	"math"
	"time"

	"github.com/open-teleop/steering/pkg/geometry"
	customlog "github.com/open-teleop/steering/pkg/log"
)

// EngineConfig holds the decision thresholds.
type EngineConfig struct {
	Tick           time.Duration
	ReachThreshold float64
	RunThreshold   float64
	MaxTurnForce   int32
	EnableRun      bool
}

// DefaultEngineConfig returns the stock thresholds: 50 ms tick, reach 1.0,
// run 5.0, force clamp 32, run tier enabled.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Tick:           50 * time.Millisecond,
		ReachThreshold: 1.0,
		RunThreshold:   5.0,
		MaxTurnForce:   32,
		EnableRun:      true,
	}
}

// Engine turns the latest telemetry and the active waypoint into a Command
// once per tick. It is the only writer of the command state and the only
// mutator of the waypoint queue.
type Engine struct {
	cfg       EngineConfig
	telemetry *TelemetryState
	queue     *WaypointQueue
	commands  *CommandState
	logger    customlog.Logger
}

func NewEngine(cfg EngineConfig, telemetry *TelemetryState, queue *WaypointQueue, commands *CommandState, logger customlog.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		telemetry: telemetry,
		queue:     queue,
		commands:  commands,
		logger:    logger.WithField("task", "decide"),
	}
}

// Decide computes the command for one telemetry sample, popping the active
// waypoint in queue mode when it has been reached. Until the first frame has
// been ingested the position is unknown, so it idles and leaves the queue alone.
func (e *Engine) Decide(t Telemetry) Command {
	if t.Frames == 0 {
		return IdleCommand
	}
	wp, ok := e.queue.Active()
	if !ok {
		return IdleCommand
	}

	direction := wp.Target.Sub(t.Position).Planar()
	distance := direction.Magnitude()

	if distance < e.cfg.ReachThreshold {
		if e.queue.Mode() == QueueModeQueue {
			e.queue.Pop()
			remaining := e.queue.Len()
			e.logger.Infof("Reached waypoint %v (distance %.3f), %d remaining", wp.Target, distance, remaining)
			if remaining == 0 {
				return IdleCommand
			}
		}
		return Command{Turn: e.turnToward(direction, t.Yaw), Walk: WalkIdle}
	}

	return Command{Turn: e.turnToward(direction, t.Yaw), Walk: e.walkFor(distance)}
}

// Tick reads telemetry, decides and commits.
func (e *Engine) Tick() Command {
	cmd := e.Decide(e.telemetry.Snapshot())
	e.commands.Commit(cmd)
	return cmd
}

// Run ticks until ctx is done.
func (e *Engine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.cfg.Tick)
	defer ticker.Stop()

	e.logger.Debugf("Decision engine started (tick %v)", e.cfg.Tick)
	for {
		select {
		case <-ctx.Done():
			e.logger.Debugf("Decision engine stopped")
			return
		case <-ticker.C:
			e.Tick()
		}
	}
}

func (e *Engine) turnToward(direction geometry.Vec3, yaw float64) TurnCommand {
	unit, err := direction.Normalize()
	if err != nil {
		return IdleTurn
	}
	diff := geometry.AngleDiff(yaw, geometry.Bearing(unit))
	return TurnFromForce(ClampForce(diff, e.cfg.MaxTurnForce))
}

func (e *Engine) walkFor(distance float64) WalkCommand {
	switch {
	case distance < e.cfg.ReachThreshold:
		return WalkIdle
	case e.cfg.EnableRun && distance > e.cfg.RunThreshold:
		return Run
	default:
		return Walk
	}
}

// ClampForce rounds diff to the nearest integer and clamps it to [-limit, limit].
func ClampForce(diff float64, limit int32) int32 {
	r := math.Round(diff)
	if r > float64(limit) {
		return limit
	}
	if r < -float64(limit) {
		return -limit
	}
	return int32(r)
}

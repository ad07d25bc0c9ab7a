package steering

import (
	"io"
	"testing"

	"github.com/open-teleop/steering/pkg/geometry"
	customlog "github.com/open-teleop/steering/pkg/log"
)

func testLogger() customlog.Logger {
	return customlog.NewWriterLogger("error", io.Discard)
}

func newTestEngine(cfg EngineConfig, mode QueueMode, targets ...geometry.Vec3) (*Engine, *TelemetryState, *WaypointQueue, *CommandState) {
	waypoints := make([]Waypoint, 0, len(targets))
	for _, tgt := range targets {
		waypoints = append(waypoints, Waypoint{Target: tgt})
	}
	telemetry := NewTelemetryState()
	queue := NewWaypointQueue(waypoints, mode)
	commands := NewCommandState()
	return NewEngine(cfg, telemetry, queue, commands, testLogger()), telemetry, queue, commands
}

func at(x, y, z, yaw float64) Telemetry {
	return Telemetry{Sample: Sample{Position: geometry.Vec3{X: x, Y: y, Z: z}, Yaw: yaw}, Frames: 1}
}

func TestDecideEmptyQueue(t *testing.T) {
	e, _, _, _ := newTestEngine(DefaultEngineConfig(), QueueModeQueue)
	if cmd := e.Decide(at(0, 0, 0, 45)); cmd != IdleCommand {
		t.Fatalf("Expected idle command for empty queue, got %v", cmd)
	}
}

func TestDecideWalkTiers(t *testing.T) {
	cases := []struct {
		name   string
		target geometry.Vec3
		walk   WalkCommand
	}{
		{"far runs", geometry.Vec3{Z: 10}, Run},
		{"near walks", geometry.Vec3{Z: 3}, Walk},
		{"exactly run threshold walks", geometry.Vec3{Z: 5}, Walk},
		{"exactly reach threshold walks", geometry.Vec3{Z: 1}, Walk},
	}
	for _, tc := range cases {
		e, _, _, _ := newTestEngine(DefaultEngineConfig(), QueueModeQueue, tc.target)
		cmd := e.Decide(at(0, 0, 0, 0))
		if cmd.Walk != tc.walk {
			t.Errorf("%s: expected walk %v, got %v", tc.name, tc.walk, cmd.Walk)
		}
		if !cmd.Turn.IsIdle() {
			t.Errorf("%s: expected idle turn when facing target, got %v", tc.name, cmd.Turn)
		}
	}
}

func TestDecideRunDisabled(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.EnableRun = false
	e, _, _, _ := newTestEngine(cfg, QueueModeQueue, geometry.Vec3{Z: 50})
	if cmd := e.Decide(at(0, 0, 0, 0)); cmd.Walk != Walk {
		t.Fatalf("Expected Walk with run tier disabled, got %v", cmd.Walk)
	}
}

func TestDecideIgnoresVerticalAxis(t *testing.T) {
	e, _, _, _ := newTestEngine(DefaultEngineConfig(), QueueModeQueue, geometry.Vec3{Y: 100, Z: 3})
	if cmd := e.Decide(at(0, -40, 0, 0)); cmd.Walk != Walk {
		t.Fatalf("Expected planar distance 3 to walk, got %v", cmd.Walk)
	}
}

func TestDecideReachPopsSingleWaypoint(t *testing.T) {
	e, _, queue, _ := newTestEngine(DefaultEngineConfig(), QueueModeQueue, geometry.Vec3{Z: 0.5})
	if cmd := e.Decide(at(0, 0, 0, 0)); cmd != IdleCommand {
		t.Fatalf("Expected idle command after reaching last waypoint, got %v", cmd)
	}
	if queue.Len() != 0 {
		t.Fatalf("Expected waypoint to be popped, %d remain", queue.Len())
	}
}

func TestDecideReachExactlyOnTarget(t *testing.T) {
	e, _, queue, _ := newTestEngine(DefaultEngineConfig(), QueueModeQueue, geometry.Vec3{Z: 2}, geometry.Vec3{Z: 10})
	cmd := e.Decide(at(0, 0, 2, 90))
	if cmd != IdleCommand {
		t.Fatalf("Expected idle turn and walk on exact target, got %v", cmd)
	}
	if queue.Len() != 1 {
		t.Fatalf("Expected one waypoint to remain, got %d", queue.Len())
	}
}

func TestDecideAdvancesWithoutSkipping(t *testing.T) {
	first := geometry.Vec3{Z: 0.5}
	second := geometry.Vec3{X: -10, Z: 0}
	e, _, queue, _ := newTestEngine(DefaultEngineConfig(), QueueModeQueue, first, second)

	cmd := e.Decide(at(0, 0, 0, 0))
	if cmd.Walk != WalkIdle {
		t.Fatalf("Expected walk idle on the reaching tick, got %v", cmd.Walk)
	}
	active, ok := queue.Active()
	if !ok || active.Target != second {
		t.Fatalf("Expected second waypoint active, got %v (ok=%v)", active, ok)
	}

	cmd = e.Decide(at(0, 0, 0, 0))
	if cmd.Walk != Run {
		t.Fatalf("Expected Run toward second waypoint, got %v", cmd.Walk)
	}
	if queue.Len() != 1 {
		t.Fatalf("Second waypoint must not be skipped, %d remain", queue.Len())
	}
}

func TestDecideStaticModeNeverPops(t *testing.T) {
	e, _, queue, _ := newTestEngine(DefaultEngineConfig(), QueueModeStatic, geometry.Vec3{Z: 0.5}, geometry.Vec3{Z: 20})
	for i := 0; i < 3; i++ {
		if cmd := e.Decide(at(0, 0, 0, 0)); cmd.Walk != WalkIdle {
			t.Fatalf("Expected walk idle at static goal, got %v", cmd.Walk)
		}
	}
	if queue.Len() != 1 {
		t.Fatalf("Static queue should hold exactly the first goal, got %d", queue.Len())
	}
	if cmd := e.Decide(at(0, 0, -6, 0)); cmd.Walk != Run {
		t.Fatalf("Expected to run back to static goal, got %v", cmd.Walk)
	}
}

func TestDecideTurnClamp(t *testing.T) {
	// Target straight ahead has bearing 0; facing yaw 170 gives diff 170.
	e, _, _, _ := newTestEngine(DefaultEngineConfig(), QueueModeQueue, geometry.Vec3{Z: 10})
	if cmd := e.Decide(at(0, 0, 0, 170)); cmd.Turn != Right(32) {
		t.Fatalf("Expected Right(32), got %v", cmd.Turn)
	}
	if cmd := e.Decide(at(0, 0, 0, -170)); cmd.Turn != Left(32) {
		t.Fatalf("Expected Left(32), got %v", cmd.Turn)
	}
	if cmd := e.Decide(at(0, 0, 0, 10.4)); cmd.Turn != Right(10) {
		t.Fatalf("Expected Right(10), got %v", cmd.Turn)
	}
	if cmd := e.Decide(at(0, 0, 0, -0.4)); !cmd.Turn.IsIdle() {
		t.Fatalf("Expected Idle for sub-degree error, got %v", cmd.Turn)
	}
}

func TestDecideTurnTowardSide(t *testing.T) {
	// Target on +x has bearing -90. Facing 0 the error is 90, clamped to 32.
	e, _, _, _ := newTestEngine(DefaultEngineConfig(), QueueModeQueue, geometry.Vec3{X: 10})
	if cmd := e.Decide(at(0, 0, 0, 0)); cmd.Turn != Right(32) {
		t.Fatalf("Expected Right(32) toward +x, got %v", cmd.Turn)
	}
	if cmd := e.Decide(at(0, 0, 0, -80)); cmd.Turn != Right(10) {
		t.Fatalf("Expected Right(10) when nearly aligned, got %v", cmd.Turn)
	}
	if cmd := e.Decide(at(0, 0, 0, -100)); cmd.Turn != Left(10) {
		t.Fatalf("Expected Left(10) after overshoot, got %v", cmd.Turn)
	}
}

func TestDecideIdlesBeforeFirstFrame(t *testing.T) {
	e, telemetry, queue, commands := newTestEngine(DefaultEngineConfig(), QueueModeQueue, geometry.Vec3{Z: 0.5}, geometry.Vec3{X: 30})

	for i := 0; i < 2; i++ {
		e.Tick()
		if snap := commands.Snapshot(); snap.Command != IdleCommand {
			t.Fatalf("Tick %d: expected idle command with no telemetry, got %v", i+1, snap.Command)
		}
		if queue.Len() != 2 {
			t.Fatalf("Tick %d: queue must be untouched with no telemetry, %d remain", i+1, queue.Len())
		}
	}
	if got := queue.Snapshot().Reached; got != 0 {
		t.Fatalf("Expected no reached waypoints, got %d", got)
	}

	// First frame places the body far from both waypoints.
	telemetry.Update(Sample{Position: geometry.Vec3{Z: -20}})
	e.Tick()
	if queue.Len() != 2 {
		t.Fatalf("Expected both waypoints to remain, got %d", queue.Len())
	}
	if snap := commands.Snapshot(); snap.Command.Walk != Run {
		t.Fatalf("Expected Run toward first waypoint, got %v", snap.Command)
	}
}

func TestTickCommits(t *testing.T) {
	e, telemetry, _, commands := newTestEngine(DefaultEngineConfig(), QueueModeQueue, geometry.Vec3{Z: 3})
	telemetry.Update(Sample{Yaw: -170})

	e.Tick()
	snap := commands.Snapshot()
	if snap.Seq != 1 {
		t.Fatalf("Expected sequence 1, got %d", snap.Seq)
	}
	if snap.Command.Turn != Left(32) || snap.Command.Walk != Walk {
		t.Fatalf("Unexpected committed command %v", snap.Command)
	}
}

func TestClampForce(t *testing.T) {
	cases := []struct {
		diff float64
		want int32
	}{
		{0, 0}, {0.49, 0}, {0.5, 1}, {-0.5, -1}, {31.6, 32}, {200, 32}, {-170, -32}, {-12.2, -12},
	}
	for _, tc := range cases {
		if got := ClampForce(tc.diff, 32); got != tc.want {
			t.Errorf("ClampForce(%f) = %d, expected %d", tc.diff, got, tc.want)
		}
	}
}

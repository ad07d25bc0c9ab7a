package actuation

import (
	"context"
	"fmt"
	"time"

	"github.com/open-teleop/steering/domain/steering"
	customlog "github.com/open-teleop/steering/pkg/log"
)

// Gait is the key state the walk actuator believes the sink is in.
type Gait uint8

const (
	GaitIdle Gait = iota
	GaitWalking
	GaitRunning
)

func (g Gait) String() string {
	switch g {
	case GaitWalking:
		return "Walking"
	case GaitRunning:
		return "Running"
	default:
		return "Idle"
	}
}

func gaitFor(w steering.WalkCommand) Gait {
	switch w {
	case steering.Walk:
		return GaitWalking
	case steering.Run:
		return GaitRunning
	default:
		return GaitIdle
	}
}

// DefaultSettle is the pause between releasing the run keys and pressing
// forward again.
const DefaultSettle = 50 * time.Millisecond

// WalkActuator drives the forward and sprint keys from the WalkCommand.
// Leaving Running releases both keys and waits the settle delay before any
// new forward press so the sink never sees release and press together.
type WalkActuator struct {
	source CommandSource
	sink   Sink
	period time.Duration
	settle time.Duration
	logger customlog.Logger

	// gait is touched only by the goroutine calling Step.
	gait Gait
}

func NewWalkActuator(source CommandSource, sink Sink, period, settle time.Duration, logger customlog.Logger) *WalkActuator {
	return &WalkActuator{
		source: source,
		sink:   sink,
		period: period,
		settle: settle,
		logger: logger.WithField("task", "walk"),
	}
}

// Gait reports the current key state. Call it from the Step goroutine.
func (a *WalkActuator) Gait() Gait {
	return a.gait
}

// Step moves the key state toward the current WalkCommand. A failed sink call
// leaves the gait unchanged so the transition is retried next period.
func (a *WalkActuator) Step(ctx context.Context) {
	want := gaitFor(a.source.Snapshot().Command.Walk)
	if want == a.gait {
		return
	}

	from := a.gait
	if err := a.transition(ctx, want); err != nil {
		a.logger.Warnf("Gait %s -> %s failed: %v", from, want, err)
		return
	}
	a.logger.Debugf("Gait %s -> %s", from, want)
	a.gait = want
}

func (a *WalkActuator) transition(ctx context.Context, want Gait) error {
	if a.gait == GaitRunning {
		if err := a.sink.Release(KeyForward); err != nil {
			return fmt.Errorf("release %s: %w", KeyForward, err)
		}
		if err := a.sink.Release(KeySprint); err != nil {
			return fmt.Errorf("release %s: %w", KeySprint, err)
		}
		a.gait = GaitIdle
		if !sleepCtx(ctx, a.settle) {
			return ctx.Err()
		}
	}

	switch want {
	case GaitRunning:
		if err := a.sink.Press(KeySprint); err != nil {
			return fmt.Errorf("press %s: %w", KeySprint, err)
		}
		if a.gait == GaitIdle {
			if err := a.sink.Press(KeyForward); err != nil {
				return fmt.Errorf("press %s: %w", KeyForward, err)
			}
		}
	case GaitWalking:
		if a.gait == GaitIdle {
			if err := a.sink.Press(KeyForward); err != nil {
				return fmt.Errorf("press %s: %w", KeyForward, err)
			}
		}
	case GaitIdle:
		if a.gait == GaitWalking {
			if err := a.sink.Release(KeyForward); err != nil {
				return fmt.Errorf("release %s: %w", KeyForward, err)
			}
		}
	}
	return nil
}

func (a *WalkActuator) Run(ctx context.Context) {
	a.logger.Debugf("Walk actuator started (period %v, settle %v)", a.period, a.settle)
	every(ctx, a.period, a.Step)
	a.logger.Debugf("Walk actuator stopped")
}

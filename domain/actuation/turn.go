package actuation

import (
	"context"
	"time"

	"github.com/open-teleop/steering/domain/steering"
	customlog "github.com/open-teleop/steering/pkg/log"
)

// TurnActuator emits one relative turn per period for a non-idle TurnCommand.
// The sink's positive axis turns against the controller's force sign, so
// Left(f) is sent as +f and Right(f) as -f.
type TurnActuator struct {
	source CommandSource
	sink   Sink
	period time.Duration
	logger customlog.Logger
}

func NewTurnActuator(source CommandSource, sink Sink, period time.Duration, logger customlog.Logger) *TurnActuator {
	return &TurnActuator{
		source: source,
		sink:   sink,
		period: period,
		logger: logger.WithField("task", "turn"),
	}
}

// Step applies the current turn command once.
func (a *TurnActuator) Step(_ context.Context) {
	turn := a.source.Snapshot().Command.Turn

	var amount int32
	switch turn.Kind() {
	case steering.TurnLeft:
		amount = turn.Force()
	case steering.TurnRight:
		amount = -turn.Force()
	default:
		return
	}

	if err := a.sink.RelativeTurn(amount); err != nil {
		a.logger.Warnf("Relative turn %d failed: %v", amount, err)
	}
}

func (a *TurnActuator) Run(ctx context.Context) {
	a.logger.Debugf("Turn actuator started (period %v)", a.period)
	every(ctx, a.period, a.Step)
	a.logger.Debugf("Turn actuator stopped")
}

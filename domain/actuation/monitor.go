package actuation

import (
	"context"
	"time"

	"github.com/open-teleop/steering/domain/steering"
	customlog "github.com/open-teleop/steering/pkg/log"
)

// Monitor is the diagnostic logger task. It only reads the command state.
type Monitor struct {
	source CommandSource
	period time.Duration
	logger customlog.Logger

	last    steering.Command
	started bool
}

func NewMonitor(source CommandSource, period time.Duration, logger customlog.Logger) *Monitor {
	return &Monitor{
		source: source,
		period: period,
		logger: logger.WithField("task", "monitor"),
	}
}

// Step logs the current turn and walk state: every period at debug level,
// and at info level when it differs from the previous period.
func (m *Monitor) Step(_ context.Context) {
	snap := m.source.Snapshot()
	cmd := snap.Command

	m.logger.Debugf("%s, %s (seq %d)", walkLabel(cmd.Walk), turnLabel(cmd.Turn), snap.Seq)
	if !m.started || cmd != m.last {
		m.logger.Infof("%s, %s", walkLabel(cmd.Walk), turnLabel(cmd.Turn))
	}
	m.last = cmd
	m.started = true
}

func (m *Monitor) Run(ctx context.Context) {
	every(ctx, m.period, m.Step)
}

func walkLabel(w steering.WalkCommand) string {
	switch w {
	case steering.Run:
		return "Running"
	case steering.Walk:
		return "Walking"
	default:
		return "Standing"
	}
}

func turnLabel(t steering.TurnCommand) string {
	switch t.Kind() {
	case steering.TurnLeft:
		return "Turning Left"
	case steering.TurnRight:
		return "Turning Right"
	default:
		return "Holding heading"
	}
}

// Package actuation runs the periodic tasks that read the committed steering
// command and drive an actuation sink.
package actuation

import (
	"context"
	"time"

	"github.com/open-teleop/steering/domain/steering"
)

// Key identifies a held input on the actuation sink.
type Key string

const (
	KeyForward Key = "forward"
	KeySprint  Key = "sprint"
)

// Sink is the external device that turns primitives into physical input.
// Implementations must be safe for concurrent use by several actuators.
type Sink interface {
	RelativeTurn(amount int32) error
	Press(key Key) error
	Release(key Key) error
}

// CommandSource provides the latest committed command.
type CommandSource interface {
	Snapshot() steering.CommandSnapshot
}

// DefaultPeriod is the actuation tick.
const DefaultPeriod = 50 * time.Millisecond

// every calls fn each period until ctx is done.
func every(ctx context.Context, period time.Duration, fn func(context.Context)) {
	if period <= 0 {
		period = DefaultPeriod
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// sleepCtx waits for d or until ctx is done. It returns false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

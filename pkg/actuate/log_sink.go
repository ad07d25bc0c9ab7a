// Package actuate provides actuation sinks for the steering actuators.
package actuate

import (
	"github.com/open-teleop/steering/domain/actuation"
	customlog "github.com/open-teleop/steering/pkg/log"
)

var _ actuation.Sink = (*LogSink)(nil)

// LogSink performs no physical input; it logs each primitive. Useful for dry
// runs against a live telemetry feed.
type LogSink struct {
	logger customlog.Logger
}

func NewLogSink(logger customlog.Logger) *LogSink {
	return &LogSink{logger: logger.WithField("sink", "log")}
}

func (s *LogSink) RelativeTurn(amount int32) error {
	s.logger.Debugf("TURN %d", amount)
	return nil
}

func (s *LogSink) Press(key actuation.Key) error {
	s.logger.Infof("PRESS %s", key)
	return nil
}

func (s *LogSink) Release(key actuation.Key) error {
	s.logger.Infof("RELEASE %s", key)
	return nil
}

func (s *LogSink) Close() error {
	return nil
}

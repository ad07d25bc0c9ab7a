package services

import (
	"fmt"

	"github.com/open-teleop/steering/domain/actuation"
	"github.com/open-teleop/steering/pkg/actuate"
	"github.com/open-teleop/steering/pkg/config"
	customlog "github.com/open-teleop/steering/pkg/log"
)

// ClosableSink is an actuation sink that owns a device.
type ClosableSink interface {
	actuation.Sink
	Close() error
}

// OpenSink builds the sink named by the actuation config.
func OpenSink(cfg config.ActuationConfig, logger customlog.Logger) (ClosableSink, error) {
	switch cfg.Sink {
	case config.SinkLog, "":
		logger.Infof("Using log actuation sink")
		return actuate.NewLogSink(logger), nil
	case config.SinkSerial:
		sink, err := actuate.OpenSerialSink(cfg.SerialDevice, cfg.SerialBaud)
		if err != nil {
			return nil, err
		}
		logger.Infof("Using serial actuation sink on %s at %d baud", cfg.SerialDevice, cfg.SerialBaud)
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown actuation sink %q", cfg.Sink)
	}
}

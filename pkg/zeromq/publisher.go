package zeromq

import (
	"context"
	"time"

	"github.com/open-teleop/steering/domain/steering"
	customlog "github.com/open-teleop/steering/pkg/log"
)

// DefaultTopic is the topic frame used for command snapshots.
const DefaultTopic = "steering.command"

// CommandSource provides the latest committed command.
type CommandSource interface {
	Snapshot() steering.CommandSnapshot
}

// CommandPublisher publishes each newly committed command exactly once.
type CommandPublisher struct {
	sender    FrameSender
	source    CommandSource
	topic     string
	sessionID string
	logger    customlog.Logger
	lastSeq   uint64
}

// NewCommandPublisher creates a publisher for commands read from source.
func NewCommandPublisher(sender FrameSender, source CommandSource, topic, sessionID string, logger customlog.Logger) *CommandPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &CommandPublisher{
		sender:    sender,
		source:    source,
		topic:     topic,
		sessionID: sessionID,
		logger:    logger.WithField("task", "publish"),
	}
}

// PublishLatest sends the current snapshot if its sequence has not been sent
// yet. It reports whether a frame went out.
func (p *CommandPublisher) PublishLatest() (bool, error) {
	snap := p.source.Snapshot()
	if snap.Seq == 0 || snap.Seq == p.lastSeq {
		return false, nil
	}
	if err := p.sender.PublishMessage(p.topic, EncodeCommandFrame(snap, p.sessionID)); err != nil {
		return false, err
	}
	p.lastSeq = snap.Seq
	return true, nil
}

// Run polls the command state every period until ctx is done.
func (p *CommandPublisher) Run(ctx context.Context, period time.Duration) {
	if period <= 0 {
		period = 50 * time.Millisecond
	}
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	p.logger.Infof("Publishing commands on topic %s", p.topic)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.PublishLatest(); err != nil {
				p.logger.Warnf("Failed to publish command: %v", err)
			}
		}
	}
}

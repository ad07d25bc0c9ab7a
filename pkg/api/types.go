package api

import (
	"time"

	"github.com/open-teleop/steering/domain/steering"
	"github.com/open-teleop/steering/pkg/telemetry"
)

// StateProvider exposes read-only snapshots of a running controller session.
type StateProvider interface {
	SessionID() string
	StartedAt() time.Time
	Telemetry() steering.Telemetry
	Command() steering.CommandSnapshot
	Route() steering.QueueSnapshot
	IngestStats() telemetry.Stats
}

// StateResponse is the body of GET /api/v1/steering/state and of each
// /ws/state push.
type StateResponse struct {
	SessionID string                   `json:"session_id"`
	UptimeMs  int64                    `json:"uptime_ms"`
	Telemetry steering.Telemetry       `json:"telemetry"`
	Command   steering.CommandSnapshot `json:"command"`
	Route     steering.QueueSnapshot   `json:"route"`
	Ingest    telemetry.Stats          `json:"ingest"`
}

// NewStateResponse collects one consistent-per-field report from p.
func NewStateResponse(p StateProvider) StateResponse {
	return StateResponse{
		SessionID: p.SessionID(),
		UptimeMs:  time.Since(p.StartedAt()).Milliseconds(),
		Telemetry: p.Telemetry(),
		Command:   p.Command(),
		Route:     p.Route(),
		Ingest:    p.IngestStats(),
	}
}

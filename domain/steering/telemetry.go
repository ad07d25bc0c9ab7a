package steering

import (
	"sync"
	"time"

	"github.com/open-teleop/steering/pkg/geometry"
)

// Sample is one decoded telemetry frame.
type Sample struct {
	Position      geometry.Vec3 `json:"position"`
	Yaw           float64       `json:"yaw"`
	HeadPitch     float64       `json:"head_pitch"`
	MovementSpeed float64       `json:"movement_speed"`
}

// Telemetry is the latest known state of the controlled body.
type Telemetry struct {
	Sample
	ReceivedAt time.Time `json:"received_at"`
	Frames     uint64    `json:"frames"`
}

// TelemetryState is written by the ingest loop and read by everything else.
type TelemetryState struct {
	mu     sync.RWMutex
	latest Telemetry
}

func NewTelemetryState() *TelemetryState {
	return &TelemetryState{}
}

// Update replaces the stored sample wholesale.
func (s *TelemetryState) Update(sample Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest = Telemetry{
		Sample:     sample,
		ReceivedAt: time.Now(),
		Frames:     s.latest.Frames + 1,
	}
}

// Snapshot returns a copy of the latest telemetry.
func (s *TelemetryState) Snapshot() Telemetry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Package telemetry decodes position/heading frames and runs the ingest loop
// that keeps the shared telemetry state current.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/open-teleop/steering/domain/steering"
	"github.com/open-teleop/steering/pkg/geometry"
)

var (
	// ErrParse marks a malformed telemetry frame. Ingest logs and skips these.
	ErrParse = errors.New("malformed telemetry frame")
	// ErrTransport marks a failure of the telemetry connection. It ends the session.
	ErrTransport = errors.New("telemetry transport failure")
)

// Schema names the accepted frame layout.
type Schema string

const (
	// SchemaHead is the canonical layout:
	// {"coords":{"x","y","z"},"head":{"y","yaw"},"movement_speed"}
	SchemaHead Schema = "head"
	// SchemaHeadAngle is the older layout: {"coords":{...},"head_angle"}
	SchemaHeadAngle Schema = "head_angle"
)

// ParseSchema validates a configured schema name.
func ParseSchema(s string) (Schema, error) {
	switch Schema(s) {
	case SchemaHead, SchemaHeadAngle:
		return Schema(s), nil
	case "":
		return SchemaHead, nil
	default:
		return "", fmt.Errorf("invalid telemetry schema %q (want %q or %q)", s, SchemaHead, SchemaHeadAngle)
	}
}

type coords struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
	Z *float64 `json:"z"`
}

type head struct {
	Y   *float64 `json:"y"`
	Yaw *float64 `json:"yaw"`
}

type headFrame struct {
	Coords        *coords  `json:"coords"`
	Head          *head    `json:"head"`
	MovementSpeed *float64 `json:"movement_speed"`
}

type headAngleFrame struct {
	Coords    *coords  `json:"coords"`
	HeadAngle *float64 `json:"head_angle"`
}

// Decode parses one frame. Every field of the schema is required; anything
// missing or mistyped yields an error wrapping ErrParse.
func Decode(schema Schema, data []byte) (steering.Sample, error) {
	switch schema {
	case SchemaHeadAngle:
		return decodeHeadAngle(data)
	default:
		return decodeHead(data)
	}
}

func decodeHead(data []byte) (steering.Sample, error) {
	var f headFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return steering.Sample{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	pos, err := f.Coords.vec()
	if err != nil {
		return steering.Sample{}, err
	}
	if f.Head == nil || f.Head.Y == nil || f.Head.Yaw == nil {
		return steering.Sample{}, fmt.Errorf("%w: missing head.y or head.yaw", ErrParse)
	}
	if f.MovementSpeed == nil {
		return steering.Sample{}, fmt.Errorf("%w: missing movement_speed", ErrParse)
	}
	return steering.Sample{
		Position:      pos,
		Yaw:           *f.Head.Yaw,
		HeadPitch:     *f.Head.Y,
		MovementSpeed: *f.MovementSpeed,
	}, nil
}

func decodeHeadAngle(data []byte) (steering.Sample, error) {
	var f headAngleFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return steering.Sample{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	pos, err := f.Coords.vec()
	if err != nil {
		return steering.Sample{}, err
	}
	if f.HeadAngle == nil {
		return steering.Sample{}, fmt.Errorf("%w: missing head_angle", ErrParse)
	}
	return steering.Sample{Position: pos, Yaw: *f.HeadAngle}, nil
}

func (c *coords) vec() (geometry.Vec3, error) {
	if c == nil || c.X == nil || c.Y == nil || c.Z == nil {
		return geometry.Vec3{}, fmt.Errorf("%w: missing coords.x, coords.y or coords.z", ErrParse)
	}
	return geometry.Vec3{X: *c.X, Y: *c.Y, Z: *c.Z}, nil
}

package zeromq

import (
	"fmt"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/open-teleop/steering/domain/steering"
	fb "github.com/open-teleop/steering/pkg/flatbuffers/open_teleop/steering"
)

// Frame is a decoded CommandFrame.
type Frame struct {
	Seq       uint64
	Command   steering.Command
	Timestamp time.Time
	SessionID string
}

// EncodeCommandFrame serializes snap as a CommandFrame flatbuffer.
func EncodeCommandFrame(snap steering.CommandSnapshot, sessionID string) []byte {
	builder := flatbuffers.NewBuilder(64)
	sessionOffset := builder.CreateString(sessionID)

	ts := snap.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	fb.CommandFrameStart(builder)
	fb.CommandFrameAddSeq(builder, snap.Seq)
	fb.CommandFrameAddTurnKind(builder, turnKindToWire(snap.Command.Turn.Kind()))
	fb.CommandFrameAddTurnForce(builder, snap.Command.Turn.Force())
	fb.CommandFrameAddWalk(builder, gaitToWire(snap.Command.Walk))
	fb.CommandFrameAddTimestampNs(builder, ts.UnixNano())
	fb.CommandFrameAddSessionId(builder, sessionOffset)
	fb.FinishCommandFrameBuffer(builder, fb.CommandFrameEnd(builder))

	return builder.FinishedBytes()
}

// DecodeCommandFrame parses a CommandFrame flatbuffer. Truncated or garbled
// buffers yield ErrInvalidMessage.
func DecodeCommandFrame(data []byte) (f Frame, err error) {
	if len(data) < flatbuffers.SizeUOffsetT*2 {
		return Frame{}, fmt.Errorf("%w: %d byte command frame", ErrInvalidMessage, len(data))
	}
	defer func() {
		if r := recover(); r != nil {
			f, err = Frame{}, fmt.Errorf("%w: %v", ErrInvalidMessage, r)
		}
	}()

	msg := fb.GetRootAsCommandFrame(data, 0)

	var turn steering.TurnCommand
	switch msg.TurnKind() {
	case fb.TurnKindLeft:
		turn = steering.Left(msg.TurnForce())
	case fb.TurnKindRight:
		turn = steering.Right(msg.TurnForce())
	case fb.TurnKindIdle:
		turn = steering.IdleTurn
	default:
		return Frame{}, fmt.Errorf("%w: turn kind %s", ErrInvalidMessage, msg.TurnKind())
	}

	var walk steering.WalkCommand
	switch msg.Walk() {
	case fb.GaitIdle:
		walk = steering.WalkIdle
	case fb.GaitWalk:
		walk = steering.Walk
	case fb.GaitRun:
		walk = steering.Run
	default:
		return Frame{}, fmt.Errorf("%w: gait %s", ErrInvalidMessage, msg.Walk())
	}

	return Frame{
		Seq:       msg.Seq(),
		Command:   steering.Command{Turn: turn, Walk: walk},
		Timestamp: time.Unix(0, msg.TimestampNs()),
		SessionID: string(msg.SessionId()),
	}, nil
}

func turnKindToWire(k steering.TurnKind) fb.TurnKind {
	switch k {
	case steering.TurnLeft:
		return fb.TurnKindLeft
	case steering.TurnRight:
		return fb.TurnKindRight
	default:
		return fb.TurnKindIdle
	}
}

func gaitToWire(w steering.WalkCommand) fb.Gait {
	switch w {
	case steering.Walk:
		return fb.GaitWalk
	case steering.Run:
		return fb.GaitRun
	default:
		return fb.GaitIdle
	}
}

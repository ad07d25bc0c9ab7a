package steering

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// TurnKind tags the direction of a TurnCommand.
type TurnKind uint8

const (
	TurnIdle TurnKind = iota
	TurnLeft
	TurnRight
)

func (k TurnKind) String() string {
	switch k {
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	default:
		return "idle"
	}
}

// TurnCommand is Idle, Left(force) or Right(force). Fields are unexported so
// a zero force is only ever represented as Idle.
type TurnCommand struct {
	kind  TurnKind
	force int32
}

// IdleTurn is the turn command that emits nothing.
var IdleTurn = TurnCommand{}

// Left returns Left(force), or Idle when force is not positive.
func Left(force int32) TurnCommand {
	if force <= 0 {
		return IdleTurn
	}
	return TurnCommand{kind: TurnLeft, force: force}
}

// Right returns Right(force), or Idle when force is not positive.
func Right(force int32) TurnCommand {
	if force <= 0 {
		return IdleTurn
	}
	return TurnCommand{kind: TurnRight, force: force}
}

// TurnFromForce maps a signed force to a turn: negative is Left, positive is Right.
func TurnFromForce(force int32) TurnCommand {
	switch {
	case force < 0:
		return Left(-force)
	case force > 0:
		return Right(force)
	default:
		return IdleTurn
	}
}

func (t TurnCommand) Kind() TurnKind { return t.kind }

// Force is the unsigned magnitude; zero for Idle.
func (t TurnCommand) Force() int32 { return t.force }

func (t TurnCommand) IsIdle() bool { return t.kind == TurnIdle }

func (t TurnCommand) String() string {
	switch t.kind {
	case TurnLeft:
		return fmt.Sprintf("Left(%d)", t.force)
	case TurnRight:
		return fmt.Sprintf("Right(%d)", t.force)
	default:
		return "Idle"
	}
}

func (t TurnCommand) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind  string `json:"kind"`
		Force int32  `json:"force"`
	}{Kind: t.kind.String(), Force: t.force})
}

func (t *TurnCommand) UnmarshalJSON(b []byte) error {
	var v struct {
		Kind  string `json:"kind"`
		Force int32  `json:"force"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v.Kind {
	case "left":
		*t = Left(v.Force)
	case "right":
		*t = Right(v.Force)
	case "idle", "":
		*t = IdleTurn
	default:
		return fmt.Errorf("unknown turn kind %q", v.Kind)
	}
	return nil
}

// WalkCommand selects the gait.
type WalkCommand uint8

const (
	WalkIdle WalkCommand = iota
	Walk
	Run
)

func (w WalkCommand) String() string {
	switch w {
	case Walk:
		return "Walk"
	case Run:
		return "Run"
	default:
		return "Idle"
	}
}

func (w WalkCommand) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *WalkCommand) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Idle":
		*w = WalkIdle
	case "Walk":
		*w = Walk
	case "Run":
		*w = Run
	default:
		return fmt.Errorf("unknown walk command %q", b)
	}
	return nil
}

// Command is the pair produced once per decision tick. It is always replaced
// as a whole.
type Command struct {
	Turn TurnCommand `json:"turn"`
	Walk WalkCommand `json:"walk"`
}

// IdleCommand turns and walks nowhere.
var IdleCommand = Command{Turn: IdleTurn, Walk: WalkIdle}

func (c Command) String() string {
	return fmt.Sprintf("turn=%s walk=%s", c.Turn, c.Walk)
}

// CommandSnapshot is a copy of the committed command and its tick sequence.
type CommandSnapshot struct {
	Command   Command   `json:"command"`
	Seq       uint64    `json:"seq"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommandState holds the latest committed Command. The decision engine is the
// only writer; actuators, the diagnostic logger and the API read snapshots.
type CommandState struct {
	mu      sync.RWMutex
	current CommandSnapshot
}

// NewCommandState starts at IdleCommand with sequence 0.
func NewCommandState() *CommandState {
	return &CommandState{current: CommandSnapshot{Command: IdleCommand}}
}

// Commit replaces the current command and returns its sequence number.
func (s *CommandState) Commit(cmd Command) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = CommandSnapshot{
		Command:   cmd,
		Seq:       s.current.Seq + 1,
		UpdatedAt: time.Now(),
	}
	return s.current.Seq
}

// Snapshot returns a copy of the latest committed command.
func (s *CommandState) Snapshot() CommandSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

package steering

import (
	"sync"

	"github.com/open-teleop/steering/pkg/geometry"
)

// Waypoint is a goal position. From is informational only.
type Waypoint struct {
	From   geometry.Vec3 `json:"from"`
	Target geometry.Vec3 `json:"target"`
}

// QueueMode controls what happens when the active waypoint is reached.
type QueueMode string

const (
	// QueueModeQueue pops reached waypoints and moves on to the next.
	QueueModeQueue QueueMode = "queue"
	// QueueModeStatic keeps the first waypoint as a permanent goal.
	QueueModeStatic QueueMode = "static"
)

// QueueSnapshot describes the queue for diagnostics.
type QueueSnapshot struct {
	Mode      QueueMode `json:"mode"`
	Active    *Waypoint `json:"active,omitempty"`
	Remaining int       `json:"remaining"`
	Reached   int       `json:"reached"`
}

// WaypointQueue is an ordered FIFO of goals. Popped waypoints are never revisited.
type WaypointQueue struct {
	mu      sync.Mutex
	mode    QueueMode
	items   []Waypoint
	reached int
}

// NewWaypointQueue copies waypoints in declaration order. In static mode only
// the first waypoint is kept.
func NewWaypointQueue(waypoints []Waypoint, mode QueueMode) *WaypointQueue {
	if mode != QueueModeStatic {
		mode = QueueModeQueue
	}
	items := make([]Waypoint, len(waypoints))
	copy(items, waypoints)
	if mode == QueueModeStatic && len(items) > 1 {
		items = items[:1]
	}
	return &WaypointQueue{mode: mode, items: items}
}

func (q *WaypointQueue) Mode() QueueMode {
	return q.mode
}

// Active returns the head of the queue.
func (q *WaypointQueue) Active() (Waypoint, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Waypoint{}, false
	}
	return q.items[0], true
}

// Pop marks the head as reached. In queue mode it is removed; in static mode
// it stays active. Returns false when the queue is empty.
func (q *WaypointQueue) Pop() (Waypoint, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Waypoint{}, false
	}
	head := q.items[0]
	q.reached++
	if q.mode == QueueModeQueue {
		q.items = q.items[1:]
	}
	return head, true
}

func (q *WaypointQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *WaypointQueue) Snapshot() QueueSnapshot {
	q.mu.Lock()
	defer q.mu.Unlock()

	snap := QueueSnapshot{Mode: q.mode, Remaining: len(q.items), Reached: q.reached}
	if len(q.items) > 0 {
		active := q.items[0]
		snap.Active = &active
	}
	return snap
}

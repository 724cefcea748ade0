// Package navigator steers an agent along a projected path at constant speed, one tick
// at a time. The agent heads straight for its current target waypoint, snaps onto it once
// within the arrival threshold, and only then switches to the next waypoint, so the
// traveled segments between consecutive waypoints are straight lines.
package navigator

import (
	"fmt"

	. "navigation/projection"
)

// State is the steering state of the agent.
type State int

const (
	// Idle: no path, or an empty one. Ticks are no-ops.
	Idle State = iota
	// Following: there is a waypoint not yet reached.
	Following
	// Arrived: every waypoint has been reached. Terminal for a path.
	Arrived
)

func (state State) String() string {
	switch state {
	case Idle:
		return "idle"
	case Following:
		return "following"
	case Arrived:
		return "arrived"
	}
	return fmt.Sprintf("State(%d)", int(state))
}

// MarshalText renders the state by name in JSON frames.
func (state State) MarshalText() ([]byte, error) {
	return []byte(state.String()), nil
}

// UnmarshalText parses a state name, as written by MarshalText.
func (state *State) UnmarshalText(text []byte) error {
	for _, candidate := range []State{Idle, Following, Arrived} {
		if candidate.String() == string(text) {
			*state = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown navigator state %q", text)
}

// DefaultArrivalThreshold is one tenth of a grid cell in world units.
const DefaultArrivalThreshold = 0.1

// Frame is the per-tick output consumed by renderers.
type Frame struct {
	Position WorldPoint `json:"position"`
	// Facing is a unit vector toward the current target waypoint.
	Facing WorldPoint `json:"facing"`
	// Remaining is the path from one waypoint behind the target onward: the segment being
	// traversed plus everything not yet traveled. It aliases the navigator's path and must
	// not be modified.
	Remaining   []WorldPoint `json:"remainingPath"`
	Arrived     bool         `json:"arrived"`
	State       State        `json:"state"`
	TargetIndex int          `json:"targetIndex"`
}

// Navigator owns the agent state for one path assignment. It is not safe for concurrent
// use; a single driver must serialize calls to Tick.
type Navigator struct {
	path      []WorldPoint
	speed     float64
	threshold float64

	position    WorldPoint
	facing      WorldPoint
	targetIndex int
	arrived     bool
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithArrivalThreshold sets the distance under which a waypoint counts as reached.
func WithArrivalThreshold(threshold float64) Option {
	return func(nav *Navigator) {
		if threshold > 0 {
			nav.threshold = threshold
		}
	}
}

// New places an agent at the first waypoint of path, facing +Z. The path is retained,
// not copied, and must not be modified afterward. An empty path yields a permanently
// idle navigator.
func New(path []WorldPoint, speed float64, options ...Option) *Navigator {
	nav := &Navigator{
		path:      path,
		speed:     speed,
		threshold: DefaultArrivalThreshold,
		facing:    WorldPoint{Z: 1},
	}
	for _, option := range options {
		option(nav)
	}
	if len(path) > 0 {
		nav.position = path[0]
	}
	return nav
}

// State returns the current steering state.
func (nav *Navigator) State() State {
	switch {
	case len(nav.path) == 0:
		return Idle
	case nav.arrived || nav.targetIndex >= len(nav.path):
		return Arrived
	}
	return Following
}

func (nav *Navigator) Position() WorldPoint { return nav.position }
func (nav *Navigator) Facing() WorldPoint   { return nav.facing }
func (nav *Navigator) TargetIndex() int     { return nav.targetIndex }
func (nav *Navigator) Path() []WorldPoint   { return nav.path }

// Remaining returns path[max(0, targetIndex-1):], the portion a renderer should draw
// as not yet traveled.
func (nav *Navigator) Remaining() []WorldPoint {
	if len(nav.path) == 0 {
		return nil
	}
	from := nav.targetIndex - 1
	if from < 0 {
		from = 0
	}
	if from > len(nav.path)-1 {
		from = len(nav.path) - 1
	}
	return nav.path[from:]
}

// Frame snapshots the current pose.
func (nav *Navigator) Frame() Frame {
	state := nav.State()
	return Frame{
		Position:    nav.position,
		Facing:      nav.facing,
		Remaining:   nav.Remaining(),
		Arrived:     state == Arrived,
		State:       state,
		TargetIndex: nav.targetIndex,
	}
}

// Tick advances the agent by dt seconds and returns the resulting frame.
// A waypoint within the arrival threshold is snapped onto and the target advances, with no
// other motion that tick. Otherwise the agent moves toward the target by speed*dt, never
// past it. Negative dt is treated as zero.
func (nav *Navigator) Tick(dt float64) Frame {
	if nav.State() != Following {
		return nav.Frame()
	}
	if dt < 0 {
		dt = 0
	}

	target := nav.path[nav.targetIndex]
	offset := target.Sub(nav.position)
	direction, ok := offset.Normalize()
	if ok {
		nav.facing = direction
	}

	distance := offset.Length()
	if !ok || distance < nav.threshold {
		nav.position = target
		nav.targetIndex++
		if nav.targetIndex >= len(nav.path) {
			nav.arrived = true
			nav.position = nav.path[len(nav.path)-1]
		}
		return nav.Frame()
	}

	step := nav.speed * dt
	if step > distance {
		step = distance
	}
	nav.position = nav.position.Add(direction.Scale(step))
	return nav.Frame()
}

package game

import (
	"math"
)

// Event types emitted by the simulation. The ws layer forwards them verbatim
// so the client can play sounds and flashes without re-deriving physics.
const (
	EventWall   = "wall"
	EventBall   = "ball"
	EventPocket = "pocket"
	EventFoul   = "foul"
	EventReset  = "reset"
	EventSolved = "solved"
)

// Event is one noteworthy thing that happened during a step: a cushion hit,
// a ball-on-ball impact, a pocketed ball, a foul, a table reset or a solve.
type Event struct {
	Type  string  `json:"type"`
	Ball  int     `json:"ball"`
	Other int     `json:"other,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

// Engine evaluates table physics. It holds only immutable configuration, so
// one engine serves any number of snapshots concurrently.
type Engine struct {
	Rules Rules
	Table *Table
}

// NewEngine builds an engine and its table geometry from the rules.
func NewEngine(rules Rules) *Engine {
	return &Engine{Rules: rules, Table: NewTable(rules)}
}

// Integrate advances every moving ball by dtMillis of wall-clock time:
// explicit Euler position update, exponential friction, cushion bounces.
// A zero or negative dt returns the snapshot untouched, which makes the
// first frame of a session (no previous timestamp) a no-op by construction.
func (e *Engine) Integrate(s TableState, dtMillis float64) (TableState, []Event) {
	if dtMillis <= 0 {
		return s, nil
	}
	dt := dtMillis / e.Rules.TimeScale
	decay := math.Pow(e.Rules.FrictionBase, dt)

	out := s.Clone()
	var events []Event
	for i := range out.Balls {
		b := &out.Balls[i]
		if !b.Active || b.Vel.IsZero() {
			continue
		}

		b.Pos = b.Pos.Plus(b.Vel.Times(dt))
		b.Vel = b.Vel.Times(decay)
		if b.Vel.Magnitude() < e.Rules.MinSpeed {
			b.Vel = Vec2{}
		}

		// Cushion bounce: reflect the offending component, then clamp the
		// center back inside so a fast ball cannot tunnel out in one frame.
		if b.Pos.X < e.Table.MinX || b.Pos.X > e.Table.MaxX {
			b.Vel = NewVec2(-b.Vel.X, b.Vel.Y)
			events = append(events, Event{Type: EventWall, Ball: b.Number, Speed: b.Vel.Magnitude()})
		}
		if b.Pos.Y < e.Table.MinY || b.Pos.Y > e.Table.MaxY {
			b.Vel = NewVec2(b.Vel.X, -b.Vel.Y)
			events = append(events, Event{Type: EventWall, Ball: b.Number, Speed: b.Vel.Magnitude()})
		}
		b.Pos = e.Table.Clamp(b.Pos)
	}
	return out, events
}

// ResolveCollisions runs one pass over every unordered pair of active balls.
// Overlapping pairs exchange their velocity components along the contact
// normal (equal-mass elastic impact) and are pushed apart by half the
// overlap each, so no pair stays interpenetrating after the call.
func (e *Engine) ResolveCollisions(s TableState) (TableState, []Event) {
	out := s.Clone()
	var events []Event
	for i := 0; i < len(out.Balls); i++ {
		a := &out.Balls[i]
		if !a.Active {
			continue
		}
		for j := i + 1; j < len(out.Balls); j++ {
			b := &out.Balls[j]
			if !b.Active {
				continue
			}
			dist := a.Pos.DistanceTo(b.Pos)
			if dist == 0 || dist >= a.Radius+b.Radius {
				// Coincident centers have no usable normal; leave that pair
				// for the next frame once integration separates them.
				continue
			}

			normal := b.Pos.Minus(a.Pos).Times(1 / dist)
			va := a.Vel.Dot(normal)
			vb := b.Vel.Dot(normal)
			a.Vel = a.Vel.Plus(normal.Times(vb - va))
			b.Vel = b.Vel.Plus(normal.Times(va - vb))

			overlap := (a.Radius + b.Radius - dist) / 2
			a.Pos = e.Table.Clamp(a.Pos.Minus(normal.Times(overlap)))
			b.Pos = e.Table.Clamp(b.Pos.Plus(normal.Times(overlap)))

			events = append(events, Event{
				Type:  EventBall,
				Ball:  a.Number,
				Other: b.Number,
				Speed: fix(math.Abs(va - vb)),
			})
		}
	}
	return out, events
}

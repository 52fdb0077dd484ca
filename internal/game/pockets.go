package game

import (
	"fmt"
	"math/rand"
)

// StepResult is the outcome of one full simulation step: the next snapshot,
// everything that happened during it, and the two transitions the session
// layer reacts to (table reset, puzzle newly solved).
type StepResult struct {
	State  TableState
	Events []Event
	Reset  bool
	Solved bool
}

// EvaluatePockets applies pocket rules to a snapshot. Pocketed numbered
// balls deactivate and score; a pocketed cue ball respawns on its spot and
// counts as a foul whether or not it was active. After all captures the
// running sum is judged once: overshooting the target re-racks the table
// with a fresh target, an exact match with enough balls marks the puzzle
// solved. Judging after the capture loop means two balls dropping on the
// same frame are scored together, never as two separate verdicts.
func (e *Engine) EvaluatePockets(s TableState, rng *rand.Rand) (TableState, []Event) {
	out := s.Clone()
	var events []Event

	for i := range out.Balls {
		b := &out.Balls[i]
		if pocket := e.Table.PocketAt(b.Pos); pocket == nil {
			continue
		}
		if b.IsCue() {
			b.Pos = b.Start
			b.Vel = Vec2{}
			events = append(events, Event{Type: EventFoul, Ball: 0})
			out = out.withFeedback("scratch! cue ball respawned")
			continue
		}
		if !b.Active {
			continue
		}
		b.Active = false
		b.Vel = Vec2{}
		out.PocketedSum += b.Number
		out.PocketedCount++
		events = append(events, Event{Type: EventPocket, Ball: b.Number})
		out = out.withFeedback(fmt.Sprintf("pocketed %d: sum %d of %d", b.Number, out.PocketedSum, out.TargetSum))
	}

	if out.PocketedSum > out.TargetSum {
		events = append(events, Event{Type: EventReset})
		return e.resetTable(out, rng), events
	}
	if !out.Solved && out.PocketedCount >= e.Rules.MinPocketCount && out.PocketedSum == out.TargetSum {
		out.Solved = true
		events = append(events, Event{Type: EventSolved})
		out = out.withFeedback("solved!")
	}
	return out, events
}

// resetTable re-racks every ball and draws a new target after an overshoot.
// The frame counter and feedback sequence carry over so clients see the
// reset as a continuation, not a new session.
func (e *Engine) resetTable(s TableState, rng *rand.Rand) TableState {
	msg := fmt.Sprintf("bust! %d over target %d, table reset", s.PocketedSum, s.TargetSum)
	out := s
	out.Balls = Rack(e.Rules, e.Table)
	out.PocketedSum = 0
	out.PocketedCount = 0
	out.TargetSum = PickTarget(e.Rules, rng)
	out.Aiming = false
	out.AimPoint = Vec2{}
	return out.withFeedback(msg)
}

// Step runs one simulation frame: integrate motion, resolve ball contacts,
// then apply pocket rules. Solved reports only a fresh solve so callers can
// fire one-shot side effects off it.
func (e *Engine) Step(s TableState, dtMillis float64, rng *rand.Rand) StepResult {
	wasSolved := s.Solved

	next, wallEvents := e.Integrate(s, dtMillis)
	next, ballEvents := e.ResolveCollisions(next)
	next, pocketEvents := e.EvaluatePockets(next, rng)
	next.Frame++

	events := make([]Event, 0, len(wallEvents)+len(ballEvents)+len(pocketEvents))
	events = append(events, wallEvents...)
	events = append(events, ballEvents...)
	events = append(events, pocketEvents...)

	result := StepResult{State: next, Events: events}
	for _, ev := range events {
		if ev.Type == EventReset {
			result.Reset = true
		}
	}
	result.Solved = next.Solved && !wasSolved
	return result
}

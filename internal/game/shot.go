package game

import "math"

// Shot describes a released cue strike, for persistence and the shot feed.
type Shot struct {
	Origin   Vec2    `json:"origin"`
	Release  Vec2    `json:"release"`
	Velocity Vec2    `json:"velocity"`
	Power    float64 `json:"power"`
}

// BeginAim starts an aim gesture. It only engages when the press lands on
// the cue ball (within its radius plus the aim tolerance) and the cue is on
// the table; stray presses return the snapshot unchanged.
func (e *Engine) BeginAim(s TableState, point Vec2) (TableState, bool) {
	cue := s.Cue()
	if cue == nil || !cue.Active {
		return s, false
	}
	if point.DistanceTo(cue.Pos) > cue.Radius+e.Rules.AimTolerance {
		return s, false
	}
	out := s.Clone()
	out.Aiming = true
	out.AimPoint = point
	return out, true
}

// MoveAim tracks the pointer during an aim gesture. Outside a gesture it is
// a no-op, so late or duplicate move events cannot conjure an aim line.
func (e *Engine) MoveAim(s TableState, point Vec2) TableState {
	if !s.Aiming {
		return s
	}
	out := s.Clone()
	out.AimPoint = point
	return out
}

// ReleaseAim ends the gesture and, when valid, fires the cue ball toward
// the release point with speed proportional to the drag distance, capped at
// MaxShotSpeed. A release on the cue center fires nothing: there is no
// direction to normalize. The aim state clears in every branch.
func (e *Engine) ReleaseAim(s TableState, point Vec2) (TableState, Shot, bool) {
	out := s.Clone()
	out.Aiming = false
	out.AimPoint = Vec2{}
	if !s.Aiming {
		return out, Shot{}, false
	}

	cue := out.Cue()
	if cue == nil || !cue.Active {
		return out, Shot{}, false
	}
	pull := point.Minus(cue.Pos)
	dist := pull.Magnitude()
	if dist == 0 {
		return out, Shot{}, false
	}

	power := math.Min(dist*e.Rules.PowerScale, e.Rules.MaxShotSpeed)
	cue.Vel = pull.Normalize().Times(power)

	shot := Shot{
		Origin:   cue.Pos,
		Release:  point,
		Velocity: cue.Vel,
		Power:    fix(power),
	}
	return out, shot, true
}

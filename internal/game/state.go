package game

import "math/rand"

// Ball is one ball on the table. Number 0 is the cue ball; numbered balls
// carry their catalog point value in Number. Start remembers the rack spot
// so resets and cue respawns need no table lookup.
type Ball struct {
	Number int     `json:"number"`
	Color  string  `json:"color"`
	Radius float64 `json:"radius"`
	Pos    Vec2    `json:"pos"`
	Vel    Vec2    `json:"vel"`
	Start  Vec2    `json:"start"`
	Active bool    `json:"active"`
}

// IsCue reports whether this is the cue ball.
func (b Ball) IsCue() bool { return b.Number == 0 }

// Moving reports whether the ball has nonzero velocity.
func (b Ball) Moving() bool { return b.Active && !b.Vel.IsZero() }

// TableState is one immutable snapshot of a running table. Transition
// functions on Engine take a snapshot and return a new one; nothing mutates
// a snapshot the caller still holds, so frames can be serialized, diffed and
// replayed safely from any goroutine.
type TableState struct {
	Frame         uint64 `json:"frame"`
	Balls         []Ball `json:"balls"`
	TargetSum     int    `json:"target_sum"`
	PocketedSum   int    `json:"pocketed_sum"`
	PocketedCount int    `json:"pocketed_count"`
	Solved        bool   `json:"solved"`

	Aiming   bool `json:"aiming"`
	AimPoint Vec2 `json:"aim_point"`

	// Feedback is the last rule message ("scratch", "over target" ...) with a
	// sequence number so clients can distinguish repeats of the same text.
	Feedback    string `json:"feedback,omitempty"`
	FeedbackSeq int    `json:"feedback_seq"`
}

// Clone deep-copies the snapshot. Balls is the only reference field.
func (s TableState) Clone() TableState {
	out := s
	out.Balls = make([]Ball, len(s.Balls))
	copy(out.Balls, s.Balls)
	return out
}

// Ball returns a pointer to the ball with the given number inside this
// snapshot, or nil. Callers only use it on snapshots they own.
func (s *TableState) Ball(number int) *Ball {
	for i := range s.Balls {
		if s.Balls[i].Number == number {
			return &s.Balls[i]
		}
	}
	return nil
}

// Cue returns the cue ball of this snapshot, or nil if the rack had none.
func (s *TableState) Cue() *Ball { return s.Ball(0) }

// ActiveCount returns how many numbered balls are still on the table.
func (s TableState) ActiveCount() int {
	n := 0
	for _, b := range s.Balls {
		if b.Active && !b.IsCue() {
			n++
		}
	}
	return n
}

// AnyMoving reports whether any active ball still has velocity. The shot
// feed uses it to tell "table settled" apart from "balls rolling".
func (s TableState) AnyMoving() bool {
	for _, b := range s.Balls {
		if b.Moving() {
			return true
		}
	}
	return false
}

// NewTableState racks a fresh table and draws the first target sum.
func NewTableState(rules Rules, table *Table, rng *rand.Rand) TableState {
	return TableState{
		Balls:     Rack(rules, table),
		TargetSum: PickTarget(rules, rng),
	}
}

// withFeedback returns a copy of the snapshot carrying a new feedback
// message. The sequence bump marks it fresh even when the text repeats.
func (s TableState) withFeedback(msg string) TableState {
	s.Feedback = msg
	s.FeedbackSeq++
	return s
}

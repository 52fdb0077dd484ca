package game

import (
	"math"
	"testing"
)

// Helper to build a snapshot with only the listed balls on the default table.
func setupBalls(balls ...Ball) (*Engine, TableState) {
	engine := NewEngine(DefaultRules())
	for i := range balls {
		if balls[i].Radius == 0 {
			balls[i].Radius = engine.Rules.BallRadius
		}
		balls[i].Active = true
	}
	return engine, TableState{Balls: balls, TargetSum: 78}
}

func TestIntegrateZeroDtIsNoOp(t *testing.T) {
	engine, state := setupBalls(Ball{Number: 0, Pos: NewVec2(400, 250), Vel: NewVec2(100, 0)})

	next, events := engine.Integrate(state, 0)

	if !next.Balls[0].Pos.IsEqualTo(state.Balls[0].Pos) || !next.Balls[0].Vel.IsEqualTo(state.Balls[0].Vel) {
		t.Errorf("zero dt moved the ball: pos=%v vel=%v", next.Balls[0].Pos, next.Balls[0].Vel)
	}
	if len(events) != 0 {
		t.Errorf("zero dt produced events: %v", events)
	}
}

func TestIntegrateEulerAndFriction(t *testing.T) {
	// 100ms at time scale 100 is one simulation second: the ball travels its
	// full velocity and keeps exactly the friction base of it.
	engine, state := setupBalls(Ball{Number: 0, Pos: NewVec2(400, 250), Vel: NewVec2(100, 0)})

	next, _ := engine.Integrate(state, 100)

	b := next.Balls[0]
	if b.Pos.X != 500 || b.Pos.Y != 250 {
		t.Errorf("expected position (500,250), got (%v,%v)", b.Pos.X, b.Pos.Y)
	}
	if b.Vel.X != 85 {
		t.Errorf("expected velocity 85 after friction, got %v", b.Vel.X)
	}
}

func TestIntegrateFrictionIsFrameRateIndependent(t *testing.T) {
	// One 100ms step and four 25ms steps must end at the same speed.
	engine, one := setupBalls(Ball{Number: 0, Pos: NewVec2(100, 250), Vel: NewVec2(200, 0)})
	_, four := setupBalls(Ball{Number: 0, Pos: NewVec2(100, 250), Vel: NewVec2(200, 0)})

	one, _ = engine.Integrate(one, 100)
	for i := 0; i < 4; i++ {
		four, _ = engine.Integrate(four, 25)
	}

	// The fixed-precision rounding after every multiply leaves a small
	// residue between the two paths; anything past that is a real bug.
	diff := math.Abs(one.Balls[0].Vel.X - four.Balls[0].Vel.X)
	if diff > 0.1 {
		t.Errorf("friction depends on step size: 1x100ms=%v vs 4x25ms=%v", one.Balls[0].Vel.X, four.Balls[0].Vel.X)
	}
}

func TestIntegrateSnapsSlowBallsToRest(t *testing.T) {
	engine, state := setupBalls(Ball{Number: 0, Pos: NewVec2(400, 250), Vel: NewVec2(0.5, 0)})

	next, _ := engine.Integrate(state, 100)

	if !next.Balls[0].Vel.IsZero() {
		t.Errorf("ball below min speed should stop, got vel %v", next.Balls[0].Vel)
	}
}

func TestIntegrateWallBounce(t *testing.T) {
	// Ball heading past the right cushion: the x velocity flips and the
	// center is clamped back inside the bounds.
	engine, state := setupBalls(Ball{Number: 3, Pos: NewVec2(780, 250), Vel: NewVec2(100, 0)})

	next, events := engine.Integrate(state, 100)

	b := next.Balls[0]
	if b.Vel.X >= 0 {
		t.Errorf("x velocity should be negative after right-wall bounce, got %v", b.Vel.X)
	}
	if b.Pos.X > engine.Table.MaxX {
		t.Errorf("ball clamped outside table: x=%v max=%v", b.Pos.X, engine.Table.MaxX)
	}

	wall := false
	for _, e := range events {
		if e.Type == EventWall && e.Ball == 3 {
			wall = true
		}
	}
	if !wall {
		t.Error("expected a wall event for ball 3")
	}
}

func TestIntegrateCornerBounceFlipsBothAxes(t *testing.T) {
	engine, state := setupBalls(Ball{Number: 1, Pos: NewVec2(780, 480), Vel: NewVec2(200, 200)})

	next, _ := engine.Integrate(state, 100)

	b := next.Balls[0]
	if b.Vel.X >= 0 || b.Vel.Y >= 0 {
		t.Errorf("corner bounce should flip both components, got vel %v", b.Vel)
	}
	if !engine.Table.Contains(b.Pos) {
		t.Errorf("ball outside bounds after corner bounce: %v", b.Pos)
	}
}

func TestIntegrateSkipsInactiveBalls(t *testing.T) {
	engine, state := setupBalls(Ball{Number: 5, Pos: NewVec2(400, 250), Vel: NewVec2(100, 0)})
	state.Balls[0].Active = false

	next, _ := engine.Integrate(state, 100)

	if next.Balls[0].Pos.X != 400 {
		t.Errorf("inactive ball moved: x=%v", next.Balls[0].Pos.X)
	}
}

func TestCollisionHeadOnSwapsVelocity(t *testing.T) {
	// Equal-mass head-on impact: the moving ball stops, the resting ball
	// takes the full speed along the contact normal.
	engine, state := setupBalls(
		Ball{Number: 0, Pos: NewVec2(400, 250), Vel: NewVec2(50, 0)},
		Ball{Number: 1, Pos: NewVec2(420, 250)},
	)

	next, events := engine.ResolveCollisions(state)

	a, b := next.Balls[0], next.Balls[1]
	if a.Vel.X != 0 || b.Vel.X != 50 {
		t.Errorf("expected full transfer, got a=%v b=%v", a.Vel.X, b.Vel.X)
	}
	if len(events) != 1 || events[0].Type != EventBall {
		t.Fatalf("expected one ball event, got %v", events)
	}
	if events[0].Ball != 0 || events[0].Other != 1 {
		t.Errorf("event should name both balls, got %+v", events[0])
	}
	if events[0].Speed != 50 {
		t.Errorf("impact speed should be the normal velocity difference 50, got %v", events[0].Speed)
	}
}

func TestCollisionPreservesTangentialVelocity(t *testing.T) {
	// Only the normal component trades hands; the grazing component stays.
	engine, state := setupBalls(
		Ball{Number: 0, Pos: NewVec2(400, 250), Vel: NewVec2(50, 30)},
		Ball{Number: 1, Pos: NewVec2(420, 250)},
	)

	next, _ := engine.ResolveCollisions(state)

	a, b := next.Balls[0], next.Balls[1]
	if a.Vel.X != 0 || a.Vel.Y != 30 {
		t.Errorf("striker should keep tangential (0,30), got %v", a.Vel)
	}
	if b.Vel.X != 50 || b.Vel.Y != 0 {
		t.Errorf("struck ball should take normal (50,0), got %v", b.Vel)
	}
}

func TestCollisionSeparatesOverlap(t *testing.T) {
	engine, state := setupBalls(
		Ball{Number: 0, Pos: NewVec2(400, 250), Vel: NewVec2(50, 0)},
		Ball{Number: 1, Pos: NewVec2(420, 250)},
	)

	next, _ := engine.ResolveCollisions(state)

	dist := next.Balls[0].Pos.DistanceTo(next.Balls[1].Pos)
	sum := next.Balls[0].Radius + next.Balls[1].Radius
	if dist < sum-0.001 {
		t.Errorf("pair still interpenetrating: dist=%v sum=%v", dist, sum)
	}
}

func TestCollisionSkipsCoincidentCenters(t *testing.T) {
	// Perfectly stacked centers have no contact normal; the pair is left for
	// a later frame instead of producing NaN velocities.
	engine, state := setupBalls(
		Ball{Number: 0, Pos: NewVec2(400, 250), Vel: NewVec2(50, 0)},
		Ball{Number: 1, Pos: NewVec2(400, 250)},
	)

	next, events := engine.ResolveCollisions(state)

	if len(events) != 0 {
		t.Errorf("coincident pair should be skipped, got events %v", events)
	}
	if next.Balls[0].Vel.X != 50 {
		t.Errorf("velocities must be untouched, got %v", next.Balls[0].Vel)
	}
}

func TestCollisionIgnoresInactiveBalls(t *testing.T) {
	engine, state := setupBalls(
		Ball{Number: 0, Pos: NewVec2(400, 250), Vel: NewVec2(50, 0)},
		Ball{Number: 1, Pos: NewVec2(410, 250)},
	)
	state.Balls[1].Active = false

	_, events := engine.ResolveCollisions(state)

	if len(events) != 0 {
		t.Errorf("pocketed balls must not collide, got %v", events)
	}
}

func TestCollisionSeparatedBallsUntouched(t *testing.T) {
	engine, state := setupBalls(
		Ball{Number: 0, Pos: NewVec2(400, 250), Vel: NewVec2(50, 0)},
		Ball{Number: 1, Pos: NewVec2(430, 250)},
	)

	next, events := engine.ResolveCollisions(state)

	if len(events) != 0 {
		t.Errorf("balls 30 apart do not touch, got %v", events)
	}
	if next.Balls[1].Vel.X != 0 {
		t.Errorf("resting ball gained velocity: %v", next.Balls[1].Vel)
	}
}

func TestStepDeterminism(t *testing.T) {
	// Same snapshot, same dt, same outcome, every time.
	run := func() TableState {
		engine, state := setupBalls(
			Ball{Number: 0, Pos: NewVec2(200, 250), Vel: NewVec2(800, 35)},
			Ball{Number: 1, Pos: NewVec2(520, 250)},
			Ball{Number: 2, Pos: NewVec2(546, 237)},
		)
		for i := 0; i < 300; i++ {
			state, _ = engine.Integrate(state, 16.6667)
			state, _ = engine.ResolveCollisions(state)
		}
		return state
	}

	a, b := run(), run()
	for i := range a.Balls {
		if !a.Balls[i].Pos.IsEqualTo(b.Balls[i].Pos) || !a.Balls[i].Vel.IsEqualTo(b.Balls[i].Vel) {
			t.Errorf("run diverged at ball %d: %v vs %v", i, a.Balls[i].Pos, b.Balls[i].Pos)
		}
	}
}

func TestStepImmutability(t *testing.T) {
	// Transition functions must never write through to the input snapshot.
	engine, state := setupBalls(
		Ball{Number: 0, Pos: NewVec2(400, 250), Vel: NewVec2(100, 0)},
		Ball{Number: 1, Pos: NewVec2(420, 250)},
	)
	beforePos := state.Balls[0].Pos
	beforeVel := state.Balls[0].Vel

	engine.Integrate(state, 100)
	engine.ResolveCollisions(state)

	if !state.Balls[0].Pos.IsEqualTo(beforePos) || !state.Balls[0].Vel.IsEqualTo(beforeVel) {
		t.Errorf("input snapshot mutated: pos=%v vel=%v", state.Balls[0].Pos, state.Balls[0].Vel)
	}
}

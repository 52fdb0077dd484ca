package game

import (
	"math"
	"testing"
)

// aimedState racks a default table and starts an aim on the cue ball.
func aimedState(t *testing.T) (*Engine, TableState) {
	t.Helper()
	engine, state := rackState(78)
	state, ok := engine.BeginAim(state, state.Cue().Pos)
	if !ok {
		t.Fatal("press on the cue center must start an aim")
	}
	return engine, state
}

func TestBeginAimRequiresPressOnCue(t *testing.T) {
	engine, state := rackState(78)
	cue := state.Cue().Pos

	// Inside radius+tolerance (12+8=20) engages, outside does not.
	if _, ok := engine.BeginAim(state, cue.Plus(NewVec2(19, 0))); !ok {
		t.Error("press 19px from the cue center should engage")
	}
	if _, ok := engine.BeginAim(state, cue.Plus(NewVec2(21, 0))); ok {
		t.Error("press 21px from the cue center must not engage")
	}
}

func TestBeginAimRequiresActiveCue(t *testing.T) {
	engine, state := rackState(78)
	state.Cue().Active = false

	if _, ok := engine.BeginAim(state, state.Cue().Pos); ok {
		t.Error("aim must not engage without the cue on the table")
	}
}

func TestMoveAimOnlyDuringGesture(t *testing.T) {
	engine, state := rackState(78)

	moved := engine.MoveAim(state, NewVec2(300, 300))
	if moved.Aiming || !moved.AimPoint.IsZero() {
		t.Error("a move without a press must not start an aim")
	}

	_, aiming := aimedState(t)
	tracked := engine.MoveAim(aiming, NewVec2(300, 300))
	if !tracked.Aiming || !tracked.AimPoint.IsEqualTo(NewVec2(300, 300)) {
		t.Errorf("aim point should follow the pointer, got %v", tracked.AimPoint)
	}
}

func TestReleaseAimFiresTowardReleasePoint(t *testing.T) {
	engine, state := aimedState(t)
	cue := state.Cue().Pos

	next, shot, fired := engine.ReleaseAim(state, cue.Plus(NewVec2(100, 0)))
	if !fired {
		t.Fatal("release 100px from the cue should fire")
	}

	// Power is drag distance times the power scale: 100 * 0.5 = 50.
	if shot.Power != 50 {
		t.Errorf("expected power 50, got %v", shot.Power)
	}
	vel := next.Cue().Vel
	if vel.X != 50 || vel.Y != 0 {
		t.Errorf("cue should fire toward the release point at (50,0), got %v", vel)
	}
}

func TestReleaseAimCapsPower(t *testing.T) {
	engine, state := aimedState(t)
	cue := state.Cue().Pos

	// 3000px of drag would be 1500 power; the cap holds it at 1000.
	_, shot, fired := engine.ReleaseAim(state, cue.Plus(NewVec2(0, 3000)))
	if !fired {
		t.Fatal("long drag should fire")
	}
	if shot.Power != 1000 {
		t.Errorf("expected capped power 1000, got %v", shot.Power)
	}
	if math.Abs(shot.Velocity.Y-1000) > 0.001 {
		t.Errorf("expected velocity (0,1000), got %v", shot.Velocity)
	}
}

func TestReleaseOnCueCenterFiresNothing(t *testing.T) {
	engine, state := aimedState(t)

	next, _, fired := engine.ReleaseAim(state, state.Cue().Pos)
	if fired {
		t.Error("zero drag has no direction and must not fire")
	}
	if !next.Cue().Vel.IsZero() {
		t.Errorf("cue must stay at rest, got %v", next.Cue().Vel)
	}
	if next.Aiming {
		t.Error("aim state should clear even when nothing fires")
	}
}

func TestReleaseWithoutAimIsIgnored(t *testing.T) {
	engine, state := rackState(78)

	next, _, fired := engine.ReleaseAim(state, NewVec2(500, 250))
	if fired {
		t.Error("release without a preceding press must not fire")
	}
	if !next.Cue().Vel.IsZero() {
		t.Errorf("cue gained velocity without an aim: %v", next.Cue().Vel)
	}
}

func TestReleaseAimClearsAimState(t *testing.T) {
	engine, state := aimedState(t)

	next, _, _ := engine.ReleaseAim(state, state.Cue().Pos.Plus(NewVec2(80, 0)))
	if next.Aiming || !next.AimPoint.IsZero() {
		t.Errorf("aim state should clear on release, got aiming=%v point=%v", next.Aiming, next.AimPoint)
	}
}

func TestShotRecordsOriginAndRelease(t *testing.T) {
	engine, state := aimedState(t)
	cue := state.Cue().Pos
	release := cue.Plus(NewVec2(0, -120))

	_, shot, fired := engine.ReleaseAim(state, release)
	if !fired {
		t.Fatal("expected the shot to fire")
	}
	if !shot.Origin.IsEqualTo(cue) || !shot.Release.IsEqualTo(release) {
		t.Errorf("shot should record origin %v and release %v, got %v and %v",
			cue, release, shot.Origin, shot.Release)
	}
}

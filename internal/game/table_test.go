package game

import "testing"

func TestRackPlacesWholeCatalogInBounds(t *testing.T) {
	rules := DefaultRules()
	table := NewTable(rules)
	balls := Rack(rules, table)

	if len(balls) != len(rules.Catalog)+1 {
		t.Fatalf("expected %d balls (catalog + cue), got %d", len(rules.Catalog)+1, len(balls))
	}
	if !balls[0].IsCue() {
		t.Error("first racked ball should be the cue")
	}
	for _, b := range balls {
		if !b.Active {
			t.Errorf("ball %d should rack active", b.Number)
		}
		if !table.Contains(b.Pos) {
			t.Errorf("ball %d racked out of bounds at %v", b.Number, b.Pos)
		}
		if !b.Pos.IsEqualTo(b.Start) {
			t.Errorf("ball %d start spot should match rack position", b.Number)
		}
	}
}

func TestRackHasNoInitialContacts(t *testing.T) {
	// The rack leaves a gap between neighbors so frame one resolves no
	// collisions and the break shot is the first contact.
	rules := DefaultRules()
	table := NewTable(rules)
	balls := Rack(rules, table)

	for i := 0; i < len(balls); i++ {
		for j := i + 1; j < len(balls); j++ {
			dist := balls[i].Pos.DistanceTo(balls[j].Pos)
			if dist < balls[i].Radius+balls[j].Radius {
				t.Errorf("balls %d and %d rack in contact (dist %v)", balls[i].Number, balls[j].Number, dist)
			}
		}
	}
}

func TestRackStartsOutsidePockets(t *testing.T) {
	rules := DefaultRules()
	table := NewTable(rules)
	for _, b := range Rack(rules, table) {
		if table.PocketAt(b.Pos) != nil {
			t.Errorf("ball %d racked inside a pocket at %v", b.Number, b.Pos)
		}
	}
}

func TestPocketAtCorners(t *testing.T) {
	table := NewTable(DefaultRules())

	if table.PocketAt(NewVec2(5, 5)) == nil {
		t.Error("point near the top-left corner should be in a pocket")
	}
	if table.PocketAt(NewVec2(795, 495)) == nil {
		t.Error("point near the bottom-right corner should be in a pocket")
	}
	if table.PocketAt(NewVec2(400, 250)) != nil {
		t.Error("table center is not a pocket")
	}
}

func TestCornerPocketsReachableDespiteClamp(t *testing.T) {
	// The wall clamp stops ball centers at (MinX,MinY); the pocket radius
	// must still capture from there or corner pockets would be decorative.
	rules := DefaultRules()
	table := NewTable(rules)

	corner := NewVec2(table.MinX, table.MinY)
	if table.PocketAt(corner) == nil {
		t.Errorf("clamped corner position %v must be inside the pocket", corner)
	}
}

func TestClampKeepsCenterInBounds(t *testing.T) {
	table := NewTable(DefaultRules())

	cases := []struct{ in, want Vec2 }{
		{NewVec2(-50, 250), NewVec2(table.MinX, 250)},
		{NewVec2(900, 250), NewVec2(table.MaxX, 250)},
		{NewVec2(400, -10), NewVec2(400, table.MinY)},
		{NewVec2(400, 600), NewVec2(400, table.MaxY)},
		{NewVec2(400, 250), NewVec2(400, 250)},
	}
	for _, c := range cases {
		if got := table.Clamp(c.in); !got.IsEqualTo(c.want) {
			t.Errorf("Clamp(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRackHandlesOversizedCatalog(t *testing.T) {
	// Catalogs bigger than the triangle spill into extra columns instead of
	// silently dropping balls.
	rules := DefaultRules()
	for v := 13; v <= 18; v++ {
		rules.Catalog = append(rules.Catalog, CatalogBall{Value: v, Color: "#000000"})
	}
	table := NewTable(rules)
	balls := Rack(rules, table)

	if len(balls) != 19 {
		t.Fatalf("expected 19 balls, got %d", len(balls))
	}
	for _, b := range balls {
		if !table.Contains(b.Pos) {
			t.Errorf("ball %d out of bounds at %v", b.Number, b.Pos)
		}
	}
}

package game

// Pocket is a circular capture zone. A ball whose center comes within
// Radius of Pos is pocketed on that frame.
type Pocket struct {
	Pos    Vec2    `json:"pos"`
	Radius float64 `json:"radius"`
}

// Table is the static playfield geometry derived from the rules: outer
// bounds, the four corner pockets, and the rack anchor points. It never
// changes during a session, so snapshots share one Table.
type Table struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// Cushion bounds for a ball center, pre-shrunk by the ball radius.
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`

	Pockets []Pocket `json:"pockets"`

	// CueSpot is where the cue ball racks and respawns after a scratch.
	CueSpot Vec2 `json:"cue_spot"`
	// RackSpot anchors the leftmost column of the numbered-ball triangle.
	RackSpot Vec2 `json:"rack_spot"`
}

// rackColumns is the triangle layout of the numbered rack, left to right.
// The counts must sum to the catalog size.
var rackColumns = []int{1, 2, 3, 4, 2}

// NewTable builds the playfield for the given rules: corner pockets only,
// cue spot on the left quarter line, rack triangle opening to the right.
func NewTable(rules Rules) *Table {
	t := &Table{
		Width:  rules.TableWidth,
		Height: rules.TableHeight,
		MinX:   rules.BallRadius,
		MaxX:   rules.TableWidth - rules.BallRadius,
		MinY:   rules.BallRadius,
		MaxY:   rules.TableHeight - rules.BallRadius,
	}
	t.Pockets = []Pocket{
		{Pos: NewVec2(0, 0), Radius: rules.PocketRadius},
		{Pos: NewVec2(rules.TableWidth, 0), Radius: rules.PocketRadius},
		{Pos: NewVec2(0, rules.TableHeight), Radius: rules.PocketRadius},
		{Pos: NewVec2(rules.TableWidth, rules.TableHeight), Radius: rules.PocketRadius},
	}
	t.CueSpot = NewVec2(rules.TableWidth*0.25, rules.TableHeight*0.5)
	t.RackSpot = NewVec2(rules.TableWidth*0.65, rules.TableHeight*0.5)
	return t
}

// Clamp returns pos constrained to the cushion bounds.
func (t *Table) Clamp(pos Vec2) Vec2 {
	x, y := pos.X, pos.Y
	if x < t.MinX {
		x = t.MinX
	} else if x > t.MaxX {
		x = t.MaxX
	}
	if y < t.MinY {
		y = t.MinY
	} else if y > t.MaxY {
		y = t.MaxY
	}
	return NewVec2(x, y)
}

// Contains reports whether pos is within the cushion bounds.
func (t *Table) Contains(pos Vec2) bool {
	return pos.X >= t.MinX && pos.X <= t.MaxX && pos.Y >= t.MinY && pos.Y <= t.MaxY
}

// PocketAt returns the first pocket capturing pos, or nil.
func (t *Table) PocketAt(pos Vec2) *Pocket {
	for i := range t.Pockets {
		if pos.DistanceTo(t.Pockets[i].Pos) <= t.Pockets[i].Radius {
			return &t.Pockets[i]
		}
	}
	return nil
}

// Rack lays out the full set of balls at their starting spots: the cue ball
// on the cue spot and the catalog racked in a triangle behind the rack spot.
// Column spacing leaves a 2px gap so no two balls start in contact.
func Rack(rules Rules, table *Table) []Ball {
	balls := make([]Ball, 0, len(rules.Catalog)+1)
	balls = append(balls, Ball{
		Number: 0,
		Color:  rules.CueColor,
		Radius: rules.BallRadius,
		Pos:    table.CueSpot,
		Start:  table.CueSpot,
		Active: true,
	})

	gap := rules.BallRadius*2 + 2
	idx := 0
	for col, count := range rackColumns {
		x := table.RackSpot.X + float64(col)*gap
		for row := 0; row < count; row++ {
			if idx >= len(rules.Catalog) {
				break
			}
			y := table.RackSpot.Y + (float64(row)-float64(count-1)/2)*gap
			cb := rules.Catalog[idx]
			balls = append(balls, Ball{
				Number: cb.Value,
				Color:  cb.Color,
				Radius: rules.BallRadius,
				Pos:    NewVec2(x, y),
				Start:  NewVec2(x, y),
				Active: true,
			})
			idx++
		}
	}
	// Overflow catalogs spill into extra columns past the triangle.
	for col := len(rackColumns); idx < len(rules.Catalog); col++ {
		x := table.RackSpot.X + float64(col)*gap
		for row := 0; row < 4 && idx < len(rules.Catalog); row++ {
			y := table.RackSpot.Y + (float64(row)-1.5)*gap
			cb := rules.Catalog[idx]
			balls = append(balls, Ball{
				Number: cb.Value,
				Color:  cb.Color,
				Radius: rules.BallRadius,
				Pos:    NewVec2(x, y),
				Start:  NewVec2(x, y),
				Active: true,
			})
			idx++
		}
	}
	return balls
}

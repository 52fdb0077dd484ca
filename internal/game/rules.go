package game

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogBall is one entry of the numbered-ball catalog: its point value and
// the color the client renders it with. The catalog is configuration, not
// logic; the physics engine never looks at colors.
type CatalogBall struct {
	Value int    `yaml:"value" json:"value"`
	Color string `yaml:"color" json:"color"`
}

// Rules holds every tunable of the table: geometry, physics constants and the
// win condition. The zero value is not usable; start from DefaultRules and
// override via YAML or the runtime tuning table.
type Rules struct {
	TableWidth  float64 `yaml:"table_width" json:"table_width"`
	TableHeight float64 `yaml:"table_height" json:"table_height"`
	BallRadius  float64 `yaml:"ball_radius" json:"ball_radius"`
	// PocketRadius is the capture radius of the four corner pockets. It must
	// exceed sqrt(2)*BallRadius or the wall clamp keeps balls out of reach.
	PocketRadius float64 `yaml:"pocket_radius" json:"pocket_radius"`

	// FrictionBase is the per-simulation-second velocity retention factor,
	// applied as FrictionBase^dt so decay is frame-rate independent.
	FrictionBase float64 `yaml:"friction_base" json:"friction_base"`
	// TimeScale converts wall-clock milliseconds to simulation seconds
	// (dt = elapsedMillis / TimeScale). At 100, velocities read as "pixels
	// per 100ms" and friction bites 0.85 per 100ms of real time.
	TimeScale float64 `yaml:"time_scale" json:"time_scale"`
	// MinSpeed is the magnitude below which a ball is snapped to rest.
	MinSpeed float64 `yaml:"min_speed" json:"min_speed"`

	PowerScale   float64 `yaml:"power_scale" json:"power_scale"`
	MaxShotSpeed float64 `yaml:"max_shot_speed" json:"max_shot_speed"`
	AimTolerance float64 `yaml:"aim_tolerance" json:"aim_tolerance"`

	// MinPocketCount is the minimum number of pocketed balls for a win; the
	// pocketed sum must additionally equal the target exactly.
	MinPocketCount int `yaml:"min_pocket_count" json:"min_pocket_count"`
	// SolveDelayMillis delays the outward solved signal so the player sees
	// the winning state before the page advances.
	SolveDelayMillis int `yaml:"solve_delay_millis" json:"solve_delay_millis"`

	// TickHz is the simulation loop frequency.
	TickHz int `yaml:"tick_hz" json:"tick_hz"`

	CueColor string        `yaml:"cue_color" json:"cue_color"`
	Catalog  []CatalogBall `yaml:"catalog" json:"catalog"`
}

// DefaultRules returns the shipped configuration: a 12-ball catalog valued
// 1..12 on an 800x500 table, win at >= 7 balls matching the target sum.
func DefaultRules() Rules {
	return Rules{
		TableWidth:   800,
		TableHeight:  500,
		BallRadius:   12,
		PocketRadius: 26,

		FrictionBase: 0.85,
		TimeScale:    100,
		MinSpeed:     0.5,

		PowerScale:   0.5,
		MaxShotSpeed: 1000,
		AimTolerance: 8,

		MinPocketCount:   7,
		SolveDelayMillis: 1500,

		TickHz: 60,

		CueColor: "#FAFAFA",
		Catalog: []CatalogBall{
			{Value: 1, Color: "#FDD835"},
			{Value: 2, Color: "#1E88E5"},
			{Value: 3, Color: "#E53935"},
			{Value: 4, Color: "#8E24AA"},
			{Value: 5, Color: "#FB8C00"},
			{Value: 6, Color: "#43A047"},
			{Value: 7, Color: "#6D4C41"},
			{Value: 8, Color: "#212121"},
			{Value: 9, Color: "#00897B"},
			{Value: 10, Color: "#D81B60"},
			{Value: 11, Color: "#C0CA33"},
			{Value: 12, Color: "#3949AB"},
		},
	}
}

// LoadRules reads a YAML rules file, layered over DefaultRules so partial
// files only override what they mention.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	data, err := os.ReadFile(path)
	if err != nil {
		return rules, err
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return rules, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return rules, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return rules, nil
}

// SaveRules writes the rules as YAML, mainly so tablesim can emit a template.
func SaveRules(path string, rules Rules) error {
	data, err := yaml.Marshal(rules)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the simulation cannot run with.
func (r Rules) Validate() error {
	if r.TableWidth <= 4*r.BallRadius || r.TableHeight <= 4*r.BallRadius {
		return fmt.Errorf("table %gx%g too small for ball radius %g", r.TableWidth, r.TableHeight, r.BallRadius)
	}
	if r.BallRadius <= 0 {
		return fmt.Errorf("ball radius must be positive, got %g", r.BallRadius)
	}
	if r.PocketRadius*r.PocketRadius <= 2*r.BallRadius*r.BallRadius {
		return fmt.Errorf("pocket radius %g cannot capture balls of radius %g (corner clamp)", r.PocketRadius, r.BallRadius)
	}
	if r.FrictionBase <= 0 || r.FrictionBase >= 1 {
		return fmt.Errorf("friction base must be in (0,1), got %g", r.FrictionBase)
	}
	if r.TimeScale <= 0 {
		return fmt.Errorf("time scale must be positive, got %g", r.TimeScale)
	}
	if r.MaxShotSpeed <= 0 || r.PowerScale <= 0 {
		return fmt.Errorf("shot power constants must be positive")
	}
	if r.TickHz <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", r.TickHz)
	}
	if len(r.Catalog) == 0 {
		return fmt.Errorf("ball catalog is empty")
	}
	if r.MinPocketCount <= 0 || r.MinPocketCount > len(r.Catalog) {
		return fmt.Errorf("min pocket count %d out of range for %d-ball catalog", r.MinPocketCount, len(r.Catalog))
	}
	seen := make(map[int]bool, len(r.Catalog))
	for _, cb := range r.Catalog {
		if cb.Value <= 0 {
			return fmt.Errorf("catalog value %d must be positive", cb.Value)
		}
		if seen[cb.Value] {
			return fmt.Errorf("duplicate catalog value %d", cb.Value)
		}
		seen[cb.Value] = true
	}
	return nil
}

// CatalogValues returns the point values of the catalog in declaration order.
func (r Rules) CatalogValues() []int {
	values := make([]int, len(r.Catalog))
	for i, cb := range r.Catalog {
		values[i] = cb.Value
	}
	return values
}

// CatalogSum returns the sum of all catalog values, the fallback target when
// no feasible subset exists.
func (r Rules) CatalogSum() int {
	total := 0
	for _, cb := range r.Catalog {
		total += cb.Value
	}
	return total
}

// TickIntervalMillis returns the wall-clock duration of one simulation tick.
func (r Rules) TickIntervalMillis() float64 {
	return 1000.0 / float64(r.TickHz)
}

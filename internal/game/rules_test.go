package game

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultRulesAreValid(t *testing.T) {
	if err := DefaultRules().Validate(); err != nil {
		t.Fatalf("shipped defaults must validate: %v", err)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Rules)
	}{
		{"friction one", func(r *Rules) { r.FrictionBase = 1.0 }},
		{"friction zero", func(r *Rules) { r.FrictionBase = 0 }},
		{"pocket too small for clamp", func(r *Rules) { r.PocketRadius = 16 }},
		{"empty catalog", func(r *Rules) { r.Catalog = nil }},
		{"duplicate value", func(r *Rules) { r.Catalog = append(r.Catalog, CatalogBall{Value: 5}) }},
		{"non-positive value", func(r *Rules) { r.Catalog[0].Value = 0 }},
		{"min count above catalog", func(r *Rules) { r.MinPocketCount = 13 }},
		{"min count zero", func(r *Rules) { r.MinPocketCount = 0 }},
		{"table smaller than balls", func(r *Rules) { r.TableWidth = 40 }},
		{"zero tick rate", func(r *Rules) { r.TickHz = 0 }},
		{"zero time scale", func(r *Rules) { r.TimeScale = 0 }},
	}

	for _, c := range cases {
		rules := DefaultRules()
		c.mutate(&rules)
		if err := rules.Validate(); err == nil {
			t.Errorf("%s: expected a validation error", c.name)
		}
	}
}

func TestLoadRulesLayersOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	partial := "friction_base: 0.9\ntick_hz: 30\n"
	if err := os.WriteFile(path, []byte(partial), 0644); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if rules.FrictionBase != 0.9 || rules.TickHz != 30 {
		t.Errorf("overrides not applied: friction=%v tick=%d", rules.FrictionBase, rules.TickHz)
	}
	if rules.TableWidth != 800 || len(rules.Catalog) != 12 {
		t.Errorf("unmentioned fields should keep defaults: width=%v catalog=%d", rules.TableWidth, len(rules.Catalog))
	}
}

func TestLoadRulesRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte("friction_base: 2.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadRules(path); err == nil {
		t.Error("friction 2.5 should fail validation on load")
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing file should return an error")
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	want := DefaultRules()
	want.FrictionBase = 0.8
	want.MinPocketCount = 5

	if err := SaveRules(path, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if got.FrictionBase != want.FrictionBase || got.MinPocketCount != want.MinPocketCount {
		t.Errorf("roundtrip lost values: friction=%v count=%d", got.FrictionBase, got.MinPocketCount)
	}
	if len(got.Catalog) != len(want.Catalog) {
		t.Errorf("roundtrip lost catalog: %d vs %d", len(got.Catalog), len(want.Catalog))
	}
}

func TestCatalogHelpers(t *testing.T) {
	rules := DefaultRules()

	if got := rules.CatalogSum(); got != 78 {
		t.Errorf("catalog 1..12 sums to 78, got %d", got)
	}
	values := rules.CatalogValues()
	if len(values) != 12 || values[0] != 1 || values[11] != 12 {
		t.Errorf("unexpected catalog values %v", values)
	}
	if got := rules.TickIntervalMillis(); got < 16.6 || got > 16.7 {
		t.Errorf("60hz tick should be ~16.67ms, got %v", got)
	}
}

package config

import "testing"

func TestSetOverrideAndClear(t *testing.T) {
	cfg := &Config{}

	cfg.SetOverride(KeyFrictionBase, "0.9")
	if v, ok := cfg.Override(KeyFrictionBase); !ok || v != "0.9" {
		t.Errorf("override not stored: %q %v", v, ok)
	}

	cfg.SetOverride(KeyFrictionBase, "")
	if _, ok := cfg.Override(KeyFrictionBase); ok {
		t.Error("empty value should clear the override")
	}
}

func TestApplyTableOverrides(t *testing.T) {
	cfg := &Config{}
	cfg.SetOverride(KeyFrictionBase, "0.92")
	cfg.SetOverride(KeyMinPocketCount, "5")

	friction, speed := 0.85, 1000.0
	count, delay := 7, 1500
	cfg.ApplyTableOverrides(&friction, &speed, &count, &delay)

	if friction != 0.92 {
		t.Errorf("friction override not applied: %v", friction)
	}
	if count != 5 {
		t.Errorf("pocket count override not applied: %d", count)
	}
	if speed != 1000 || delay != 1500 {
		t.Errorf("untouched keys must keep their values: speed=%v delay=%d", speed, delay)
	}
}

func TestApplyTableOverridesSkipsGarbage(t *testing.T) {
	cfg := &Config{}
	cfg.SetOverride(KeyMaxShotSpeed, "fast")

	speed := 1000.0
	friction := 0.85
	count, delay := 7, 1500
	cfg.ApplyTableOverrides(&friction, &speed, &count, &delay)

	if speed != 1000 {
		t.Errorf("unparseable override must be skipped, got %v", speed)
	}
}

func TestOverridesReturnsCopy(t *testing.T) {
	cfg := &Config{}
	cfg.SetOverride(KeySolveDelayMillis, "2000")

	snapshot := cfg.Overrides()
	snapshot[KeySolveDelayMillis] = "changed"

	if v, _ := cfg.Override(KeySolveDelayMillis); v != "2000" {
		t.Error("mutating the returned map must not affect the config")
	}
}

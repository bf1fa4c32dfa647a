package sailprop

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	if s.SOICooldown != 24*time.Hour {
		t.Fatalf("cooldown %s", s.SOICooldown)
	}
	if s.SOIExitMultiplier != 1.05 {
		t.Fatalf("exit multiplier %f", s.SOIExitMultiplier)
	}
	if s.ExtremeEccentricity != 20 {
		t.Fatalf("extreme eccentricity %f", s.ExtremeEccentricity)
	}
	if s.MaxDistance != 100 {
		t.Fatalf("max distance %f", s.MaxDistance)
	}
	if s.CacheSize != 64 || s.CacheTTL != 30*time.Second || s.TimeBucket != time.Hour {
		t.Fatalf("cache settings %+v", s)
	}
	if s.VSOP87 {
		t.Fatal("VSOP87 must be opt-in")
	}
}

func TestSettingsSanitized(t *testing.T) {
	def := DefaultSettings()
	s := Settings{
		SOICooldown:         -time.Hour,
		SOIExitMultiplier:   0.5,
		ExtremeEccentricity: 0.9,
		MaxDistance:         -10,
		CacheSize:           0,
		CacheTTL:            -time.Second,
		TimeBucket:          0,
	}.sanitized()
	if s != def {
		t.Fatalf("nonsensical values not clamped to defaults:\n%+v\n%+v", s, def)
	}
	// Valid overrides survive sanitization.
	custom := def
	custom.SOIExitMultiplier = 1.2
	custom.MaxDistance = 50
	if got := custom.sanitized(); got != custom {
		t.Fatalf("valid settings mangled:\n%+v\n%+v", got, custom)
	}
}

func TestLoadSettingsWithoutConfig(t *testing.T) {
	t.Setenv("SAILPROP_CONFIG", "")
	if s := LoadSettings(); s != DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", s)
	}
	// A path with no conf.toml in it also falls back silently.
	t.Setenv("SAILPROP_CONFIG", t.TempDir())
	if s := LoadSettings(); s != DefaultSettings() {
		t.Fatalf("expected defaults, got %+v", s)
	}
}

func TestLoadSettingsFromFile(t *testing.T) {
	dir := t.TempDir()
	conf := `[soi]
cooldown = "12h"
exit_multiplier = 1.10

[predict]
max_distance = 50.0

[cache]
size = 16
`
	if err := os.WriteFile(filepath.Join(dir, "conf.toml"), []byte(conf), 0o644); err != nil {
		t.Fatalf("%s", err)
	}
	t.Setenv("SAILPROP_CONFIG", dir)
	s := LoadSettings()
	if s.SOICooldown != 12*time.Hour {
		t.Fatalf("cooldown %s", s.SOICooldown)
	}
	if s.SOIExitMultiplier != 1.10 {
		t.Fatalf("exit multiplier %f", s.SOIExitMultiplier)
	}
	if s.MaxDistance != 50 {
		t.Fatalf("max distance %f", s.MaxDistance)
	}
	if s.CacheSize != 16 {
		t.Fatalf("cache size %d", s.CacheSize)
	}
	// Keys absent from the file keep their defaults.
	if s.ExtremeEccentricity != DefaultSettings().ExtremeEccentricity {
		t.Fatalf("extreme eccentricity %f", s.ExtremeEccentricity)
	}
	if s.CacheTTL != DefaultSettings().CacheTTL {
		t.Fatalf("cache TTL %s", s.CacheTTL)
	}
}

func TestLoadSettingsClampsFileValues(t *testing.T) {
	dir := t.TempDir()
	conf := `[soi]
exit_multiplier = 0.2

[cache]
size = -3
`
	if err := os.WriteFile(filepath.Join(dir, "conf.toml"), []byte(conf), 0o644); err != nil {
		t.Fatalf("%s", err)
	}
	t.Setenv("SAILPROP_CONFIG", dir)
	s := LoadSettings()
	if s.SOIExitMultiplier != DefaultSettings().SOIExitMultiplier {
		t.Fatalf("exit multiplier %f not clamped", s.SOIExitMultiplier)
	}
	if s.CacheSize != DefaultSettings().CacheSize {
		t.Fatalf("cache size %d not clamped", s.CacheSize)
	}
}

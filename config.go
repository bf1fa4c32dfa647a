package sailprop

import (
	"os"
	"time"

	"github.com/spf13/viper"
)

// Settings holds the engine tunables. The zero value is not usable; start from
// DefaultSettings or LoadSettings.
type Settings struct {
	// SOICooldown is the simulation-time span after an SOI transition during
	// which no further transition is evaluated (boundary flicker suppression).
	SOICooldown time.Duration
	// SOIExitMultiplier scales the SOI radius for the exit test, adding
	// hysteresis on top of the cooldown. Must be ≥ 1.
	SOIExitMultiplier float64
	// ExtremeEccentricity is the threshold above which the predictor abandons
	// Keplerian math for straight-line extrapolation.
	ExtremeEccentricity float64
	// MaxDistance truncates predictions wandering this far from the Sun (AU).
	MaxDistance float64
	// CacheSize bounds the trajectory cache entry count (LRU eviction).
	CacheSize int
	// CacheTTL expires cached trajectories.
	CacheTTL time.Duration
	// TimeBucket quantizes prediction start times for cache fingerprinting.
	TimeBucket time.Duration
	// VSOP87 enables meeus VSOP87 planetary ephemerides from VSOP87Dir.
	VSOP87    bool
	VSOP87Dir string
}

// DefaultSettings returns the engine defaults.
func DefaultSettings() Settings {
	return Settings{
		SOICooldown:         24 * time.Hour,
		SOIExitMultiplier:   1.05,
		ExtremeEccentricity: 20,
		MaxDistance:         100,
		CacheSize:           64,
		CacheTTL:            30 * time.Second,
		TimeBucket:          time.Hour,
	}
}

// LoadSettings reads conf.toml from the directory named by the SAILPROP_CONFIG
// environment variable. A missing variable, file or key silently falls back to
// the defaults: a half-configured engine must still run, never crash.
func LoadSettings() Settings {
	s := DefaultSettings()
	confPath := os.Getenv("SAILPROP_CONFIG")
	if confPath == "" {
		return s
	}
	v := viper.New()
	v.SetConfigName("conf")
	v.AddConfigPath(confPath)
	if err := v.ReadInConfig(); err != nil {
		return s
	}
	if v.IsSet("soi.cooldown") {
		s.SOICooldown = v.GetDuration("soi.cooldown")
	}
	if v.IsSet("soi.exit_multiplier") {
		s.SOIExitMultiplier = v.GetFloat64("soi.exit_multiplier")
	}
	if v.IsSet("predict.extreme_eccentricity") {
		s.ExtremeEccentricity = v.GetFloat64("predict.extreme_eccentricity")
	}
	if v.IsSet("predict.max_distance") {
		s.MaxDistance = v.GetFloat64("predict.max_distance")
	}
	if v.IsSet("cache.size") {
		s.CacheSize = v.GetInt("cache.size")
	}
	if v.IsSet("cache.ttl") {
		s.CacheTTL = v.GetDuration("cache.ttl")
	}
	if v.IsSet("cache.time_bucket") {
		s.TimeBucket = v.GetDuration("cache.time_bucket")
	}
	if v.IsSet("VSOP87.enabled") {
		s.VSOP87 = v.GetBool("VSOP87.enabled")
		s.VSOP87Dir = v.GetString("VSOP87.directory")
	}
	return s.sanitized()
}

// sanitized clamps nonsensical values back to the defaults.
func (s Settings) sanitized() Settings {
	def := DefaultSettings()
	if s.SOIExitMultiplier < 1 {
		s.SOIExitMultiplier = def.SOIExitMultiplier
	}
	if s.SOICooldown < 0 {
		s.SOICooldown = def.SOICooldown
	}
	if s.ExtremeEccentricity <= 1 {
		s.ExtremeEccentricity = def.ExtremeEccentricity
	}
	if s.MaxDistance <= 0 {
		s.MaxDistance = def.MaxDistance
	}
	if s.CacheSize < 1 {
		s.CacheSize = def.CacheSize
	}
	if s.CacheTTL <= 0 {
		s.CacheTTL = def.CacheTTL
	}
	if s.TimeBucket <= 0 {
		s.TimeBucket = def.TimeBucket
	}
	return s
}

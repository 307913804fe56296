package sailship

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "sailship"
	envPrefix  = "SAILSHIP"
	// ConfigEnv is the environment variable which may hold the configuration directory.
	ConfigEnv = "SAILSHIP_CONFIG"
)

// Config holds the tunables of the physics core. Nothing in the core reads global switches:
// a Config is injected at construction of the Engine and of the Influence.
type Config struct {
	CooldownDays        float64       // Minimum time between two SOI transitions involving the same body
	ExtremeEccentricity float64       // Above this eccentricity, an SOI flyby is propagated linearly
	SafetyMultiplier    float64       // Periapsis floor as a multiple of the physical radius
	SafeOrbitMultiplier float64       // Radius of the corrective circular orbit as a multiple of the physical radius
	NegligibleThrust    float64       // Thrust magnitudes at or below are ignored
	SmoothingRate       float64       // Fraction of the gap closed per tick by the visual elements
	SnapARatio          float64       // Relative semi-major axis change which triggers a 50% snap
	SnapEDelta          float64       // Absolute eccentricity change which triggers a 50% snap
	CacheTTL            time.Duration // Lifetime of prediction cache entries
	Debug               bool          // Enables debug level logs
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		CooldownDays:        0.5,
		ExtremeEccentricity: 1000,
		SafetyMultiplier:    1.1,
		SafeOrbitMultiplier: 2,
		NegligibleThrust:    1e-20,
		SmoothingRate:       0.1,
		SnapARatio:          0.2,
		SnapEDelta:          0.3,
		CacheTTL:            500 * time.Millisecond,
	}
}

// Validate returns an error if the configuration is unusable.
func (c Config) Validate() error {
	var errs []error
	if c.CooldownDays < 0 {
		errs = append(errs, fmt.Errorf("soi.cooldown_days must be positive, got %g", c.CooldownDays))
	}
	if c.ExtremeEccentricity <= 1 {
		errs = append(errs, fmt.Errorf("soi.extreme_eccentricity must be greater than 1, got %g", c.ExtremeEccentricity))
	}
	if c.SafetyMultiplier < 1 {
		errs = append(errs, fmt.Errorf("collision.safety_multiplier must be at least 1, got %g", c.SafetyMultiplier))
	}
	if c.SafeOrbitMultiplier < c.SafetyMultiplier {
		errs = append(errs, fmt.Errorf("collision.safe_orbit_multiplier (%g) is below the safety multiplier (%g)", c.SafeOrbitMultiplier, c.SafetyMultiplier))
	}
	if c.NegligibleThrust < 0 {
		errs = append(errs, fmt.Errorf("thrust.negligible must be positive, got %g", c.NegligibleThrust))
	}
	if c.SmoothingRate <= 0 || c.SmoothingRate > 1 {
		errs = append(errs, fmt.Errorf("visual.smoothing_rate must be in (0, 1], got %g", c.SmoothingRate))
	}
	if c.SnapARatio <= 0 || c.SnapEDelta <= 0 {
		errs = append(errs, errors.New("visual snap thresholds must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig reads sailship.toml (or any format viper supports) from the provided directory,
// or from $SAILSHIP_CONFIG when dir is empty. Every key may be overridden by the environment,
// e.g. SAILSHIP_SOI_COOLDOWN_DAYS. A missing file is not an error: defaults apply.
func LoadConfig(dir string) (Config, error) {
	v := viper.New()
	def := DefaultConfig()
	v.SetDefault("soi.cooldown_days", def.CooldownDays)
	v.SetDefault("soi.extreme_eccentricity", def.ExtremeEccentricity)
	v.SetDefault("collision.safety_multiplier", def.SafetyMultiplier)
	v.SetDefault("collision.safe_orbit_multiplier", def.SafeOrbitMultiplier)
	v.SetDefault("thrust.negligible", def.NegligibleThrust)
	v.SetDefault("visual.smoothing_rate", def.SmoothingRate)
	v.SetDefault("visual.snap_a_ratio", def.SnapARatio)
	v.SetDefault("visual.snap_e_delta", def.SnapEDelta)
	v.SetDefault("cache.ttl_ms", def.CacheTTL.Milliseconds())
	v.SetDefault("log.debug", def.Debug)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir == "" {
		dir = os.Getenv(ConfigEnv)
	}
	if dir != "" {
		v.SetConfigName(configName)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("%s/%s: %w", dir, configName, err)
			}
		}
	}

	conf := Config{
		CooldownDays:        v.GetFloat64("soi.cooldown_days"),
		ExtremeEccentricity: v.GetFloat64("soi.extreme_eccentricity"),
		SafetyMultiplier:    v.GetFloat64("collision.safety_multiplier"),
		SafeOrbitMultiplier: v.GetFloat64("collision.safe_orbit_multiplier"),
		NegligibleThrust:    v.GetFloat64("thrust.negligible"),
		SmoothingRate:       v.GetFloat64("visual.smoothing_rate"),
		SnapARatio:          v.GetFloat64("visual.snap_a_ratio"),
		SnapEDelta:          v.GetFloat64("visual.snap_e_delta"),
		CacheTTL:            time.Duration(v.GetInt64("cache.ttl_ms")) * time.Millisecond,
		Debug:               v.GetBool("log.debug"),
	}
	return conf, conf.Validate()
}

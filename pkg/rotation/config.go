package rotation

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoPivot is returned when a controller is built without a pivot.
	ErrNoPivot = errors.New("rotation: pivot transform not assigned")

	// ErrInvertedLimit marks an axis whose minimum is larger than its maximum.
	ErrInvertedLimit = errors.New("rotation: limit minimum exceeds maximum")

	// ErrInvalidSpeed marks a non-positive speed limit.
	ErrInvalidSpeed = errors.New("rotation: speed limit must be positive")

	// ErrInvalidTiming marks a negative acceleration time or deceleration
	// proportion.
	ErrInvalidTiming = errors.New("rotation: acceleration timing must not be negative")
)

// limitMargin is the tolerance used when comparing a limit's bounds.
const limitMargin = 0.01

// Config holds the tunable parameters of a pivot rotation controller.
// Angles are in degrees, speeds in degrees per second.
type Config struct {
	// Limits around the reference forward direction
	Yaw   AxisLimit `yaml:"yaw" json:"yaw"`
	Pitch AxisLimit `yaml:"pitch" json:"pitch"`

	// Motion
	SpeedLimit             float64 `yaml:"speed_limit" json:"speed_limit"`                         // Top speed at full deflection
	AccelerationTime       float64 `yaml:"acceleration_time" json:"acceleration_time"`             // Seconds from rest to top speed
	DecelerationProportion float64 `yaml:"deceleration_proportion" json:"deceleration_proportion"` // Stop time as a fraction of AccelerationTime

	// AroundPivot measures limits from the pivot's initial heading instead
	// of the governing frame's forward.
	AroundPivot bool `yaml:"around_pivot" json:"around_pivot"`
}

// DefaultConfig returns the standard rig tuning.
func DefaultConfig() Config {
	return Config{
		Yaw:   AxisLimit{Min: -45, Max: 45},
		Pitch: AxisLimit{Min: -10, Max: 10},

		SpeedLimit:             74,
		AccelerationTime:       0.37,
		DecelerationProportion: 0.5714, // stops in ~57% of the spin-up time
	}
}

// SlowConfig returns a tuning for slow, cinematic pans.
func SlowConfig() Config {
	cfg := DefaultConfig()
	cfg.SpeedLimit = 30
	cfg.AccelerationTime = 0.8
	cfg.DecelerationProportion = 1.0
	return cfg
}

// SnappyConfig returns a tuning for quick, responsive look-around.
func SnappyConfig() Config {
	cfg := DefaultConfig()
	cfg.SpeedLimit = 160
	cfg.AccelerationTime = 0.15
	cfg.DecelerationProportion = 0.4
	return cfg
}

// Preset returns a named tuning. Unknown names fall back to the default.
func Preset(name string) Config {
	switch name {
	case "slow":
		return SlowConfig()
	case "snappy":
		return SnappyConfig()
	default:
		return DefaultConfig()
	}
}

// CheckMotion reports motion tuning a controller cannot run with. A zero
// speed freezes the pivot and a negative one inverts the stick. Inverted
// limits are not checked here: a controller runs such an axis unconstrained
// and records the problem in SetupErrors.
func (c Config) CheckMotion() error {
	var errs []error
	if !(c.SpeedLimit > 0) || math.IsInf(c.SpeedLimit, 0) {
		errs = append(errs, fmt.Errorf("speed limit %g: %w", c.SpeedLimit, ErrInvalidSpeed))
	}
	if c.AccelerationTime < 0 || math.IsNaN(c.AccelerationTime) {
		errs = append(errs, fmt.Errorf("acceleration time %g: %w", c.AccelerationTime, ErrInvalidTiming))
	}
	if c.DecelerationProportion < 0 || math.IsNaN(c.DecelerationProportion) {
		errs = append(errs, fmt.Errorf("deceleration proportion %g: %w", c.DecelerationProportion, ErrInvalidTiming))
	}
	return errors.Join(errs...)
}

// integrator returns the per-axis velocity model for this config.
func (c Config) integrator() AxisIntegrator {
	return AxisIntegrator{
		SpeedLimit:             c.SpeedLimit,
		AccelerationTime:       c.AccelerationTime,
		DecelerationProportion: c.DecelerationProportion,
	}
}

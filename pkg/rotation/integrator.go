package rotation

import (
	"math"

	"github.com/teslashibe/go-camrig/pkg/anglemath"
)

// inputRestEpsilon is the input (and velocity) magnitude treated as rest.
const inputRestEpsilon = 1e-5

// AxisIntegrator turns stick deflection into angular velocity on one axis.
//
// With input the velocity ramps toward the input direction and is capped at
// |input|*SpeedLimit, so a half-deflected stick tops out at half speed.
// Without input it ramps back to exactly zero.
type AxisIntegrator struct {
	SpeedLimit             float64 // degrees per second at full deflection
	AccelerationTime       float64 // seconds from rest to SpeedLimit
	DecelerationProportion float64 // deceleration time relative to AccelerationTime
}

// AccelerationRate returns the acceleration in degrees per second squared.
func (a AxisIntegrator) AccelerationRate() float64 {
	if a.AccelerationTime <= 0 {
		return math.Inf(1)
	}
	return a.SpeedLimit / a.AccelerationTime
}

// DecelerationRate returns the deceleration in degrees per second squared.
func (a AxisIntegrator) DecelerationRate() float64 {
	if a.DecelerationProportion <= 0 {
		return math.Inf(1)
	}
	return a.AccelerationRate() / a.DecelerationProportion
}

// Step returns the velocity after dt seconds given the current velocity and
// this axis's input.
func (a AxisIntegrator) Step(current, input, dt float64) float64 {
	if dt < 0 {
		dt = 0
	}

	switch {
	case math.Abs(input) > inputRestEpsilon:
		next := current
		if dt > 0 {
			next += math.Copysign(1, input) * a.AccelerationRate() * dt
		}
		limit := math.Abs(input) * a.SpeedLimit
		return math.Max(-limit, math.Min(limit, next))

	case math.Abs(current) > inputRestEpsilon:
		if dt == 0 {
			return current
		}
		next := current - math.Copysign(1, current)*a.DecelerationRate()*dt
		if anglemath.HaveOppositeSigns(next, current) || math.IsInf(next, 0) {
			return 0
		}
		return next

	default:
		return 0
	}
}

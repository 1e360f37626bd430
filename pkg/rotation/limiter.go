package rotation

import (
	"math"

	"github.com/teslashibe/go-camrig/pkg/anglemath"
)

// deltaEpsilon is the smallest delta (degrees) treated as a rotation.
const deltaEpsilon = 1e-9

// AxisLimit is a closed range of allowed angles on one axis, in degrees.
type AxisLimit struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`

	// Unconstrained is set on axes whose configuration was rejected.
	// Every delta is applied as-is on such an axis.
	Unconstrained bool `yaml:"-" json:"unconstrained,omitempty"`
}

// Inverted reports whether Min exceeds Max beyond the comparison margin.
func (l AxisLimit) Inverted() bool {
	return l.Min > l.Max+limitMargin
}

// Ranged reports whether the limit describes a usable, non-degenerate range.
func (l AxisLimit) Ranged() bool {
	return l.Min < l.Max-limitMargin
}

// FullCircle reports whether the limit allows every heading.
func (l AxisLimit) FullCircle() bool {
	return l.Min <= -180 && l.Max >= 180
}

// Contains reports whether angle is inside [Min, Max].
func (l AxisLimit) Contains(angle float64) bool {
	return angle >= l.Min && angle <= l.Max
}

// ClampDelta decides how much of delta may be applied to an axis currently
// at angle current.
//
// A zero delta is a no-op and reports false. When current+delta (normalized)
// stays inside the limit the delta is returned unchanged with full=true.
// Otherwise the delta is replaced with the correction that lands exactly on
// the nearer boundary, looking at both current and its opposite-sign
// equivalent so a path across the ±180° seam is considered, and full=false.
func (l AxisLimit) ClampDelta(current, delta float64) (applied float64, full bool) {
	if math.Abs(delta) < deltaEpsilon {
		return 0, false
	}
	if l.Unconstrained {
		return delta, true
	}

	proposed := anglemath.NormalizeTo180(current + delta)
	if l.Contains(proposed) {
		return delta, true
	}

	opposite := anglemath.FlipToOppositeSign(current)
	toMin := anglemath.CloserToZero(l.Min-current, l.Min-opposite)
	toMax := anglemath.CloserToZero(l.Max-current, l.Max-opposite)
	return anglemath.CloserToZero(toMin, toMax), false
}

// Package anglemath provides the degree-based angle helpers used by the
// camera rig: normalization into a half-open circle, sign flipping across
// the ±180° seam and signed angles between direction vectors.
package anglemath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// NormalizeTo180 converts a degree angle into the range (-180, 180].
//
// Whole turns are removed toward zero until the magnitude is at most 180,
// so the sign may flip. An exact -180 is reported as 180 to keep the range
// half-open. Infinite input cannot be normalized and yields NaN; callers
// must check with math.IsNaN before using the result.
func NormalizeTo180(angle float64) float64 {
	if math.IsInf(angle, 0) {
		return math.NaN()
	}
	if math.Abs(angle) > 180 {
		// Equivalent to repeatedly adding ∓360 but without looping on
		// very large magnitudes.
		turns := math.Floor((math.Abs(angle) + 180) / 360)
		angle -= sign(angle) * turns * 360
		for math.Abs(angle) > 180 {
			angle -= sign(angle) * 360
		}
	}
	if angle == -180 {
		return 180
	}
	return angle
}

// FlipToOppositeSign returns the equivalent angle (mod 360) closest to the
// input that has the opposite sign. Zero counts as positive, so 0 maps to
// -360 while -360 maps to 0. Infinite input is negated; NaN passes through.
func FlipToOppositeSign(angle float64) float64 {
	if math.IsNaN(angle) {
		return angle
	}
	if math.IsInf(angle, 0) {
		return -angle
	}

	want := -sign(angle)
	flipped := angle + want*360*math.Floor(math.Abs(angle)/360)
	for sign(flipped) != want {
		flipped += want * 360
	}
	return flipped
}

// SignedAngleBetween returns the signed angle in degrees from v1 to v2 about
// axis. Both vectors must already be normalized; no normalization happens here.
func SignedAngleBetween(v1, v2, axis mgl64.Vec3) float64 {
	return mgl64.RadToDeg(math.Atan2(axis.Dot(v1.Cross(v2)), v1.Dot(v2)))
}

// CloserToZero returns whichever value has the smaller magnitude.
// Ties return b.
func CloserToZero(a, b float64) float64 {
	if math.Abs(a) < math.Abs(b) {
		return a
	}
	return b
}

// HaveOppositeSigns reports whether a and b are strictly on opposite sides of zero.
func HaveOppositeSigns(a, b float64) bool {
	return a*b < 0
}

// sign returns 1 for values >= 0 and -1 otherwise.
func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

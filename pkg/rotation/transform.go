package rotation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Local axes. Forward is +Z, up is +Y and right is +X.
var (
	axisForward = mgl64.Vec3{0, 0, 1}
	axisUp      = mgl64.Vec3{0, 1, 0}
	axisRight   = mgl64.Vec3{1, 0, 0}
)

// Transform is the minimal host-side view of a scene node: a world position
// and a world rotation. The controller mutates the pivot's Rotation in place
// and the host reads it back each tick.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform returns a transform at pos facing along yaw/pitch (degrees).
// Positive yaw turns toward +X, positive pitch looks up.
func NewTransform(pos mgl64.Vec3, yaw, pitch float64) Transform {
	yawQ := mgl64.QuatRotate(mgl64.DegToRad(yaw), axisUp)
	pitchQ := mgl64.QuatRotate(mgl64.DegToRad(pitch), axisRight.Mul(-1))
	return Transform{
		Position: pos,
		Rotation: yawQ.Mul(pitchQ).Normalize(),
	}
}

// Identity returns a transform at the origin with no rotation.
func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

// Forward returns the world-space forward direction.
func (t Transform) Forward() mgl64.Vec3 {
	return t.Rotation.Rotate(axisForward)
}

// Up returns the world-space up direction.
func (t Transform) Up() mgl64.Vec3 {
	return t.Rotation.Rotate(axisUp)
}

// Right returns the world-space right direction.
func (t Transform) Right() mgl64.Vec3 {
	return t.Rotation.Rotate(axisRight)
}

// rotate composes a world-space rotation of angle degrees about axis.
// Composition is done on the quaternion so repeated updates do not drift.
func (t *Transform) rotate(axis mgl64.Vec3, angle float64) {
	q := mgl64.QuatRotate(mgl64.DegToRad(angle), axis.Normalize())
	t.Rotation = q.Mul(t.Rotation).Normalize()
}

// elevation returns the angle in degrees of dir above the plane normal to up.
func elevation(dir, up mgl64.Vec3) float64 {
	s := math.Max(-1, math.Min(1, dir.Dot(up)))
	return mgl64.RadToDeg(math.Asin(s))
}

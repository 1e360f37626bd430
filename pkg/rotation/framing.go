package rotation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-camrig/pkg/anglemath"
)

// framingEpsilon is the distance below which a point counts as on the pivot.
const framingEpsilon = 1e-9

// IsWorldPointInView reports whether p projects strictly inside the
// viewport of the pivot's lens and lies in front of it. It is always false
// without a lens.
func (c *Controller) IsWorldPointInView(p mgl64.Vec3) bool {
	if !c.enabled || c.lens == nil {
		return false
	}
	v := c.lens.WorldToViewport(*c.pivot, p)
	return v.X() > 0 && v.X() < 1 &&
		v.Y() > 0 && v.Y() < 1 &&
		c.inFront(p)
}

// FrameWorldPoint turns the pivot toward p within its limits.
//
// centered is in [0, 1]: at 1 the point ends up in the middle of the view,
// at 0 the pivot turns only as far as needed to bring the point to the edge
// of the view (a point already in view does not move the pivot). Yaw is
// applied first and the vertical correction is measured after it. A point
// on the pivot has no direction and leaves it untouched.
func (c *Controller) FrameWorldPoint(p mgl64.Vec3, centered float64) (yawFull, pitchFull bool) {
	if !c.enabled || c.lens == nil {
		return false, false
	}
	if p.Sub(c.pivot.Position).Len() < framingEpsilon {
		return false, false
	}
	centered = math.Max(0, math.Min(1, centered))

	start, target := c.framingRay(p, AxisYaw, centered)
	h := anglemath.SignedAngleBetween(start, target, c.frame.Up())
	yawFull = c.applyDelta(AxisYaw, c.clampToward(AxisYaw, h))

	start, target = c.framingRay(p, AxisPitch, centered)
	v := anglemath.SignedAngleBetween(start, target, c.pivot.Right().Mul(-1))
	pitchFull = c.applyDelta(AxisPitch, c.clampToward(AxisPitch, v))

	return yawFull, pitchFull
}

// framingRay returns the direction the pivot should move from and the
// direction toward p, for one axis.
func (c *Controller) framingRay(p mgl64.Vec3, axis Axis, centered float64) (start, target mgl64.Vec3) {
	eye := *c.pivot
	target = p.Sub(eye.Position).Normalize()

	edge := mgl64.Vec3{0.5, 0.5, 1}
	edge[axis] = c.viewportSide(p, axis)
	edgeDir := c.lens.ViewportToWorld(eye, edge).Sub(eye.Position).Normalize()

	fwd := eye.Forward()
	start = edgeDir.Add(fwd.Sub(edgeDir).Mul(centered)).Normalize()
	return start, target
}

// viewportSide returns p's viewport coordinate on one axis clamped to
// [0, 1]. Points behind the pivot are pushed to the edge opposite to where
// the projection mirrored them.
func (c *Controller) viewportSide(p mgl64.Vec3, axis Axis) float64 {
	s := c.lens.WorldToViewport(*c.pivot, p)[axis]
	if !c.inFront(p) {
		if s >= 0.5 {
			s = 0
		} else {
			s = 1
		}
	}
	return math.Max(0, math.Min(1, s))
}

func (c *Controller) inFront(p mgl64.Vec3) bool {
	dir := p.Sub(c.pivot.Position)
	if dir.Len() < framingEpsilon {
		return false
	}
	return dir.Normalize().Dot(c.pivot.Forward()) > 0
}

// clampToward normalizes a framing delta and keeps current+delta inside the
// axis limit. A yaw limit spanning the full circle is left to the limiter.
func (c *Controller) clampToward(axis Axis, delta float64) float64 {
	delta = anglemath.NormalizeTo180(delta)
	limit := c.limits[axis]
	if limit.Unconstrained {
		return delta
	}
	if axis == AxisYaw && (limit.Min <= -180 || limit.Max >= 180) {
		return delta
	}

	current := c.angle(axis)
	switch next := current + delta; {
	case next < limit.Min:
		delta += limit.Min - next
	case next > limit.Max:
		delta += limit.Max - next
	}
	return delta
}

package rotation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Lens maps between world space and normalized viewport space for a camera
// attached to a transform. Viewport coordinates are (x, y, depth) with
// (0,0) at the bottom-left and (1,1) at the top-right of the view.
type Lens interface {
	WorldToViewport(eye Transform, p mgl64.Vec3) mgl64.Vec3
	ViewportToWorld(eye Transform, v mgl64.Vec3) mgl64.Vec3
}

// PerspectiveLens is a symmetric pinhole projection.
type PerspectiveLens struct {
	FovY   float64 `yaml:"fov_y" json:"fov_y"`   // vertical field of view, degrees
	Aspect float64 `yaml:"aspect" json:"aspect"` // width / height
}

// NewPerspectiveLens returns a lens with the given vertical field of view in
// degrees and aspect ratio.
func NewPerspectiveLens(fovY, aspect float64) PerspectiveLens {
	return PerspectiveLens{FovY: fovY, Aspect: aspect}
}

func (l PerspectiveLens) halfExtents() (float64, float64) {
	th := math.Tan(mgl64.DegToRad(l.FovY) / 2)
	aspect := l.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	return th * aspect, th
}

// WorldToViewport projects p. The returned z is the depth along the eye's
// forward axis and is negative for points behind the eye.
func (l PerspectiveLens) WorldToViewport(eye Transform, p mgl64.Vec3) mgl64.Vec3 {
	local := eye.Rotation.Inverse().Rotate(p.Sub(eye.Position))
	z := local.Z()
	if math.Abs(z) < 1e-9 {
		z = math.Copysign(1e-9, z)
	}
	hx, hy := l.halfExtents()
	return mgl64.Vec3{
		0.5 + 0.5*local.X()/(z*hx),
		0.5 + 0.5*local.Y()/(z*hy),
		local.Z(),
	}
}

// ViewportToWorld unprojects v, using v.Z() as the depth along forward.
func (l PerspectiveLens) ViewportToWorld(eye Transform, v mgl64.Vec3) mgl64.Vec3 {
	hx, hy := l.halfExtents()
	d := v.Z()
	local := mgl64.Vec3{
		(2*v.X() - 1) * hx * d,
		(2*v.Y() - 1) * hy * d,
		d,
	}
	return eye.Position.Add(eye.Rotation.Rotate(local))
}

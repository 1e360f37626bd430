package rotation

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func framingConfig() Config {
	cfg := DefaultConfig()
	cfg.Yaw = AxisLimit{Min: -60, Max: 60}
	cfg.Pitch = AxisLimit{Min: -30, Max: 30}
	return cfg
}

func testLens() PerspectiveLens {
	return NewPerspectiveLens(60, 1)
}

func TestPerspectiveLens_Center(t *testing.T) {
	lens := testLens()
	eye := Identity()

	v := lens.WorldToViewport(eye, mgl64.Vec3{0, 0, 5})
	assert.InDelta(t, 0.5, v.X(), 1e-9)
	assert.InDelta(t, 0.5, v.Y(), 1e-9)
	assert.InDelta(t, 5.0, v.Z(), 1e-9)
}

func TestPerspectiveLens_EdgeOfFov(t *testing.T) {
	lens := testLens()
	eye := Identity()

	// 30 degrees right is the right edge of a 60 degree square view
	p := mgl64.Vec3{math.Tan(mgl64.DegToRad(30)), 0, 1}
	v := lens.WorldToViewport(eye, p)
	assert.InDelta(t, 1.0, v.X(), 1e-9)
	assert.InDelta(t, 0.5, v.Y(), 1e-9)
}

func TestPerspectiveLens_RoundTrip(t *testing.T) {
	lens := NewPerspectiveLens(50, 16.0/9)
	eye := NewTransform(mgl64.Vec3{1, 2, 3}, 25, -10)

	for _, p := range []mgl64.Vec3{
		{1.5, 2.2, 8},
		{4, 1, 6},
		{-2, 3, 10},
	} {
		v := lens.WorldToViewport(eye, p)
		got := lens.ViewportToWorld(eye, v)
		assert.True(t, got.ApproxEqualThreshold(p, 1e-9), "got %v want %v", got, p)
	}
}

func TestIsWorldPointInView(t *testing.T) {
	c, _ := newTestController(t, framingConfig(), 0, 0, WithLens(testLens()))

	tests := []struct {
		name string
		p    mgl64.Vec3
		want bool
	}{
		{"ahead", mgl64.Vec3{0, 0, 5}, true},
		{"slightly off axis", mgl64.Vec3{0.2, -0.1, 1}, true},
		{"behind", mgl64.Vec3{0, 0, -5}, false},
		{"far right", mgl64.Vec3{10, 0, 1}, false},
		{"above", mgl64.Vec3{0, 10, 1}, false},
		{"at eye", mgl64.Vec3{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsWorldPointInView(tt.p))
		})
	}
}

func TestIsWorldPointInView_NoLens(t *testing.T) {
	c, _ := newTestController(t, framingConfig(), 0, 0)
	assert.False(t, c.IsWorldPointInView(mgl64.Vec3{0, 0, 5}))

	yawFull, pitchFull := c.FrameWorldPoint(mgl64.Vec3{5, 0, 1}, 1)
	assert.False(t, yawFull)
	assert.False(t, pitchFull)
	assert.Equal(t, Angles{}, c.Angles())
}

func TestFrameWorldPoint_InViewNotCentered(t *testing.T) {
	c, _ := newTestController(t, framingConfig(), 0, 0, WithLens(testLens()))

	c.FrameWorldPoint(mgl64.Vec3{0.2, 0.1, 1}, 0)
	assert.InDelta(t, 0.0, c.Angles().Yaw, angleTolerance)
	assert.InDelta(t, 0.0, c.Angles().Pitch, angleTolerance)
}

func TestFrameWorldPoint_Centered(t *testing.T) {
	c, _ := newTestController(t, framingConfig(), 0, 0, WithLens(testLens()))

	yawFull, _ := c.FrameWorldPoint(mgl64.Vec3{1, 0, 1}, 1)
	assert.True(t, yawFull)
	assert.InDelta(t, 45.0, c.Angles().Yaw, angleTolerance)
	assert.InDelta(t, 0.0, c.Angles().Pitch, angleTolerance)
}

func TestFrameWorldPoint_EdgeOnly(t *testing.T) {
	c, _ := newTestController(t, framingConfig(), 0, 0, WithLens(testLens()))

	c.FrameWorldPoint(mgl64.Vec3{1, 0, 1}, 0)
	// the point sits 45 degrees right, the view edge 30 degrees
	assert.InDelta(t, 15.0, c.Angles().Yaw, angleTolerance)
	assert.InDelta(t, 0.0, c.Angles().Pitch, angleTolerance)
}

func TestFrameWorldPoint_Vertical(t *testing.T) {
	c, _ := newTestController(t, framingConfig(), 0, 0, WithLens(testLens()))

	p := mgl64.Vec3{0, math.Tan(mgl64.DegToRad(20)), 1}
	c.FrameWorldPoint(p, 1)
	assert.InDelta(t, 0.0, c.Angles().Yaw, angleTolerance)
	assert.InDelta(t, 20.0, c.Angles().Pitch, angleTolerance)
}

func TestFrameWorldPoint_RespectsLimits(t *testing.T) {
	c, _ := newTestController(t, framingConfig(), 0, 0, WithLens(testLens()))

	c.FrameWorldPoint(mgl64.Vec3{10, 0, 1}, 1)
	assert.InDelta(t, 60.0, c.Angles().Yaw, angleTolerance)

	c.FrameWorldPoint(mgl64.Vec3{0, 10, 1}, 1)
	assert.LessOrEqual(t, c.Angles().Pitch, 30.0+angleTolerance)
}

func TestFrameWorldPoint_BehindFullCircle(t *testing.T) {
	cfg := framingConfig()
	cfg.Yaw = AxisLimit{Min: -180, Max: 180}
	c, _ := newTestController(t, cfg, 0, 0, WithLens(testLens()))

	c.FrameWorldPoint(mgl64.Vec3{0.5, 0, -5}, 1)
	assert.Greater(t, math.Abs(c.Angles().Yaw), 170.0)
	assert.True(t, c.IsWorldPointInView(mgl64.Vec3{0.5, 0, -5}))
}

func TestFrameWorldPoint_ClampsCenteredInput(t *testing.T) {
	a, _ := newTestController(t, framingConfig(), 0, 0, WithLens(testLens()))
	b, _ := newTestController(t, framingConfig(), 0, 0, WithLens(testLens()))

	a.FrameWorldPoint(mgl64.Vec3{1, 0, 1}, 5)
	b.FrameWorldPoint(mgl64.Vec3{1, 0, 1}, 1)
	assert.InDelta(t, b.Angles().Yaw, a.Angles().Yaw, angleTolerance)
}

func TestFrameWorldPoint_PointOnPivot(t *testing.T) {
	tests := []struct {
		name string
		yaw  AxisLimit
	}{
		{"limited", AxisLimit{Min: -60, Max: 60}},
		{"full circle", AxisLimit{Min: -180, Max: 180}},
		{"inverted runs unconstrained", AxisLimit{Min: 10, Max: -10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := framingConfig()
			cfg.Yaw = tt.yaw
			c, pivot := newTestController(t, cfg, 0, 0, WithLens(testLens()))
			before := pivot.Rotation

			yawFull, pitchFull := c.FrameWorldPoint(pivot.Position, 1)
			assert.False(t, yawFull)
			assert.False(t, pitchFull)
			assert.Equal(t, Angles{}, c.Angles())
			assert.Equal(t, before, pivot.Rotation)
		})
	}
}

func TestFrameWorldPoint_UnconstrainedAxisStaysFinite(t *testing.T) {
	cfg := framingConfig()
	cfg.Yaw = AxisLimit{Min: 10, Max: -10}
	c, pivot := newTestController(t, cfg, 0, 0, WithLens(testLens()))
	yawLimit, _ := c.Limits()
	require.True(t, yawLimit.Unconstrained)

	c.FrameWorldPoint(mgl64.Vec3{1, 0, 1}, 1)
	assert.InDelta(t, 45.0, c.Angles().Yaw, angleTolerance)

	c.FrameWorldPoint(mgl64.Vec3{1e-12, 0, 0}, 1)
	assert.InDelta(t, 45.0, c.Angles().Yaw, angleTolerance)
	assert.False(t, math.IsNaN(pivot.Rotation.W))
	assert.False(t, math.IsNaN(c.Angles().Pitch))
}

package rotation

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-camrig/pkg/anglemath"
)

// Axis indexes the two controlled axes.
type Axis int

const (
	AxisYaw Axis = iota
	AxisPitch
)

func (a Axis) String() string {
	if a == AxisYaw {
		return "yaw"
	}
	return "pitch"
}

// Angles is the pivot's orientation relative to its reference, in degrees.
type Angles struct {
	Yaw   float64 `json:"yaw"`
	Pitch float64 `json:"pitch"`
}

// TickResult reports the per-axis outcome of one Tick. Yaw and Pitch are the
// deltas that were requested for the tick, the Full flags report whether the
// limiter let them through unchanged.
type TickResult struct {
	Yaw       float64 `json:"yaw"`
	Pitch     float64 `json:"pitch"`
	YawFull   bool    `json:"yaw_full"`
	PitchFull bool    `json:"pitch_full"`
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	name   string
	frame  *Transform
	lens   Lens
	logger *slog.Logger
}

// WithName labels the controller in log output.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithFrame sets the governing transform whose forward and up define the
// reference the limits are measured against. Defaults to the identity.
func WithFrame(frame *Transform) Option {
	return func(o *options) { o.frame = frame }
}

// WithLens attaches a lens to the pivot, enabling the framing operations.
func WithLens(lens Lens) Option {
	return func(o *options) { o.lens = lens }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Controller rotates a pivot transform in yaw and pitch from two-axis
// analog input, with smooth acceleration and per-axis angular limits.
//
// A Controller is not safe for concurrent use; callers serialize access.
type Controller struct {
	name   string
	logger *slog.Logger
	lens   Lens

	frame *Transform
	pivot *Transform

	cfg        Config
	limits     [2]AxisLimit
	integrator AxisIntegrator

	hOffset float64
	vOffset float64

	angles       Angles
	input        mgl64.Vec2
	velocity     mgl64.Vec2
	prevVelocity mgl64.Vec2

	initialRotation mgl64.Quat
	enabled         bool
	setupErrs       []error
}

// New builds a controller for pivot. The pivot is owned by the caller and
// is rotated in place. A nil pivot returns ErrNoPivot together with a
// disabled controller on which every operation is a no-op.
//
// Invalid limits are not fatal: they are logged, recorded in SetupErrors and
// the affected axis runs unconstrained. A pivot that starts outside its
// limits is rotated onto the nearest bound before the initial orientation
// is captured.
func New(cfg Config, pivot *Transform, opts ...Option) (*Controller, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.frame == nil {
		id := Identity()
		o.frame = &id
	}

	c := &Controller{
		name:   o.name,
		logger: o.logger.With("component", "rotation", "controller", o.name),
		lens:   o.lens,
		frame:  o.frame,
		pivot:  pivot,
	}

	if pivot == nil {
		c.logger.Error("pivot not assigned, controller disabled")
		c.setupErrs = append(c.setupErrs, ErrNoPivot)
		c.initialRotation = mgl64.QuatIdent()
		return c, ErrNoPivot
	}

	c.enabled = true
	c.cfg = cfg
	c.integrator = cfg.integrator()

	c.setOffsets(pivot.Rotation)
	c.updateAngles()

	c.limits[AxisYaw] = c.setupAxis(AxisYaw, cfg.Yaw)
	c.limits[AxisPitch] = c.setupAxis(AxisPitch, cfg.Pitch)

	c.initialRotation = pivot.Rotation
	return c, nil
}

// setupAxis validates one axis limit and brings the pivot inside it.
func (c *Controller) setupAxis(axis Axis, limit AxisLimit) AxisLimit {
	switch {
	case limit.Inverted():
		err := fmt.Errorf("%s [%g, %g]: %w", axis, limit.Min, limit.Max, ErrInvertedLimit)
		c.logger.Error("invalid rotation limit, axis unconstrained",
			"axis", axis.String(), "min", limit.Min, "max", limit.Max)
		c.setupErrs = append(c.setupErrs, err)
		limit.Unconstrained = true

	case limit.Ranged():
		current := c.angle(axis)
		var target float64
		switch {
		case current < limit.Min:
			target = limit.Min
		case current > limit.Max:
			target = limit.Max
		default:
			return limit
		}
		c.logger.Warn("initial angle outside limit, clamping",
			"axis", axis.String(), "angle", current, "min", limit.Min, "max", limit.Max)
		c.rotateAxis(axis, target-current)
	}
	return limit
}

// Tick advances the controller by dt seconds: velocities are integrated
// from the current input and the average of the previous and new velocity
// is applied as a rotation, yaw first.
func (c *Controller) Tick(dt float64) TickResult {
	if !c.enabled {
		return TickResult{}
	}

	c.prevVelocity = c.velocity
	c.velocity = mgl64.Vec2{
		c.integrator.Step(c.velocity[0], c.input[0], dt),
		c.integrator.Step(c.velocity[1], c.input[1], dt),
	}

	delta := c.prevVelocity.Add(c.velocity).Mul(0.5 * dt)
	return TickResult{
		Yaw:       delta[0],
		Pitch:     delta[1],
		YawFull:   c.applyDelta(AxisYaw, delta[0]),
		PitchFull: c.applyDelta(AxisPitch, delta[1]),
	}
}

// SetInput sets the analog stick deflection. Components are expected in
// [-1, 1]; x drives yaw and y drives pitch.
func (c *Controller) SetInput(x, y float64) {
	if !c.enabled {
		return
	}
	c.input = mgl64.Vec2{x, y}
}

// EndInput releases the stick. The pivot decelerates to rest.
func (c *Controller) EndInput() {
	c.input = mgl64.Vec2{}
}

// Stop halts the pivot immediately, dropping input and velocity.
func (c *Controller) Stop() {
	c.input = mgl64.Vec2{}
	c.velocity = mgl64.Vec2{}
	c.prevVelocity = mgl64.Vec2{}
}

// ResetToInitial restores the orientation captured at construction.
// Velocity and input are left untouched.
func (c *Controller) ResetToInitial() {
	if !c.enabled {
		return
	}
	c.pivot.Rotation = c.initialRotation
	c.updateAngles()
}

// Reconfigure replaces limits and motion tuning. The pivot is clamped into
// the new limits but the initial orientation is kept. Switching AroundPivot
// re-measures angles from the initial orientation.
//
// Unusable motion tuning is rejected and the previous config stays in
// place. Inverted limits are accepted and reported through SetupErrors.
func (c *Controller) Reconfigure(cfg Config) error {
	if !c.enabled {
		return nil
	}
	if err := cfg.CheckMotion(); err != nil {
		return err
	}
	c.setupErrs = c.setupErrs[:0]
	pivotChanged := cfg.AroundPivot != c.cfg.AroundPivot
	c.cfg = cfg
	c.integrator = cfg.integrator()
	if pivotChanged {
		c.setOffsets(c.initialRotation)
		c.updateAngles()
	}
	c.limits[AxisYaw] = c.setupAxis(AxisYaw, cfg.Yaw)
	c.limits[AxisPitch] = c.setupAxis(AxisPitch, cfg.Pitch)
	return nil
}

// setOffsets measures the angle offsets for AroundPivot from a reference
// pivot orientation, or clears them.
func (c *Controller) setOffsets(ref mgl64.Quat) {
	if !c.cfg.AroundPivot {
		c.hOffset, c.vOffset = 0, 0
		return
	}
	t := *c.pivot
	t.Rotation = ref
	c.hOffset = anglemath.SignedAngleBetween(t.Forward(), c.frame.Forward(), c.frame.Up())
	c.vOffset = anglemath.SignedAngleBetween(t.Forward(), c.frame.Forward(), t.Right())
}

// applyDelta rotates one axis by delta through its limiter and reports
// whether the full delta was applied.
func (c *Controller) applyDelta(axis Axis, delta float64) bool {
	applied, full := c.limits[axis].ClampDelta(c.angle(axis), delta)
	if applied != 0 {
		c.rotateAxis(axis, applied)
	}
	return full
}

// rotateAxis rotates the pivot by angle degrees: yaw about the frame's up,
// pitch about the pivot's left so that positive angles look up.
func (c *Controller) rotateAxis(axis Axis, angle float64) {
	if axis == AxisYaw {
		c.pivot.rotate(c.frame.Up(), angle)
	} else {
		c.pivot.rotate(c.pivot.Right().Mul(-1), angle)
	}
	c.updateAngles()
}

func (c *Controller) updateAngles() {
	fwd := c.pivot.Forward()
	up := c.frame.Up()
	c.angles = Angles{
		Yaw:   anglemath.NormalizeTo180(anglemath.SignedAngleBetween(c.frame.Forward(), fwd, up) + c.hOffset),
		Pitch: anglemath.NormalizeTo180(elevation(fwd, up) - c.vOffset),
	}
}

func (c *Controller) angle(axis Axis) float64 {
	if axis == AxisYaw {
		return c.angles.Yaw
	}
	return c.angles.Pitch
}

// Name returns the controller label.
func (c *Controller) Name() string { return c.name }

// Enabled reports whether the controller has a pivot to drive.
func (c *Controller) Enabled() bool { return c.enabled }

// Angles returns the current yaw and pitch in degrees, in (-180, 180].
func (c *Controller) Angles() Angles { return c.angles }

// Rotation returns the pivot's world rotation.
func (c *Controller) Rotation() mgl64.Quat {
	if !c.enabled {
		return mgl64.QuatIdent()
	}
	return c.pivot.Rotation
}

// InitialRotation returns the orientation ResetToInitial restores.
func (c *Controller) InitialRotation() mgl64.Quat { return c.initialRotation }

// Pivot returns a copy of the pivot transform.
func (c *Controller) Pivot() Transform {
	if !c.enabled {
		return Identity()
	}
	return *c.pivot
}

// Velocity returns the current angular velocity in degrees per second.
func (c *Controller) Velocity() mgl64.Vec2 { return c.velocity }

// Input returns the current stick deflection.
func (c *Controller) Input() mgl64.Vec2 { return c.input }

// Limits returns the effective yaw and pitch limits.
func (c *Controller) Limits() (yaw, pitch AxisLimit) {
	return c.limits[AxisYaw], c.limits[AxisPitch]
}

// Config returns the configuration the controller was built with.
func (c *Controller) Config() Config { return c.cfg }

// SetupErrors returns the diagnostics recorded while validating the
// configuration.
func (c *Controller) SetupErrors() []error {
	out := make([]error, len(c.setupErrs))
	copy(out, c.setupErrs)
	return out
}

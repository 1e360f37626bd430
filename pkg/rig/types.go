package rig

import (
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/teslashibe/go-camrig/pkg/rotation"
)

var (
	// ErrUnknownRig is returned for ids that are not managed.
	ErrUnknownRig = errors.New("rig: unknown rig")

	// ErrDuplicateRig is returned when adding an id twice.
	ErrDuplicateRig = errors.New("rig: rig already exists")
)

// Definition describes a rig to build. Pivot and Frame are copied; the
// manager owns the pivot from then on.
type Definition struct {
	ID     string
	Name   string
	Config rotation.Config
	Pivot  rotation.Transform
	Frame  rotation.Transform
	Lens   rotation.Lens
}

// Snapshot is a point-in-time view of a rig, safe to hand to other
// goroutines.
type Snapshot struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Enabled     bool       `json:"enabled"`
	Yaw         float64    `json:"yaw"`
	Pitch       float64    `json:"pitch"`
	Rotation    [4]float64 `json:"rotation"` // w, x, y, z
	Forward     [3]float64 `json:"forward"`
	Velocity    [2]float64 `json:"velocity"`
	Input       [2]float64 `json:"input"`
	Holders     int        `json:"holders"`
	Limits      Limits     `json:"limits"`
	SetupErrors []string   `json:"setup_errors,omitempty"`
	Tick        uint64     `json:"tick"`
}

// Limits mirrors the effective per-axis limits of a rig.
type Limits struct {
	Yaw   rotation.AxisLimit `json:"yaw"`
	Pitch rotation.AxisLimit `json:"pitch"`
}

// FrameResult reports the outcome of a framing request.
type FrameResult struct {
	YawFull   bool     `json:"yaw_full"`
	PitchFull bool     `json:"pitch_full"`
	Snapshot  Snapshot `json:"snapshot"`
}

// Publisher receives the snapshots of every rig after each step.
type Publisher interface {
	Publish(snaps []Snapshot)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(snaps []Snapshot)

// Publish calls f.
func (f PublisherFunc) Publish(snaps []Snapshot) { f(snaps) }

// Clock supplies wall-clock time. Rig time is unscaled: hosts that pause
// or slow their simulation keep driving cameras in real time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func quatArray(q mgl64.Quat) [4]float64 {
	return [4]float64{q.W, q.V.X(), q.V.Y(), q.V.Z()}
}

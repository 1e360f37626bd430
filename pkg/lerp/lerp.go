// Package lerp provides time-based interpolation factors and a colour driver
// that blends between two colours with them.
package lerp

import (
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/teslashibe/go-camrig/pkg/anglemath"
)

// Factor maps a time in seconds to an interpolation factor. Values outside
// [0, 1] are allowed; consumers clamp.
type Factor interface {
	LerpFactor(t float64) float64
}

// FactorFunc adapts a function to Factor.
type FactorFunc func(t float64) float64

// LerpFactor calls f.
func (f FactorFunc) LerpFactor(t float64) float64 { return f(t) }

// Sine oscillates with sin(t*Speed). The negative half of the wave clamps to
// the start colour, so it reads as a pulse with a rest phase.
type Sine struct {
	Speed float64
}

// LerpFactor implements Factor.
func (s Sine) LerpFactor(t float64) float64 {
	return math.Sin(t * s.Speed)
}

// Smooth eases another factor through a smoothstep curve, so blends linger
// near both ends. The inner factor is clamped to [0, 1] first.
type Smooth struct {
	Factor Factor
}

// LerpFactor implements Factor.
func (s Smooth) LerpFactor(t float64) float64 {
	if s.Factor == nil {
		return 0
	}
	return anglemath.SmoothStep(s.Factor.LerpFactor(t), 0, 1)
}

// Noise wanders smoothly through [0, 1] using 1D gradient noise.
type Noise struct {
	Speed  float64
	Offset float64
}

// NewNoise returns a Noise with a random offset in [0, 2) so several
// drivers started together do not move in lockstep.
func NewNoise(speed float64, rnd *rand.Rand) Noise {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(rand.Int63()))
	}
	return Noise{Speed: speed, Offset: rnd.Float64() * 2}
}

// LerpFactor implements Factor.
func (n Noise) LerpFactor(t float64) float64 {
	return gradientNoise((t + n.Offset) * n.Speed)
}

// Colour blends a toward b in RGB by t clamped to [0, 1].
func Colour(a, b colorful.Color, t float64) colorful.Color {
	return a.BlendRgb(b, clamp01(t))
}

// Driver computes a colour between Start and End over time.
type Driver struct {
	Start  colorful.Color
	End    colorful.Color
	Factor Factor
}

// At returns the colour at time t. A driver without a factor stays at Start.
func (d Driver) At(t float64) colorful.Color {
	if d.Factor == nil {
		return d.Start
	}
	return Colour(d.Start, d.End, d.Factor.LerpFactor(t))
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

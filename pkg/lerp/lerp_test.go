package lerp

import (
	"math"
	"math/rand"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
)

var (
	red  = colorful.Color{R: 1}
	blue = colorful.Color{B: 1}
)

func TestSine(t *testing.T) {
	s := Sine{Speed: 2}
	assert.InDelta(t, 0.0, s.LerpFactor(0), 1e-12)
	assert.InDelta(t, 1.0, s.LerpFactor(math.Pi/4), 1e-12)
	assert.InDelta(t, -1.0, s.LerpFactor(3*math.Pi/4), 1e-12)
}

func TestSmooth(t *testing.T) {
	linear := FactorFunc(func(t float64) float64 { return t })
	s := Smooth{Factor: linear}

	assert.InDelta(t, 0.0, s.LerpFactor(-2), 1e-12)
	assert.InDelta(t, 0.5, s.LerpFactor(0.5), 1e-12)
	assert.InDelta(t, 1.0, s.LerpFactor(3), 1e-12)
	// eased below the linear ramp on the first half
	assert.Less(t, s.LerpFactor(0.25), 0.25)

	assert.Equal(t, 0.0, Smooth{}.LerpFactor(1))
}

func TestNoise_Range(t *testing.T) {
	n := Noise{Speed: 3.7, Offset: 0.4}
	for x := -50.0; x < 50; x += 0.013 {
		v := n.LerpFactor(x)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestNoise_LatticeAndContinuity(t *testing.T) {
	for i := -5; i <= 5; i++ {
		assert.InDelta(t, 0.5, gradientNoise(float64(i)), 1e-9)
	}

	prev := gradientNoise(0)
	for x := 0.001; x < 20; x += 0.001 {
		v := gradientNoise(x)
		assert.Less(t, math.Abs(v-prev), 0.01, "jump at %v", x)
		prev = v
	}
}

func TestNoise_Varies(t *testing.T) {
	distinct := map[float64]bool{}
	for x := 0.25; x < 40; x += 1 {
		distinct[math.Round(gradientNoise(x)*1000)] = true
	}
	assert.Greater(t, len(distinct), 5)
}

func TestNewNoise_Offset(t *testing.T) {
	n := NewNoise(2, rand.New(rand.NewSource(3)))
	assert.Equal(t, 2.0, n.Speed)
	assert.GreaterOrEqual(t, n.Offset, 0.0)
	assert.Less(t, n.Offset, 2.0)
}

func TestColour_Clamps(t *testing.T) {
	assert.True(t, Colour(red, blue, -3).AlmostEqualRgb(red))
	assert.True(t, Colour(red, blue, 7).AlmostEqualRgb(blue))

	mid := Colour(red, blue, 0.5)
	assert.InDelta(t, 0.5, mid.R, 1e-9)
	assert.InDelta(t, 0.5, mid.B, 1e-9)
}

func TestDriver_At(t *testing.T) {
	d := Driver{Start: red, End: blue, Factor: FactorFunc(func(t float64) float64 { return t / 10 })}

	assert.True(t, d.At(0).AlmostEqualRgb(red))
	assert.True(t, d.At(10).AlmostEqualRgb(blue))
	assert.InDelta(t, 0.25, d.At(2.5).B, 1e-9)

	assert.True(t, Driver{Start: red, End: blue}.At(5).AlmostEqualRgb(red))
}

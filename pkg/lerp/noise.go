package lerp

import (
	"github.com/aquilax/go-perlin"
)

// Perlin parameters: persistence, frequency step, octaves and seed. The
// generator only reads its tables after construction so it is shared.
const (
	noiseAlpha   = 2
	noiseBeta    = 2
	noiseOctaves = 3
	noiseSeed    = 1
)

var generator = perlin.NewPerlin(noiseAlpha, noiseBeta, noiseOctaves, noiseSeed)

// gradientNoise is 1D Perlin noise remapped to [0, 1]. It is 0.5 at every
// integer lattice point and continuous everywhere.
func gradientNoise(x float64) float64 {
	return clamp01((generator.Noise1D(x) + 1) / 2)
}

package anglemath

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-9

func TestNormalizeTo180(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{45, 45},
		{180, 180},
		{-180, 180},
		{181, -179},
		{-181, 179},
		{190, -170},
		{360, 0},
		{540, 180},
		{-540, 180},
		{719, -1},
		{-725, -5},
		{3600 + 30, 30},
	}

	for _, tc := range tests {
		got := NormalizeTo180(tc.in)
		assert.InDelta(t, tc.want, got, tolerance, "NormalizeTo180(%v)", tc.in)
	}
}

func TestNormalizeTo180_RangeAndIdempotent(t *testing.T) {
	for a := -2000.0; a <= 2000.0; a += 7.25 {
		n := NormalizeTo180(a)
		if n <= -180 || n > 180 {
			t.Fatalf("NormalizeTo180(%v) = %v outside (-180, 180]", a, n)
		}
		if again := NormalizeTo180(n); again != n {
			t.Fatalf("not idempotent for %v: %v then %v", a, n, again)
		}
		// congruent mod 360
		diff := math.Mod(a-n, 360)
		if math.Abs(diff) > 1e-6 && math.Abs(math.Abs(diff)-360) > 1e-6 {
			t.Fatalf("NormalizeTo180(%v) = %v is not congruent", a, n)
		}
	}
}

func TestNormalizeTo180_Infinite(t *testing.T) {
	assert.True(t, math.IsNaN(NormalizeTo180(math.Inf(1))))
	assert.True(t, math.IsNaN(NormalizeTo180(math.Inf(-1))))
	assert.True(t, math.IsNaN(NormalizeTo180(math.NaN())))
}

func TestFlipToOppositeSign(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{40, -320},
		{-40, 320},
		{180, -180},
		{-180, 180},
		{400, -320},
		{-400, 320},
		{0, -360},
		{360, -360},
		{-360, 0},
	}

	for _, tc := range tests {
		assert.InDelta(t, tc.want, FlipToOppositeSign(tc.in), tolerance, "FlipToOppositeSign(%v)", tc.in)
	}
}

func TestFlipToOppositeSign_Properties(t *testing.T) {
	for a := -1500.0; a <= 1500.0; a += 13.5 {
		if math.Mod(a, 360) == 0 {
			continue
		}
		f := FlipToOppositeSign(a)
		if !HaveOppositeSigns(a, f) {
			t.Fatalf("FlipToOppositeSign(%v) = %v has the same sign", a, f)
		}
		if r := math.Mod(a-f, 360); math.Abs(r) > 1e-9 {
			t.Fatalf("FlipToOppositeSign(%v) = %v is not congruent mod 360", a, f)
		}
	}
}

func TestFlipToOppositeSign_Infinite(t *testing.T) {
	assert.Equal(t, math.Inf(-1), FlipToOppositeSign(math.Inf(1)))
	assert.Equal(t, math.Inf(1), FlipToOppositeSign(math.Inf(-1)))
}

func TestSignedAngleBetween(t *testing.T) {
	up := mgl64.Vec3{0, 1, 0}
	forward := mgl64.Vec3{0, 0, 1}
	right := mgl64.Vec3{1, 0, 0}

	assert.InDelta(t, 90, SignedAngleBetween(forward, right, up), tolerance)
	assert.InDelta(t, -90, SignedAngleBetween(right, forward, up), tolerance)
	assert.InDelta(t, 0, SignedAngleBetween(forward, forward, up), tolerance)

	diag := mgl64.Vec3{1, 0, 1}.Normalize()
	assert.InDelta(t, 45, SignedAngleBetween(forward, diag, up), 1e-9)

	// flipping the axis flips the sign
	assert.InDelta(t, -45, SignedAngleBetween(forward, diag, up.Mul(-1)), 1e-9)

	back := mgl64.Vec3{0, 0, -1}
	assert.InDelta(t, 180, math.Abs(SignedAngleBetween(forward, back, up)), 1e-9)
}

func TestCloserToZero(t *testing.T) {
	assert.Equal(t, 5.0, CloserToZero(-85, 5))
	assert.Equal(t, -3.0, CloserToZero(-3, 4))
	// ties return b
	assert.Equal(t, -2.0, CloserToZero(2, -2))
}

func TestHaveOppositeSigns(t *testing.T) {
	assert.True(t, HaveOppositeSigns(-1, 2))
	assert.False(t, HaveOppositeSigns(1, 2))
	assert.False(t, HaveOppositeSigns(0, -2))
}

package math

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

const tolerance = 1e-5

func assertVec3(t *testing.T, expected, actual Vec3) {
	t.Helper()
	assert.InDelta(t, expected.X, actual.X, tolerance, "X")
	assert.InDelta(t, expected.Y, actual.Y, tolerance, "Y")
	assert.InDelta(t, expected.Z, actual.Z, tolerance, "Z")
}

func TestVec3Operations(t *testing.T) {
	v1 := NewVec3(1, 2, 3)
	v2 := NewVec3(4, 5, 6)

	assert.Equal(t, NewVec3(5, 7, 9), v1.Add(v2))
	assert.Equal(t, NewVec3(3, 3, 3), v2.Sub(v1))
	assert.Equal(t, NewVec3(2, 4, 6), v1.Mul(2))
	assert.Equal(t, float32(32), v1.Dot(v2))

	// Right x Up = Front in a right-handed system
	assert.Equal(t, Vec3Front, Vec3Right.Cross(Vec3Up))
}

func TestVec3Normalize(t *testing.T) {
	assert.Equal(t, NewVec3(1, 0, 0), NewVec3(3, 0, 0).Normalize())
	assert.InDelta(t, 1, NewVec3(1, 2, 3).Normalize().Length(), tolerance)
	assert.Equal(t, Vec3Zero, Vec3Zero.Normalize())
}

func TestVec2SubAndSwap(t *testing.T) {
	d := NewVec2(10, 4).Sub(NewVec2(3, 1))
	assert.Equal(t, NewVec2(7, 3), d)
	assert.Equal(t, NewVec2(3, 7), d.Swap())
}

func TestMat4Identity(t *testing.T) {
	m := Mat4Identity()
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			expected := float32(0)
			if c == r {
				expected = 1
			}
			assert.Equal(t, expected, m[c][r], "[%d][%d]", c, r)
		}
	}
	a := Mat4Translation(NewVec3(1, 2, 3)).Mul(Mat4RotationX(0.7))
	assert.Equal(t, a, Mat4Identity().Mul(a))
	assert.Equal(t, a, a.Mul(Mat4Identity()))
}

func TestMat4TranslationMovesPoints(t *testing.T) {
	translation := NewVec3(1, 2, 3)
	m := Mat4Translation(translation)

	assert.Equal(t, float32(1), m[3][0])
	assert.Equal(t, float32(2), m[3][1])
	assert.Equal(t, float32(3), m[3][2])
	assertVec3(t, translation, m.MulPoint(Vec3Zero))
}

func TestMat4MulAppliesRightOperandFirst(t *testing.T) {
	// T·S scales first, then translates.
	ts := Mat4Translation(NewVec3(1, 0, 0)).Mul(Mat4UniformScale(2))
	assertVec3(t, NewVec3(3, 0, 0), ts.MulPoint(NewVec3(1, 0, 0)))

	// S·T translates first, then scales.
	st := Mat4UniformScale(2).Mul(Mat4Translation(NewVec3(1, 0, 0)))
	assertVec3(t, NewVec3(4, 0, 0), st.MulPoint(NewVec3(1, 0, 0)))
}

func TestMat4MulIsAssociative(t *testing.T) {
	a := Mat4RotationAxis(NewVec3(1, 1, 0), 0.4)
	b := Mat4Translation(NewVec3(0.5, -2, 3))
	c := Mat4Scale(NewVec3(1, 2, 3))
	assert.True(t, a.Mul(b).Mul(c).ApproxEqual(a.Mul(b.Mul(c)), tolerance))
	assert.False(t, a.Mul(b).ApproxEqual(b.Mul(a), tolerance))
}

func TestMat4RotationsAreRightHanded(t *testing.T) {
	quarter := float32(math32.Pi / 2)
	assertVec3(t, NewVec3(0, 0, 1), Mat4RotationX(quarter).MulPoint(Vec3Up))
	assertVec3(t, NewVec3(0, 0, -1), Mat4RotationY(quarter).MulPoint(Vec3Right))
	assertVec3(t, NewVec3(0, 1, 0), Mat4RotationZ(quarter).MulPoint(Vec3Right))
}

func TestMat4RotationAxisMatchesAxisRotations(t *testing.T) {
	for _, angle := range []float32{-2.5, -0.3, 0, 0.9, 3.1} {
		assert.True(t, Mat4RotationAxis(AxisX, angle).ApproxEqual(Mat4RotationX(angle), tolerance))
		assert.True(t, Mat4RotationAxis(AxisY, angle).ApproxEqual(Mat4RotationY(angle), tolerance))
		assert.True(t, Mat4RotationAxis(AxisZ, angle).ApproxEqual(Mat4RotationZ(angle), tolerance))
	}
}

func TestMat4RotationAxisNormalizesAxis(t *testing.T) {
	assert.True(t, Mat4RotationAxis(NewVec3(0, 5, 0), 1.2).ApproxEqual(Mat4RotationY(1.2), tolerance))
	assert.Equal(t, Mat4Identity(), Mat4RotationAxis(Vec3Zero, 1.2))
}

func TestMat4Perspective(t *testing.T) {
	fov := float32(math32.Pi / 3)
	m := Mat4Perspective(fov, 1.0, 0.1, 100)

	f := 1 / math32.Tan(fov/2)
	assert.InDelta(t, f, m[0][0], tolerance)
	assert.InDelta(t, f, m[1][1], tolerance)
	assert.Equal(t, float32(-1), m[2][3])
	assert.Equal(t, float32(0), m[3][3])

	// Near plane maps to -1, far plane to +1.
	assert.InDelta(t, -1, m.MulPoint(NewVec3(0, 0, -0.1)).Z, 1e-4)
	assert.InDelta(t, 1, m.MulPoint(NewVec3(0, 0, -100)).Z, 1e-4)

	wide := Mat4Perspective(fov, 2.0, 0.1, 100)
	assert.InDelta(t, m[0][0]/2, wide[0][0], tolerance)
}

func TestNormalMatrixOfRotationIsRotation(t *testing.T) {
	rot := Mat4RotationAxis(NewVec3(1, 2, 3), 0.8)
	n := NormalMatrix(rot.Mul(Mat4Translation(NewVec3(4, 5, 6))))
	upper := rot.UpperLeft3()
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			assert.InDelta(t, upper[c][r], n[c][r], tolerance)
		}
	}
}

func TestNormalMatrixUndoesNonUniformScale(t *testing.T) {
	n := NormalMatrix(Mat4Scale(NewVec3(2, 4, 0.5)))
	assert.InDelta(t, 0.5, n[0][0], tolerance)
	assert.InDelta(t, 0.25, n[1][1], tolerance)
	assert.InDelta(t, 2, n[2][2], tolerance)
}

func TestNormalMatrixSingularFallsBackToIdentity(t *testing.T) {
	assert.Equal(t, Mat3Identity(), NormalMatrix(Mat4UniformScale(0)))
	assert.Equal(t, Mat3Identity(), NormalMatrix(Mat4Scale(NewVec3(1, 0, 1))))
}

func TestNormalMatrixOfTinyUniformScale(t *testing.T) {
	n := NormalMatrix(Mat4UniformScale(1e-5))
	for c := 0; c < 3; c++ {
		for r := 0; r < 3; r++ {
			if c == r {
				assert.InEpsilon(t, 1e5, n[c][r], 1e-4)
			} else {
				assert.Zero(t, n[c][r])
			}
		}
	}

	// A flattened axis is singular whatever the overall magnitude.
	assert.Equal(t, Mat3Identity(), NormalMatrix(Mat4Scale(NewVec3(1e-5, 1e-13, 1e-5))))
	assert.Equal(t, Mat3Identity(), NormalMatrix(Mat4Scale(NewVec3(3, 1e-8, 3))))
	assert.Equal(t, Mat3Identity(), NormalMatrix(Mat4Scale(NewVec3(math32.NaN(), 1, 1))))
}

func TestMat3InverseRoundTrip(t *testing.T) {
	m := Mat4RotationZ(0.3).Mul(Mat4Scale(NewVec3(2, 3, 4))).UpperLeft3()
	inv, ok := m.Inverse()
	assert.True(t, ok)
	v := NewVec3(1, -2, 0.5)
	assertVec3(t, v, inv.MulVec(m.MulVec(v)))
}

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Mat4RotationY(0.3)
	m2 := Mat4Translation(NewVec3(1, 2, 3))

	for i := 0; i < b.N; i++ {
		_ = m1.Mul(m2)
	}
}

func BenchmarkNormalMatrix(b *testing.B) {
	m := Mat4RotationY(0.3).Mul(Mat4UniformScale(0.25))
	for i := 0; i < b.N; i++ {
		_ = NormalMatrix(m)
	}
}

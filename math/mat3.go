package math

import "github.com/chewxy/math32"

// Mat3 is a 3x3 matrix stored column-major: m[col][row].
type Mat3 [3][3]float32

// singularEpsilon is the determinant magnitude, measured after scaling the
// largest entry to 1, below which a matrix is treated as non-invertible.
const singularEpsilon = 1e-6

func Mat3Identity() Mat3 {
	return Mat3{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0, 1},
	}
}

func (m Mat3) Transpose() Mat3 {
	return Mat3{
		{m[0][0], m[1][0], m[2][0]},
		{m[0][1], m[1][1], m[2][1]},
		{m[0][2], m[1][2], m[2][2]},
	}
}

func (m Mat3) Determinant() float32 {
	return m[0][0]*(m[1][1]*m[2][2]-m[2][1]*m[1][2]) -
		m[1][0]*(m[0][1]*m[2][2]-m[2][1]*m[0][2]) +
		m[2][0]*(m[0][1]*m[1][2]-m[1][1]*m[0][2])
}

// MulVec returns m·v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[1][0]*v.Y + m[2][0]*v.Z,
		Y: m[0][1]*v.X + m[1][1]*v.Y + m[2][1]*v.Z,
		Z: m[0][2]*v.X + m[1][2]*v.Y + m[2][2]*v.Z,
	}
}

// Inverse returns the inverse and true, or the identity and false when m is
// singular. Singularity is judged on m scaled so its largest entry is 1, so
// tiny but well-conditioned matrices still invert.
func (m Mat3) Inverse() (Mat3, bool) {
	scale := m.maxAbs()
	if scale == 0 || math32.IsNaN(scale) || math32.IsInf(scale, 0) {
		return Mat3Identity(), false
	}
	n := m.mulScalar(1 / scale)
	det := n.Determinant()
	if math32.Abs(det) < singularEpsilon || math32.IsNaN(det) {
		return Mat3Identity(), false
	}
	// m = scale·n, so m⁻¹ = n⁻¹ / scale.
	inv := 1 / (det * scale)

	// Adjugate: transposed cofactor matrix, written in [col][row] form.
	return Mat3{
		{
			(n[1][1]*n[2][2] - n[2][1]*n[1][2]) * inv,
			(n[2][1]*n[0][2] - n[0][1]*n[2][2]) * inv,
			(n[0][1]*n[1][2] - n[1][1]*n[0][2]) * inv,
		},
		{
			(n[2][0]*n[1][2] - n[1][0]*n[2][2]) * inv,
			(n[0][0]*n[2][2] - n[2][0]*n[0][2]) * inv,
			(n[1][0]*n[0][2] - n[0][0]*n[1][2]) * inv,
		},
		{
			(n[1][0]*n[2][1] - n[2][0]*n[1][1]) * inv,
			(n[2][0]*n[0][1] - n[0][0]*n[2][1]) * inv,
			(n[0][0]*n[1][1] - n[1][0]*n[0][1]) * inv,
		},
	}, true
}

func (m Mat3) maxAbs() float32 {
	var largest float32
	for c := range m {
		for r := range m[c] {
			largest = max(largest, math32.Abs(m[c][r]))
		}
	}
	return largest
}

func (m Mat3) mulScalar(s float32) Mat3 {
	for c := range m {
		for r := range m[c] {
			m[c][r] *= s
		}
	}
	return m
}

// NormalMatrix returns the inverse-transpose of the model matrix's upper-left
// 3x3, which keeps normals perpendicular under non-uniform scale. A singular
// model matrix yields the identity.
func NormalMatrix(model Mat4) Mat3 {
	inv, ok := model.UpperLeft3().Inverse()
	if !ok {
		return Mat3Identity()
	}
	return inv.Transpose()
}

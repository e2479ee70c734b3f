package math

type Vec4 struct {
	X, Y, Z, W float32
}

// ToVec3DivW performs the perspective divide. W == 0 leaves xyz as is.
func (v Vec4) ToVec3DivW() Vec3 {
	if v.W != 0 {
		return Vec3{X: v.X / v.W, Y: v.Y / v.W, Z: v.Z / v.W}
	}
	return Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

package scene

import (
	"orbit-renderer/math"
)

// DefaultSensitivity converts pointer travel to radians per frame.
const DefaultSensitivity = 0.001

// Camera orbits the origin from pointer drags. Angles.X is pitch about the
// X axis and Angles.Y is yaw about the Y axis.
type Camera struct {
	WorldPosition math.Vec3
	Angles        math.Vec2
	Sensitivity   float32

	active  bool
	down    math.Vec2
	pending math.Vec2
}

func NewCamera() *Camera {
	return &Camera{
		WorldPosition: math.NewVec3(0, 0, 2),
		Sensitivity:   DefaultSensitivity,
	}
}

// PointerDown starts a drag at p.
func (c *Camera) PointerDown(p math.Vec2) {
	c.down = p
	c.active = true
}

// PointerDrag forwards the offset from the drag origin. Ignored unless a
// drag is in progress.
func (c *Camera) PointerDrag(p math.Vec2) {
	if !c.active {
		return
	}
	c.ApplyOrbit(p.Sub(c.down))
}

func (c *Camera) PointerUp() {
	c.active = false
}

// Active reports whether a drag is in progress.
func (c *Camera) Active() bool {
	return c.active
}

// ApplyOrbit stores delta as the orbit input for the next Advance.
func (c *Camera) ApplyOrbit(delta math.Vec2) {
	c.pending = delta
}

// Advance accumulates the pending orbit into the angles. Horizontal travel
// drives yaw and vertical travel drives pitch. It runs once per frame, so
// the same held delta keeps turning the camera.
func (c *Camera) Advance() {
	if !c.active {
		return
	}
	c.Angles = c.Angles.Add(c.pending.Swap().Mul(c.Sensitivity))
}

// ViewMatrix is T(-position) · Rx(pitch) · Ry(yaw).
func (c *Camera) ViewMatrix() math.Mat4 {
	return math.Mat4Translation(c.WorldPosition.Negate()).
		Mul(math.Mat4RotationX(c.Angles.X)).
		Mul(math.Mat4RotationY(c.Angles.Y))
}

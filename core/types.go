package core

import (
	"orbit-renderer/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// ColorFrom converts an RGBA quadruple, the shape config files use.
func ColorFrom(a [4]float32) Color {
	return Color{R: a[0], G: a[1], B: a[2], A: a[3]}
}

// RGB drops alpha.
func (c Color) RGB() math.Vec3 {
	return math.Vec3{X: c.R, Y: c.G, Z: c.B}
}

// Vertex is the interleaved per-vertex record: position, normal, texture
// coordinate. Eight float32s, 32 bytes, no padding.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
}

// VertexFloats is the number of float32 components in a Vertex.
const VertexFloats = 8

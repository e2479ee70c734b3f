package scene

import (
	"encoding/binary"
	stdmath "math"

	"orbit-renderer/math"
)

// Binding slots of the fixed shading stage.
const (
	VertexUniformIndex    = 1
	FragmentUniformIndex  = 0
	BaseColorTextureIndex = 0
	VertexBufferIndex     = 0
)

// Block sizes under std140 layout.
const (
	VertexUniformsSize   = 176
	FragmentUniformsSize = 144
)

// VertexUniforms is the per-draw vertex stage block.
type VertexUniforms struct {
	ViewProjection math.Mat4
	Model          math.Mat4
	Normal         math.Mat3
}

// FragmentUniforms is the per-draw fragment stage block.
type FragmentUniforms struct {
	CameraWorldPosition math.Vec3
	AmbientLightColor   math.Vec3
	SpecularColor       math.Vec3
	SpecularPower       float32
	Lights              [LightCount]Light
}

// Bytes packs the block in std140 layout: two column-major mat4s followed
// by the normal matrix with each column padded to a vec4.
func (u VertexUniforms) Bytes() []byte {
	w := block(make([]byte, VertexUniformsSize))
	w.mat4(0, u.ViewProjection)
	w.mat4(64, u.Model)
	for c := 0; c < 3; c++ {
		w.vec3(128+16*c, math.Vec3{X: u.Normal[c][0], Y: u.Normal[c][1], Z: u.Normal[c][2]})
	}
	return w
}

// Bytes packs the block in std140 layout. Every vec3 starts on a 16-byte
// boundary; the specular power fills the slot after the specular colour.
func (u FragmentUniforms) Bytes() []byte {
	w := block(make([]byte, FragmentUniformsSize))
	w.vec3(0, u.CameraWorldPosition)
	w.vec3(16, u.AmbientLightColor)
	w.vec3(32, u.SpecularColor)
	w.float(44, u.SpecularPower)
	for i, l := range u.Lights {
		w.vec3(48+32*i, l.WorldPosition)
		w.vec3(48+32*i+16, l.Color)
	}
	return w
}

type block []byte

func (b block) float(off int, f float32) {
	binary.LittleEndian.PutUint32(b[off:], stdmath.Float32bits(f))
}

func (b block) vec3(off int, v math.Vec3) {
	b.float(off, v.X)
	b.float(off+4, v.Y)
	b.float(off+8, v.Z)
}

func (b block) mat4(off int, m math.Mat4) {
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			b.float(off+16*c+4*r, m[c][r])
		}
	}
}

package asset

import (
	"fmt"
	"strings"

	"github.com/chewxy/math32"

	"orbit-renderer/core"
	"orbit-renderer/gpu"
	"orbit-renderer/math"
)

// BuiltinPrefix marks a mesh reference that is generated instead of read
// from disk, e.g. "builtin:sphere".
const BuiltinPrefix = "builtin:"

var builtins = map[string]func() *MeshData{
	"sphere": func() *MeshData { return Sphere(0.5, 32, 16) },
	"torus":  func() *MeshData { return Torus(0.35, 0.15, 32, 16) },
	"plane":  func() *MeshData { return Plane(1, 1, 1) },
}

func builtinMesh(ref string) (*MeshData, bool, error) {
	name, ok := strings.CutPrefix(ref, BuiltinPrefix)
	if !ok {
		return nil, false, nil
	}
	gen, ok := builtins[name]
	if !ok {
		return nil, true, fmt.Errorf("%w: no built-in mesh %q", errUnsupportedFormat, name)
	}
	return gen(), true, nil
}

func singleSubmesh(name string, vertices []core.Vertex, indices []uint32) *MeshData {
	return &MeshData{
		Name:     name,
		Vertices: vertices,
		Submeshes: []SubmeshData{{
			Name:      name,
			Indices:   indices,
			Primitive: gpu.PrimitiveTriangle,
		}},
	}
}

// Sphere generates a UV sphere with counter-clockwise outward faces.
func Sphere(radius float32, segments, rings int) *MeshData {
	segments = max(segments, 3)
	rings = max(rings, 2)

	vertices := make([]core.Vertex, 0, (rings+1)*(segments+1))
	for ring := 0; ring <= rings; ring++ {
		phi := float32(ring) * math32.Pi / float32(rings)
		sinPhi, cosPhi := math32.Sincos(phi)
		for seg := 0; seg <= segments; seg++ {
			theta := float32(seg) * 2 * math32.Pi / float32(segments)
			sinTheta, cosTheta := math32.Sincos(theta)
			normal := math.Vec3{X: sinPhi * cosTheta, Y: cosPhi, Z: sinPhi * sinTheta}
			vertices = append(vertices, core.Vertex{
				Position: normal.Mul(radius),
				Normal:   normal,
				UV:       math.Vec2{X: float32(seg) / float32(segments), Y: float32(ring) / float32(rings)},
			})
		}
	}

	indices := make([]uint32, 0, rings*segments*6)
	for ring := 0; ring < rings; ring++ {
		for seg := 0; seg < segments; seg++ {
			current := uint32(ring*(segments+1) + seg)
			next := current + uint32(segments+1)
			indices = append(indices, current, current+1, next)
			indices = append(indices, current+1, next+1, next)
		}
	}
	return singleSubmesh("sphere", vertices, indices)
}

// Torus generates a ring around the Y axis.
func Torus(majorRadius, minorRadius float32, majorSegments, minorSegments int) *MeshData {
	majorSegments = max(majorSegments, 3)
	minorSegments = max(minorSegments, 3)

	vertices := make([]core.Vertex, 0, (majorSegments+1)*(minorSegments+1))
	for i := 0; i <= majorSegments; i++ {
		sinTheta, cosTheta := math32.Sincos(float32(i) * 2 * math32.Pi / float32(majorSegments))
		for j := 0; j <= minorSegments; j++ {
			sinPhi, cosPhi := math32.Sincos(float32(j) * 2 * math32.Pi / float32(minorSegments))
			ring := majorRadius + minorRadius*cosPhi
			vertices = append(vertices, core.Vertex{
				Position: math.Vec3{X: ring * cosTheta, Y: minorRadius * sinPhi, Z: ring * sinTheta},
				Normal:   math.Vec3{X: cosPhi * cosTheta, Y: sinPhi, Z: cosPhi * sinTheta}.Normalize(),
				UV:       math.Vec2{X: float32(i) / float32(majorSegments), Y: float32(j) / float32(minorSegments)},
			})
		}
	}

	indices := make([]uint32, 0, majorSegments*minorSegments*6)
	for i := 0; i < majorSegments; i++ {
		for j := 0; j < minorSegments; j++ {
			current := uint32(i*(minorSegments+1) + j)
			next := uint32((i+1)*(minorSegments+1) + j)
			indices = append(indices, current, current+1, next)
			indices = append(indices, current+1, next+1, next)
		}
	}
	return singleSubmesh("torus", vertices, indices)
}

// Plane generates a subdivided quad in the XZ plane facing +Y.
func Plane(width, depth float32, subdivisions int) *MeshData {
	subdivisions = max(subdivisions, 1)
	halfW, halfD := width/2, depth/2
	stride := uint32(subdivisions + 1)

	vertices := make([]core.Vertex, 0, (subdivisions+1)*(subdivisions+1))
	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)
			vertices = append(vertices, core.Vertex{
				Position: math.Vec3{X: -halfW + u*width, Z: -halfD + v*depth},
				Normal:   math.Vec3Up,
				UV:       math.Vec2{X: u, Y: v},
			})
		}
	}

	indices := make([]uint32, 0, subdivisions*subdivisions*6)
	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			topLeft := uint32(z)*stride + uint32(x)
			bottomLeft := topLeft + stride
			indices = append(indices, topLeft, bottomLeft, topLeft+1)
			indices = append(indices, topLeft+1, bottomLeft, bottomLeft+1)
		}
	}
	return singleSubmesh("plane", vertices, indices)
}

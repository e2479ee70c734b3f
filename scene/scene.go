// Package scene holds the scene graph, the orbit camera and the per-frame
// animation and traversal that turn the graph into draw commands.
package scene

import (
	"fmt"

	"github.com/chewxy/math32"

	"orbit-renderer/gpu"
	"orbit-renderer/math"
)

// Config holds the constants of the satellite animation and the projection.
type Config struct {
	SatelliteCount int
	FieldOfView    float32 // vertical, radians
	Near           float32
	Far            float32
	CentralName    string
	CentralScale   float32
	RotationSpeed  float32 // revolutions per second
	PivotPosition  math.Vec3
	RotationOffset math.Vec3
	SatelliteScale float32
}

func DefaultConfig() Config {
	return Config{
		SatelliteCount: 10,
		FieldOfView:    math32.Pi / 3,
		Near:           0.1,
		Far:            100,
		CentralName:    "formica_rufa",
		CentralScale:   0.5,
		RotationSpeed:  0.3,
		PivotPosition:  math.NewVec3(0.4, 0, 0),
		RotationOffset: math.NewVec3(2.4, 0, 0),
		SatelliteScale: 0.25,
	}
}

// SatelliteName is the node name animated as satellite i (1-based).
func (c Config) SatelliteName(i int) string {
	return fmt.Sprintf("%s_%d", c.CentralName, i)
}

// SatelliteTransform is the local transform of satellite i at time t:
//
//	Ry(h) · T(offset) · Rz(2π·speed·t + h) · T(pivot) · Rz(-π/2) · S(scale) · Ry(-π/2)
//
// with h = 2π·i/N. It depends only on i, t and the config.
func SatelliteTransform(cfg Config, i int, t float32) math.Mat4 {
	n := cfg.SatelliteCount
	if n <= 0 {
		n = 1
	}
	horizontal := 2 * math32.Pi * float32(i) / float32(n)
	spin := 2*math32.Pi*cfg.RotationSpeed*t + horizontal

	base := math.Mat4RotationAxis(math.AxisZ, -math32.Pi/2).
		Mul(math.Mat4UniformScale(cfg.SatelliteScale)).
		Mul(math.Mat4RotationAxis(math.AxisY, -math32.Pi/2))

	return math.Mat4RotationAxis(math.AxisY, horizontal).
		Mul(math.Mat4Translation(cfg.RotationOffset)).
		Mul(math.Mat4RotationAxis(math.AxisZ, spin)).
		Mul(math.Mat4Translation(cfg.PivotPosition)).
		Mul(base)
}

// Scene owns the node tree, the camera and the lighting. It is driven from
// a single goroutine: Update then DrawRecursive, once per frame.
type Scene struct {
	Root    *Node
	Camera  *Camera
	Ambient math.Vec3
	Lights  [LightCount]Light

	cfg        Config
	view       math.Mat4
	projection math.Mat4
}

func New(cfg Config) *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		Camera:     NewCamera(),
		cfg:        cfg,
		view:       math.Mat4Identity(),
		projection: math.Mat4Identity(),
	}
}

func (s *Scene) Config() Config {
	return s.cfg
}

// SetLighting replaces the ambient colour and the three lights.
func (s *Scene) SetLighting(ambient math.Vec3, lights [LightCount]Light) {
	s.Ambient = ambient
	s.Lights = lights
}

// ViewMatrix is the view matrix computed by the last Update.
func (s *Scene) ViewMatrix() math.Mat4 {
	return s.view
}

// ProjectionMatrix is the projection computed by the last Update.
func (s *Scene) ProjectionMatrix() math.Mat4 {
	return s.projection
}

// Update advances the animation to time seconds. The order is fixed:
// camera orbit (only while dragging), view and projection, the central node,
// then satellites 1..N. Animated nodes missing from the tree are skipped.
func (s *Scene) Update(time, aspectRatio float32, dragging bool) {
	if dragging {
		s.Camera.Advance()
	}

	s.view = s.Camera.ViewMatrix()
	s.projection = math.Mat4Perspective(s.cfg.FieldOfView, aspectRatio, s.cfg.Near, s.cfg.Far)

	if s.Root == nil {
		return
	}
	// Lookups run every frame so renamed or re-parented nodes are picked up.
	if central := s.Root.FindByNameRecursive(s.cfg.CentralName); central != nil {
		central.LocalTransform = math.Mat4UniformScale(s.cfg.CentralScale)
	}
	for i := 1; i <= s.cfg.SatelliteCount; i++ {
		if node := s.Root.FindByNameRecursive(s.cfg.SatelliteName(i)); node != nil {
			node.LocalTransform = SatelliteTransform(s.cfg, i, time)
		}
	}
}

// DrawRecursive walks node's subtree in pre-order, accumulating
// world = parent · local at every level, and records the draws of every
// node that has both a mesh and a base colour texture. It returns the
// number of indexed draws recorded.
func (s *Scene) DrawRecursive(node *Node, parentTransform math.Mat4, rec gpu.Recording) int {
	if node == nil {
		return 0
	}
	world := parentTransform.Mul(node.LocalTransform)

	draws := 0
	if d, ok := node.Drawable(); ok {
		vertex := VertexUniforms{
			ViewProjection: s.projection.Mul(s.view),
			Model:          world,
			Normal:         math.NormalMatrix(world),
		}
		fragment := FragmentUniforms{
			CameraWorldPosition: s.Camera.WorldPosition,
			AmbientLightColor:   s.Ambient,
			SpecularColor:       node.Material.SpecularColor,
			SpecularPower:       node.Material.SpecularPower,
			Lights:              s.Lights,
		}

		rec.SetVertexBytes(vertex.Bytes(), VertexUniformIndex)
		rec.SetFragmentBytes(fragment.Bytes(), FragmentUniformIndex)
		rec.SetFragmentTexture(d.Texture, BaseColorTextureIndex)
		rec.SetVertexBuffer(d.Mesh.VertexBuffer, d.Mesh.VertexOffset, VertexBufferIndex)

		for _, sub := range d.Mesh.Submeshes {
			rec.DrawIndexed(sub.Primitive, sub.IndexCount, sub.IndexType, sub.IndexBuffer, sub.IndexOffset)
			draws++
		}
	}

	for _, child := range node.Children {
		draws += s.DrawRecursive(child, world, rec)
	}
	return draws
}

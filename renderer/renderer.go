// Package renderer drives the per-frame cycle: it owns the backend state
// objects and the scene, animates the scene and records its draws.
package renderer

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"orbit-renderer/config"
	"orbit-renderer/core"
	"orbit-renderer/gpu"
	"orbit-renderer/math"
	"orbit-renderer/scene"
)

// Shader stages of the fixed shading program.
const (
	VertexFunction   = "vertex_main"
	FragmentFunction = "fragment_main"
)

// AssetLoader provides the meshes and textures the scene is built from.
// *asset.Loader satisfies it.
type AssetLoader interface {
	LoadMesh(ref string, layout gpu.VertexLayout) (*gpu.Mesh, error)
	LoadTexture(name string, opts gpu.TextureOptions) (gpu.Texture, error)
}

// FrameStats counts rendered and skipped frames.
type FrameStats struct {
	Drawn   uint64
	Skipped uint64
	// DrawCalls is the number of indexed draws in the last drawn frame.
	DrawCalls int
}

type Renderer struct {
	device   gpu.Device
	log      *zap.Logger
	scene    *scene.Scene
	pipeline gpu.Pipeline
	depth    gpu.DepthState
	sampler  gpu.Sampler

	clearColor core.Color
	timeStep   float32
	time       float32
	stats      FrameStats
}

// New creates the pipeline and state objects and builds the scene. Any
// failure aborts construction; no partially initialised renderer is
// returned.
func New(device gpu.Device, assets AssetLoader, cfg config.Config, log *zap.Logger) (*Renderer, error) {
	if device == nil {
		return nil, errors.New("renderer: no GPU device")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("renderer")

	layout := gpu.StandardVertexLayout()
	pipeline, err := device.CompilePipeline(gpu.PipelineDescriptor{
		VertexFunction:   VertexFunction,
		FragmentFunction: FragmentFunction,
		ColorFormat:      gpu.PixelFormatBGRA8UnormSRGB,
		DepthFormat:      gpu.PixelFormatDepth32Float,
		VertexLayout:     layout,
	})
	if err != nil {
		return nil, fmt.Errorf("compile pipeline: %w", err)
	}

	depth, err := device.MakeDepthStencilState(gpu.DepthStencilDescriptor{
		Compare:      gpu.CompareLess,
		WriteEnabled: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create depth state: %w", err)
	}

	sampler, err := device.MakeSampler(gpu.SamplerDescriptor{
		MinFilter:             gpu.FilterLinear,
		MagFilter:             gpu.FilterLinear,
		MipFilter:             gpu.FilterLinear,
		NormalizedCoordinates: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}

	s, err := BuildScene(assets, cfg)
	if err != nil {
		return nil, fmt.Errorf("build scene: %w", err)
	}

	nodes := 0
	s.Root.Walk(func(*scene.Node, int) { nodes++ })
	log.Info("renderer ready",
		zap.String("model", cfg.Assets.Model),
		zap.String("texture", cfg.Assets.Texture),
		zap.Int("nodes", nodes),
		zap.Int("satellites", cfg.Scene.Satellites))

	return &Renderer{
		device:     device,
		log:        log,
		scene:      s,
		pipeline:   pipeline,
		depth:      depth,
		sampler:    sampler,
		clearColor: cfg.ClearColor(),
		timeStep:   cfg.TimeStep(),
	}, nil
}

// BuildScene loads the configured model and texture and assembles the tree:
// the central node under the root and every satellite under the central
// node, all sharing the mesh, texture and material.
func BuildScene(assets AssetLoader, cfg config.Config) (*scene.Scene, error) {
	if assets == nil {
		return nil, errors.New("no asset loader")
	}
	sc := cfg.SceneConfig()
	s := scene.New(sc)
	s.Camera.WorldPosition = math.Vec3From(cfg.Camera.Position)
	if cfg.Camera.Sensitivity != 0 {
		s.Camera.Sensitivity = cfg.Camera.Sensitivity
	}
	s.SetLighting(math.Vec3From(cfg.Scene.Ambient), cfg.SceneLights())

	mesh, err := assets.LoadMesh(cfg.Assets.Model, gpu.StandardVertexLayout())
	if err != nil {
		return nil, err
	}
	texture, err := assets.LoadTexture(cfg.Assets.Texture, gpu.TextureOptions{
		GenerateMipmaps: true,
		SRGB:            true,
	})
	if err != nil {
		return nil, err
	}

	material := scene.Material{
		SpecularColor:    math.Vec3From(cfg.Material.SpecularColor),
		SpecularPower:    cfg.Material.SpecularPower,
		BaseColorTexture: texture,
	}
	newNode := func(name string) *scene.Node {
		n := scene.NewNode(name)
		n.Mesh = mesh
		n.Material = material
		return n
	}

	central := newNode(sc.CentralName)
	if err := s.Root.AddChild(central); err != nil {
		return nil, err
	}
	for i := 1; i <= sc.SatelliteCount; i++ {
		if err := central.AddChild(newNode(sc.SatelliteName(i))); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Draw renders one frame. The animation clock advances by one time step
// even when the backend has no drawable; such a frame is skipped before
// anything else changes.
func (r *Renderer) Draw(aspectRatio float32) {
	r.time += r.timeStep

	rec, drawable, err := r.device.BeginFrame(gpu.RenderPassDescriptor{
		ClearColor: r.clearColor,
		ClearDepth: 1,
	})
	if err != nil {
		r.stats.Skipped++
		r.log.Debug("frame skipped", zap.Error(err), zap.Float32("time", r.time))
		return
	}

	r.scene.Update(r.time, aspectRatio, r.scene.Camera.Active())

	rec.SetPipeline(r.pipeline)
	rec.SetDepthStencilState(r.depth)
	rec.SetFragmentSampler(r.sampler, scene.BaseColorTextureIndex)
	rec.SetFrontFacing(gpu.WindingCounterClockwise)
	rec.SetCullMode(gpu.CullBack)

	draws := r.scene.DrawRecursive(r.scene.Root, math.Mat4Identity(), rec)

	rec.End()
	r.device.Present(drawable)
	r.device.Submit(rec)

	r.stats.Drawn++
	r.stats.DrawCalls = draws
}

func (r *Renderer) PointerDown(p math.Vec2) {
	r.scene.Camera.PointerDown(p)
}

func (r *Renderer) PointerDrag(p math.Vec2) {
	r.scene.Camera.PointerDrag(p)
}

func (r *Renderer) PointerUp() {
	r.scene.Camera.PointerUp()
}

// ApplyLighting takes the ambient colour, the lights and the clear colour
// from cfg. Geometry and animation settings are left alone.
func (r *Renderer) ApplyLighting(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.scene.SetLighting(math.Vec3From(cfg.Scene.Ambient), cfg.SceneLights())
	r.clearColor = cfg.ClearColor()
	r.log.Info("lighting updated",
		zap.Float32s("ambient", cfg.Scene.Ambient[:]),
		zap.Int("lights", len(cfg.Lights)))
	return nil
}

// Time is the animation clock in seconds.
func (r *Renderer) Time() float32 {
	return r.time
}

func (r *Renderer) Stats() FrameStats {
	return r.stats
}

func (r *Renderer) Scene() *scene.Scene {
	return r.scene
}

// Package opengl implements gpu.Device on an OpenGL 4.1 core context. All
// calls must come from the goroutine that owns the context.
package opengl

import (
	"fmt"
	"image"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"orbit-renderer/gpu"
)

// Surface is the window the device draws into.
type Surface interface {
	FramebufferSize() (int, int)
	SwapBuffers()
}

type pipeline struct {
	program uint32
	vao     uint32
	layout  gpu.VertexLayout
	srgb    bool
}

type depthState struct {
	compare uint32
	write   bool
}

type sampler struct {
	id uint32
}

type buffer struct {
	id     uint32
	target uint32
	size   int
}

func (b *buffer) Len() int { return b.size }

type texture struct {
	id            uint32
	width, height int
}

func (t *texture) Width() int  { return t.width }
func (t *texture) Height() int { return t.height }

type drawable struct {
	width, height int
}

// Device is the OpenGL backend.
type Device struct {
	surface Surface
	log     *zap.Logger

	// Stream buffers feeding the uniform block binding points, one per
	// binding. Rewritten for every draw.
	uniformBuffers map[uint32]uint32

	pipelines []*pipeline
	samplers  []*sampler
	buffers   []*buffer
	textures  []*texture
}

// New loads the GL entry points for the current context.
func New(surface Surface, log *zap.Logger) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("opengl")
	log.Info("context ready",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	return &Device{
		surface:        surface,
		log:            log,
		uniformBuffers: make(map[uint32]uint32),
	}, nil
}

func (d *Device) CompilePipeline(desc gpu.PipelineDescriptor) (gpu.Pipeline, error) {
	vert, err := lookupFunction(desc.VertexFunction, gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	frag, err := lookupFunction(desc.FragmentFunction, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, err
	}
	if desc.DepthFormat != gpu.PixelFormatDepth32Float && desc.DepthFormat != gpu.PixelFormatInvalid {
		return nil, fmt.Errorf("%w: depth format %d", gpu.ErrInvalidDescriptor, desc.DepthFormat)
	}
	if desc.VertexLayout.Stride <= 0 {
		return nil, fmt.Errorf("%w: vertex stride %d", gpu.ErrInvalidDescriptor, desc.VertexLayout.Stride)
	}

	prog, err := newProgram(vert.source, frag.source)
	if err != nil {
		return nil, fmt.Errorf("%s/%s: %w", desc.VertexFunction, desc.FragmentFunction, err)
	}
	bindUniformBlock(prog, vertexBlockName, vertexBinding(vert.blockIndex))
	bindUniformBlock(prog, fragmentBlockName, fragmentBinding(frag.blockIndex))

	gl.UseProgram(prog)
	gl.Uniform1i(gl.GetUniformLocation(prog, gl.Str(baseColorSampler)), 0)
	gl.UseProgram(0)

	p := &pipeline{
		program: prog,
		layout:  desc.VertexLayout,
		srgb: desc.ColorFormat == gpu.PixelFormatBGRA8UnormSRGB ||
			desc.ColorFormat == gpu.PixelFormatRGBA8UnormSRGB,
	}
	gl.GenVertexArrays(1, &p.vao)
	d.pipelines = append(d.pipelines, p)
	return p, nil
}

var compareFuncs = map[gpu.CompareFunction]uint32{
	gpu.CompareNever:     gl.NEVER,
	gpu.CompareLess:      gl.LESS,
	gpu.CompareLessEqual: gl.LEQUAL,
	gpu.CompareEqual:     gl.EQUAL,
	gpu.CompareGreater:   gl.GREATER,
	gpu.CompareAlways:    gl.ALWAYS,
}

func (d *Device) MakeDepthStencilState(desc gpu.DepthStencilDescriptor) (gpu.DepthState, error) {
	fn, ok := compareFuncs[desc.Compare]
	if !ok {
		return nil, fmt.Errorf("%w: compare function %d", gpu.ErrInvalidDescriptor, desc.Compare)
	}
	return &depthState{compare: fn, write: desc.WriteEnabled}, nil
}

func (d *Device) MakeSampler(desc gpu.SamplerDescriptor) (gpu.Sampler, error) {
	if !desc.NormalizedCoordinates {
		return nil, fmt.Errorf("%w: GL samplers use normalized coordinates", gpu.ErrInvalidDescriptor)
	}
	mag := int32(gl.NEAREST)
	if desc.MagFilter == gpu.FilterLinear {
		mag = gl.LINEAR
	}
	var minFilter int32
	switch {
	case desc.MinFilter == gpu.FilterLinear && desc.MipFilter == gpu.FilterLinear:
		minFilter = gl.LINEAR_MIPMAP_LINEAR
	case desc.MinFilter == gpu.FilterLinear:
		minFilter = gl.LINEAR_MIPMAP_NEAREST
	case desc.MipFilter == gpu.FilterLinear:
		minFilter = gl.NEAREST_MIPMAP_LINEAR
	default:
		minFilter = gl.NEAREST_MIPMAP_NEAREST
	}

	s := &sampler{}
	gl.GenSamplers(1, &s.id)
	gl.SamplerParameteri(s.id, gl.TEXTURE_MIN_FILTER, minFilter)
	gl.SamplerParameteri(s.id, gl.TEXTURE_MAG_FILTER, mag)
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_T, gl.REPEAT)
	d.samplers = append(d.samplers, s)
	return s, nil
}

func (d *Device) NewBuffer(data []byte, usage gpu.BufferUsage) (gpu.Buffer, error) {
	target := uint32(gl.ARRAY_BUFFER)
	if usage == gpu.BufferIndex {
		target = gl.ELEMENT_ARRAY_BUFFER
	}
	b := &buffer{target: target, size: len(data)}
	gl.GenBuffers(1, &b.id)
	// Element buffers bind through a VAO; use the array target for upload
	// so no VAO state is touched.
	gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	d.buffers = append(d.buffers, b)
	return b, nil
}

// NewTexture uploads img. Pixels are stored sRGB-encoded when opts.SRGB is
// set so sampling returns linear values.
func (d *Device) NewTexture(img *image.RGBA, opts gpu.TextureOptions) (gpu.Texture, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty image", gpu.ErrInvalidDescriptor)
	}
	b := img.Bounds()
	if img.Stride != 4*b.Dx() {
		cp := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			copy(cp.Pix[y*cp.Stride:(y+1)*cp.Stride], img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):])
		}
		img = cp
	}

	internal := int32(gl.RGBA8)
	if opts.SRGB {
		internal = gl.SRGB8_ALPHA8
	}

	t := &texture{width: b.Dx(), height: b.Dy()}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(
		gl.TEXTURE_2D,
		0,
		internal,
		int32(t.width),
		int32(t.height),
		0,
		gl.RGBA,
		gl.UNSIGNED_BYTE,
		gl.Ptr(img.Pix),
	)
	if opts.GenerateMipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 0)
	}
	gl.BindTexture(gl.TEXTURE_2D, 0)

	d.textures = append(d.textures, t)
	return t, nil
}

// BeginFrame clears the default framebuffer. A minimised window has no
// drawable area and yields gpu.ErrNoDrawable.
func (d *Device) BeginFrame(pass gpu.RenderPassDescriptor) (gpu.Recording, gpu.Drawable, error) {
	w, h := d.surface.FramebufferSize()
	if w <= 0 || h <= 0 {
		return nil, nil, gpu.ErrNoDrawable
	}

	gl.Viewport(0, 0, int32(w), int32(h))
	gl.DepthMask(true)
	gl.ClearColor(pass.ClearColor.R, pass.ClearColor.G, pass.ClearColor.B, pass.ClearColor.A)
	gl.ClearDepth(float64(pass.ClearDepth))
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	return &recording{device: d}, &drawable{width: w, height: h}, nil
}

func (d *Device) Present(dr gpu.Drawable) {
	if _, ok := dr.(*drawable); !ok {
		return
	}
	d.surface.SwapBuffers()
}

// Submit is a no-op: GL executes commands as they are recorded.
func (d *Device) Submit(r gpu.Recording) {}

// uniformBuffer returns the stream buffer for a binding point, creating it
// on first use.
func (d *Device) uniformBuffer(binding uint32) uint32 {
	if id, ok := d.uniformBuffers[binding]; ok {
		return id
	}
	var id uint32
	gl.GenBuffers(1, &id)
	d.uniformBuffers[binding] = id
	return id
}

// Release deletes every object the device created.
func (d *Device) Release() {
	for _, p := range d.pipelines {
		gl.DeleteProgram(p.program)
		gl.DeleteVertexArrays(1, &p.vao)
	}
	for _, s := range d.samplers {
		gl.DeleteSamplers(1, &s.id)
	}
	for _, b := range d.buffers {
		gl.DeleteBuffers(1, &b.id)
	}
	for _, t := range d.textures {
		gl.DeleteTextures(1, &t.id)
	}
	for _, id := range d.uniformBuffers {
		id := id
		gl.DeleteBuffers(1, &id)
	}
	d.pipelines, d.samplers, d.buffers, d.textures = nil, nil, nil, nil
	d.uniformBuffers = make(map[uint32]uint32)
}

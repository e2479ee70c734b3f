// Package gpu describes the rendering backend as an opaque service: pipeline
// and state-object creation, buffer and texture allocation, and per-frame
// command recording. The scene and renderer packages depend only on these
// interfaces; internal/opengl provides the concrete device.
package gpu

import (
	"errors"
	"image"

	"orbit-renderer/core"
)

var (
	// ErrNoDrawable means no render target is available this frame. The
	// frame is skipped and rendering resumes on the next tick.
	ErrNoDrawable = errors.New("gpu: no drawable available")
	// ErrUnknownFunction is returned when a pipeline names a shader stage
	// the device does not provide.
	ErrUnknownFunction = errors.New("gpu: unknown shader function")
	// ErrInvalidDescriptor flags a descriptor the device cannot honour.
	ErrInvalidDescriptor = errors.New("gpu: invalid descriptor")
)

type PixelFormat int

const (
	PixelFormatInvalid PixelFormat = iota
	PixelFormatBGRA8UnormSRGB
	PixelFormatRGBA8UnormSRGB
	PixelFormatDepth32Float
)

type CompareFunction int

const (
	CompareNever CompareFunction = iota
	CompareLess
	CompareLessEqual
	CompareEqual
	CompareGreater
	CompareAlways
)

type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

type PrimitiveType int

const (
	PrimitiveTriangle PrimitiveType = iota
	PrimitiveTriangleStrip
	PrimitiveLine
	PrimitiveLineStrip
	PrimitivePoint
)

func (p PrimitiveType) String() string {
	switch p {
	case PrimitiveTriangle:
		return "triangle"
	case PrimitiveTriangleStrip:
		return "triangle-strip"
	case PrimitiveLine:
		return "line"
	case PrimitiveLineStrip:
		return "line-strip"
	case PrimitivePoint:
		return "point"
	}
	return "unknown"
}

type IndexType int

const (
	IndexUint16 IndexType = iota
	IndexUint32
)

// Size is the byte width of one index.
func (t IndexType) Size() int {
	if t == IndexUint16 {
		return 2
	}
	return 4
}

type Winding int

const (
	WindingCounterClockwise Winding = iota
	WindingClockwise
)

type CullMode int

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

type BufferUsage int

const (
	BufferVertex BufferUsage = iota
	BufferIndex
)

type VertexFormat int

const (
	VertexFormatFloat2 VertexFormat = iota
	VertexFormatFloat3
)

// Components is the number of float32s in the format.
func (f VertexFormat) Components() int {
	if f == VertexFormatFloat2 {
		return 2
	}
	return 3
}

type VertexAttribute struct {
	Name        string
	Format      VertexFormat
	Offset      int
	BufferIndex int
}

// VertexLayout describes interleaved attributes in a single buffer.
type VertexLayout struct {
	Attributes []VertexAttribute
	Stride     int
}

// Attribute names used by StandardVertexLayout.
const (
	AttributePosition          = "position"
	AttributeNormal            = "normal"
	AttributeTextureCoordinate = "texcoord"
)

// StandardVertexLayout is position (float3), normal (float3), texture
// coordinate (float2), interleaved in buffer 0 with a 32-byte stride. It
// matches core.Vertex.
func StandardVertexLayout() VertexLayout {
	return VertexLayout{
		Attributes: []VertexAttribute{
			{Name: AttributePosition, Format: VertexFormatFloat3, Offset: 0, BufferIndex: 0},
			{Name: AttributeNormal, Format: VertexFormatFloat3, Offset: 4 * 3, BufferIndex: 0},
			{Name: AttributeTextureCoordinate, Format: VertexFormatFloat2, Offset: 4 * 6, BufferIndex: 0},
		},
		Stride: 4 * core.VertexFloats,
	}
}

type PipelineDescriptor struct {
	VertexFunction   string
	FragmentFunction string
	ColorFormat      PixelFormat
	DepthFormat      PixelFormat
	VertexLayout     VertexLayout
}

type DepthStencilDescriptor struct {
	Compare      CompareFunction
	WriteEnabled bool
}

type SamplerDescriptor struct {
	MinFilter             Filter
	MagFilter             Filter
	MipFilter             Filter
	NormalizedCoordinates bool
}

type TextureOptions struct {
	GenerateMipmaps bool
	SRGB            bool
}

type RenderPassDescriptor struct {
	ClearColor core.Color
	ClearDepth float32
}

// Opaque handles. Each device returns its own concrete types.
type (
	Pipeline   interface{}
	DepthState interface{}
	Sampler    interface{}
	Drawable   interface{}
)

// Buffer is a device allocation holding vertex or index data.
type Buffer interface {
	Len() int
}

// Texture is a decoded, uploaded image.
type Texture interface {
	Width() int
	Height() int
}

// Device is the backend service consumed by the renderer.
type Device interface {
	CompilePipeline(desc PipelineDescriptor) (Pipeline, error)
	MakeDepthStencilState(desc DepthStencilDescriptor) (DepthState, error)
	MakeSampler(desc SamplerDescriptor) (Sampler, error)
	NewBuffer(data []byte, usage BufferUsage) (Buffer, error)
	NewTexture(img *image.RGBA, opts TextureOptions) (Texture, error)

	// BeginFrame opens a command recording targeting the current drawable.
	// ErrNoDrawable (or any other error) means the frame must be skipped.
	BeginFrame(pass RenderPassDescriptor) (Recording, Drawable, error)
	Present(d Drawable)
	Submit(r Recording)
}

// Recording collects the commands of one frame.
type Recording interface {
	SetPipeline(p Pipeline)
	SetDepthStencilState(s DepthState)
	SetFrontFacing(w Winding)
	SetCullMode(m CullMode)
	SetFragmentSampler(s Sampler, index int)
	SetVertexBytes(b []byte, index int)
	SetFragmentBytes(b []byte, index int)
	SetFragmentTexture(t Texture, index int)
	SetVertexBuffer(buf Buffer, offset, index int)
	DrawIndexed(prim PrimitiveType, indexCount int, indexType IndexType, indexBuffer Buffer, indexOffset int)
	End()
}

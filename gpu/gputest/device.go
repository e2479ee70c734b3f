// Package gputest provides an in-memory gpu.Device that records every call,
// for tests that need to observe what the renderer submits.
package gputest

import (
	"fmt"
	"image"

	"orbit-renderer/gpu"
)

// Op names recorded in Call.Op.
const (
	OpCompilePipeline  = "CompilePipeline"
	OpMakeDepthState   = "MakeDepthStencilState"
	OpMakeSampler      = "MakeSampler"
	OpNewBuffer        = "NewBuffer"
	OpNewTexture       = "NewTexture"
	OpBeginFrame       = "BeginFrame"
	OpPresent          = "Present"
	OpSubmit           = "Submit"
	OpSetPipeline      = "SetPipeline"
	OpSetDepthState    = "SetDepthStencilState"
	OpSetFrontFacing   = "SetFrontFacing"
	OpSetCullMode      = "SetCullMode"
	OpSetSampler       = "SetFragmentSampler"
	OpSetVertexBytes   = "SetVertexBytes"
	OpSetFragmentBytes = "SetFragmentBytes"
	OpSetTexture       = "SetFragmentTexture"
	OpSetVertexBuffer  = "SetVertexBuffer"
	OpDrawIndexed      = "DrawIndexed"
	OpEnd              = "End"
)

// Call is one recorded backend invocation. Fields not relevant to Op are zero.
type Call struct {
	Op        string
	Index     int
	Offset    int
	Count     int
	Bytes     []byte
	Primitive gpu.PrimitiveType
	IndexType gpu.IndexType
	Buffer    gpu.Buffer
	Texture   gpu.Texture
	Value     interface{}
}

// Buffer is an in-memory gpu.Buffer.
type Buffer struct {
	ID    int
	Usage gpu.BufferUsage
	Data  []byte
}

func (b *Buffer) Len() int { return len(b.Data) }

// Texture is an in-memory gpu.Texture.
type Texture struct {
	Name    string
	W, H    int
	Options gpu.TextureOptions
}

func (t *Texture) Width() int  { return t.W }
func (t *Texture) Height() int { return t.H }

// NewTexture returns a named texture handle not owned by any device.
func NewTexture(name string, w, h int) *Texture {
	return &Texture{Name: name, W: w, H: h}
}

// Pipeline records the descriptor it was compiled from.
type Pipeline struct{ Desc gpu.PipelineDescriptor }

type DepthState struct{ Desc gpu.DepthStencilDescriptor }

type Sampler struct{ Desc gpu.SamplerDescriptor }

// Drawable is a fake render target.
type Drawable struct{ Frame int }

// Device implements gpu.Device in memory.
type Device struct {
	// FailNextFrames makes that many BeginFrame calls return gpu.ErrNoDrawable.
	FailNextFrames int
	// Functions limits the shader functions CompilePipeline accepts. Nil
	// accepts any name.
	Functions map[string]bool
	// FailSampler and FailDepthState make state-object creation fail.
	FailSampler    bool
	FailDepthState bool

	Calls  []Call
	frames int
	nextID int
}

func New() *Device {
	return &Device{}
}

func (d *Device) record(c Call) {
	d.Calls = append(d.Calls, c)
}

func (d *Device) CompilePipeline(desc gpu.PipelineDescriptor) (gpu.Pipeline, error) {
	d.record(Call{Op: OpCompilePipeline, Value: desc})
	if d.Functions != nil {
		for _, fn := range []string{desc.VertexFunction, desc.FragmentFunction} {
			if !d.Functions[fn] {
				return nil, fmt.Errorf("%w: %q", gpu.ErrUnknownFunction, fn)
			}
		}
	}
	return &Pipeline{Desc: desc}, nil
}

func (d *Device) MakeDepthStencilState(desc gpu.DepthStencilDescriptor) (gpu.DepthState, error) {
	d.record(Call{Op: OpMakeDepthState, Value: desc})
	if d.FailDepthState {
		return nil, fmt.Errorf("%w: depth state rejected", gpu.ErrInvalidDescriptor)
	}
	return &DepthState{Desc: desc}, nil
}

func (d *Device) MakeSampler(desc gpu.SamplerDescriptor) (gpu.Sampler, error) {
	d.record(Call{Op: OpMakeSampler, Value: desc})
	if d.FailSampler {
		return nil, fmt.Errorf("%w: sampler rejected", gpu.ErrInvalidDescriptor)
	}
	return &Sampler{Desc: desc}, nil
}

func (d *Device) NewBuffer(data []byte, usage gpu.BufferUsage) (gpu.Buffer, error) {
	d.nextID++
	buf := &Buffer{ID: d.nextID, Usage: usage, Data: append([]byte(nil), data...)}
	d.record(Call{Op: OpNewBuffer, Buffer: buf, Count: len(data)})
	return buf, nil
}

func (d *Device) NewTexture(img *image.RGBA, opts gpu.TextureOptions) (gpu.Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", gpu.ErrInvalidDescriptor)
	}
	d.nextID++
	b := img.Bounds()
	tex := &Texture{Name: fmt.Sprintf("texture-%d", d.nextID), W: b.Dx(), H: b.Dy(), Options: opts}
	d.record(Call{Op: OpNewTexture, Texture: tex})
	return tex, nil
}

func (d *Device) BeginFrame(pass gpu.RenderPassDescriptor) (gpu.Recording, gpu.Drawable, error) {
	if d.FailNextFrames > 0 {
		d.FailNextFrames--
		return nil, nil, gpu.ErrNoDrawable
	}
	d.frames++
	d.record(Call{Op: OpBeginFrame, Value: pass})
	return &Recording{device: d}, &Drawable{Frame: d.frames}, nil
}

func (d *Device) Present(dr gpu.Drawable) {
	d.record(Call{Op: OpPresent, Value: dr})
}

func (d *Device) Submit(r gpu.Recording) {
	d.record(Call{Op: OpSubmit})
}

// Ops lists the recorded op names in order.
func (d *Device) Ops() []string {
	ops := make([]string, len(d.Calls))
	for i, c := range d.Calls {
		ops[i] = c.Op
	}
	return ops
}

// CallsOf returns the recorded calls with the given op.
func (d *Device) CallsOf(op string) []Call {
	var out []Call
	for _, c := range d.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (d *Device) Reset() {
	d.Calls = nil
}

// Recording appends its commands to the owning device's call log. A zero
// Recording (created with NewRecording) keeps its own log.
type Recording struct {
	device *Device
	own    []Call
	ended  bool
}

// NewRecording returns a standalone recording, for driving scene traversal
// without a device.
func NewRecording() *Recording {
	return &Recording{}
}

// Calls returns the commands of a standalone recording.
func (r *Recording) Calls() []Call {
	return r.own
}

// Draws returns the recorded DrawIndexed calls of a standalone recording.
func (r *Recording) Draws() []Call {
	var out []Call
	for _, c := range r.own {
		if c.Op == OpDrawIndexed {
			out = append(out, c)
		}
	}
	return out
}

// Ended reports whether End was called.
func (r *Recording) Ended() bool {
	return r.ended
}

func (r *Recording) record(c Call) {
	if r.device != nil {
		r.device.record(c)
		return
	}
	r.own = append(r.own, c)
}

func (r *Recording) SetPipeline(p gpu.Pipeline) {
	r.record(Call{Op: OpSetPipeline, Value: p})
}

func (r *Recording) SetDepthStencilState(s gpu.DepthState) {
	r.record(Call{Op: OpSetDepthState, Value: s})
}

func (r *Recording) SetFrontFacing(w gpu.Winding) {
	r.record(Call{Op: OpSetFrontFacing, Value: w})
}

func (r *Recording) SetCullMode(m gpu.CullMode) {
	r.record(Call{Op: OpSetCullMode, Value: m})
}

func (r *Recording) SetFragmentSampler(s gpu.Sampler, index int) {
	r.record(Call{Op: OpSetSampler, Value: s, Index: index})
}

func (r *Recording) SetVertexBytes(b []byte, index int) {
	r.record(Call{Op: OpSetVertexBytes, Bytes: append([]byte(nil), b...), Index: index})
}

func (r *Recording) SetFragmentBytes(b []byte, index int) {
	r.record(Call{Op: OpSetFragmentBytes, Bytes: append([]byte(nil), b...), Index: index})
}

func (r *Recording) SetFragmentTexture(t gpu.Texture, index int) {
	r.record(Call{Op: OpSetTexture, Texture: t, Index: index})
}

func (r *Recording) SetVertexBuffer(buf gpu.Buffer, offset, index int) {
	r.record(Call{Op: OpSetVertexBuffer, Buffer: buf, Offset: offset, Index: index})
}

func (r *Recording) DrawIndexed(prim gpu.PrimitiveType, indexCount int, indexType gpu.IndexType, indexBuffer gpu.Buffer, indexOffset int) {
	r.record(Call{
		Op:        OpDrawIndexed,
		Primitive: prim,
		Count:     indexCount,
		IndexType: indexType,
		Buffer:    indexBuffer,
		Offset:    indexOffset,
	})
}

func (r *Recording) End() {
	r.ended = true
	r.record(Call{Op: OpEnd})
}

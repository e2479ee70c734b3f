package opengl

import (
	gl "github.com/go-gl/gl/v4.1-core/gl"

	"orbit-renderer/gpu"
)

var primitiveModes = map[gpu.PrimitiveType]uint32{
	gpu.PrimitiveTriangle:      gl.TRIANGLES,
	gpu.PrimitiveTriangleStrip: gl.TRIANGLE_STRIP,
	gpu.PrimitiveLine:          gl.LINES,
	gpu.PrimitiveLineStrip:     gl.LINE_STRIP,
	gpu.PrimitivePoint:         gl.POINTS,
}

// recording issues GL calls immediately. Handles created by another device
// are ignored.
type recording struct {
	device   *Device
	pipeline *pipeline
}

func (r *recording) SetPipeline(p gpu.Pipeline) {
	pl, ok := p.(*pipeline)
	if !ok {
		return
	}
	r.pipeline = pl
	gl.UseProgram(pl.program)
	gl.BindVertexArray(pl.vao)
	if pl.srgb {
		gl.Enable(gl.FRAMEBUFFER_SRGB)
	} else {
		gl.Disable(gl.FRAMEBUFFER_SRGB)
	}
}

func (r *recording) SetDepthStencilState(s gpu.DepthState) {
	ds, ok := s.(*depthState)
	if !ok {
		return
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(ds.compare)
	gl.DepthMask(ds.write)
}

func (r *recording) SetFrontFacing(w gpu.Winding) {
	if w == gpu.WindingClockwise {
		gl.FrontFace(gl.CW)
		return
	}
	gl.FrontFace(gl.CCW)
}

func (r *recording) SetCullMode(m gpu.CullMode) {
	switch m {
	case gpu.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	case gpu.CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	default:
		gl.Disable(gl.CULL_FACE)
	}
}

func (r *recording) SetFragmentSampler(s gpu.Sampler, index int) {
	if smp, ok := s.(*sampler); ok {
		gl.BindSampler(uint32(index), smp.id)
	}
}

func (r *recording) SetVertexBytes(b []byte, index int) {
	r.uploadUniforms(vertexBinding(index), b)
}

func (r *recording) SetFragmentBytes(b []byte, index int) {
	r.uploadUniforms(fragmentBinding(index), b)
}

func (r *recording) uploadUniforms(binding uint32, b []byte) {
	if len(b) == 0 {
		return
	}
	id := r.device.uniformBuffer(binding)
	gl.BindBuffer(gl.UNIFORM_BUFFER, id)
	// Re-specifying the store orphans the previous draw's data.
	gl.BufferData(gl.UNIFORM_BUFFER, len(b), gl.Ptr(b), gl.STREAM_DRAW)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, binding, id)
}

func (r *recording) SetFragmentTexture(t gpu.Texture, index int) {
	tex, ok := t.(*texture)
	if !ok {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + uint32(index))
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
}

// SetVertexBuffer points the pipeline's attributes at buf. Attribute i of
// the layout feeds shader location i.
func (r *recording) SetVertexBuffer(buf gpu.Buffer, offset, index int) {
	b, ok := buf.(*buffer)
	if !ok || r.pipeline == nil {
		return
	}
	layout := r.pipeline.layout
	gl.BindBuffer(gl.ARRAY_BUFFER, b.id)
	for i, attr := range layout.Attributes {
		if attr.BufferIndex != index {
			continue
		}
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), int32(attr.Format.Components()), gl.FLOAT, false,
			int32(layout.Stride), gl.PtrOffset(offset+attr.Offset))
	}
}

func (r *recording) DrawIndexed(prim gpu.PrimitiveType, indexCount int, indexType gpu.IndexType, indexBuffer gpu.Buffer, indexOffset int) {
	b, ok := indexBuffer.(*buffer)
	if !ok || r.pipeline == nil || indexCount == 0 {
		return
	}
	mode, ok := primitiveModes[prim]
	if !ok {
		return
	}
	elem := uint32(gl.UNSIGNED_SHORT)
	if indexType == gpu.IndexUint32 {
		elem = gl.UNSIGNED_INT
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.id)
	gl.DrawElements(mode, int32(indexCount), elem, gl.PtrOffset(indexOffset))
}

func (r *recording) End() {
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	gl.Flush()
}

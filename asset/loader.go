package asset

import (
	"encoding/binary"
	"errors"
	"fmt"
	stdmath "math"
	"os"
	"path/filepath"
	"strings"

	"orbit-renderer/core"
	"orbit-renderer/gpu"
)

// LoadError reports an asset that could not be read, parsed or uploaded.
type LoadError struct {
	Ref string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load asset %q: %v", e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

var errUnsupportedFormat = errors.New("unsupported format")

// textureExtensions are tried in order when a texture is named without one.
var textureExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".tiff", ".webp"}

// Loader resolves asset names under Dir and uploads them to Device.
type Loader struct {
	Device gpu.Device
	Dir    string
	// MaxTextureSize caps texture width and height; 0 means no cap.
	MaxTextureSize int
}

func NewLoader(device gpu.Device, dir string) *Loader {
	return &Loader{Device: device, Dir: dir}
}

// ReadMesh parses a mesh file by extension: .obj, .gltf or .glb. References
// starting with BuiltinPrefix name a generated mesh instead.
func (l *Loader) ReadMesh(ref string) (*MeshData, error) {
	if data, ok, err := builtinMesh(ref); ok {
		return data, err
	}
	path := l.path(ref)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return LoadOBJ(path)
	case ".gltf", ".glb":
		return LoadGLTF(path)
	}
	return nil, fmt.Errorf("%w: %q", errUnsupportedFormat, filepath.Ext(path))
}

// LoadMesh parses ref and uploads it with the given vertex layout.
func (l *Loader) LoadMesh(ref string, layout gpu.VertexLayout) (*gpu.Mesh, error) {
	data, err := l.ReadMesh(ref)
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: err}
	}
	mesh, err := Upload(l.Device, data, layout)
	if err != nil {
		return nil, &LoadError{Ref: ref, Err: err}
	}
	return mesh, nil
}

// LoadTexture decodes and uploads the named image. A name without an
// extension is tried with each supported image extension.
func (l *Loader) LoadTexture(name string, opts gpu.TextureOptions) (gpu.Texture, error) {
	path, err := l.resolveTexture(name)
	if err != nil {
		return nil, &LoadError{Ref: name, Err: err}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Ref: name, Err: err}
	}
	defer f.Close()

	img, err := DecodeImage(f, l.MaxTextureSize)
	if err != nil {
		return nil, &LoadError{Ref: name, Err: err}
	}
	tex, err := l.Device.NewTexture(img, opts)
	if err != nil {
		return nil, &LoadError{Ref: name, Err: fmt.Errorf("upload texture: %w", err)}
	}
	return tex, nil
}

func (l *Loader) path(ref string) string {
	if filepath.IsAbs(ref) || l.Dir == "" {
		return ref
	}
	return filepath.Join(l.Dir, ref)
}

func (l *Loader) resolveTexture(name string) (string, error) {
	path := l.path(name)
	if filepath.Ext(name) != "" {
		return path, nil
	}
	for _, ext := range textureExtensions {
		if _, err := os.Stat(path + ext); err == nil {
			return path + ext, nil
		}
	}
	return "", fmt.Errorf("no texture named %q in %q: %w", name, l.Dir, os.ErrNotExist)
}

// Upload packs data per layout into one vertex buffer plus one index buffer
// per submesh. Indices are 16-bit when every index of the mesh fits.
func Upload(device gpu.Device, data *MeshData, layout gpu.VertexLayout) (*gpu.Mesh, error) {
	vertices, err := PackVertices(data.Vertices, layout)
	if err != nil {
		return nil, err
	}
	vb, err := device.NewBuffer(vertices, gpu.BufferVertex)
	if err != nil {
		return nil, fmt.Errorf("create vertex buffer: %w", err)
	}

	indexType := gpu.IndexUint16
	if len(data.Vertices) > stdmath.MaxUint16+1 {
		indexType = gpu.IndexUint32
	}

	mesh := &gpu.Mesh{
		Name:         data.Name,
		VertexBuffer: vb,
		VertexCount:  len(data.Vertices),
	}
	for _, sub := range data.Submeshes {
		for _, idx := range sub.Indices {
			if int(idx) >= len(data.Vertices) {
				return nil, fmt.Errorf("submesh %q: index %d out of range (%d vertices)", sub.Name, idx, len(data.Vertices))
			}
		}
		ib, err := device.NewBuffer(PackIndices(sub.Indices, indexType), gpu.BufferIndex)
		if err != nil {
			return nil, fmt.Errorf("create index buffer for %q: %w", sub.Name, err)
		}
		mesh.Submeshes = append(mesh.Submeshes, gpu.Submesh{
			Name:        sub.Name,
			IndexBuffer: ib,
			IndexCount:  len(sub.Indices),
			IndexType:   indexType,
			Primitive:   sub.Primitive,
		})
	}
	return mesh, nil
}

// PackVertices interleaves vertices as little-endian float32s at the
// offsets the layout names.
func PackVertices(vertices []core.Vertex, layout gpu.VertexLayout) ([]byte, error) {
	if layout.Stride <= 0 {
		return nil, fmt.Errorf("%w: vertex stride %d", gpu.ErrInvalidDescriptor, layout.Stride)
	}
	out := make([]byte, len(vertices)*layout.Stride)
	for _, attr := range layout.Attributes {
		if attr.Offset+4*attr.Format.Components() > layout.Stride {
			return nil, fmt.Errorf("%w: attribute %q overruns stride", gpu.ErrInvalidDescriptor, attr.Name)
		}
		for i, v := range vertices {
			var src []float32
			switch attr.Name {
			case gpu.AttributePosition:
				src = []float32{v.Position.X, v.Position.Y, v.Position.Z}
			case gpu.AttributeNormal:
				src = []float32{v.Normal.X, v.Normal.Y, v.Normal.Z}
			case gpu.AttributeTextureCoordinate:
				src = []float32{v.UV.X, v.UV.Y}
			default:
				return nil, fmt.Errorf("%w: unknown vertex attribute %q", gpu.ErrInvalidDescriptor, attr.Name)
			}
			base := i*layout.Stride + attr.Offset
			for c := 0; c < attr.Format.Components() && c < len(src); c++ {
				binary.LittleEndian.PutUint32(out[base+4*c:], stdmath.Float32bits(src[c]))
			}
		}
	}
	return out, nil
}

// PackIndices encodes indices little-endian at the width of t.
func PackIndices(indices []uint32, t gpu.IndexType) []byte {
	out := make([]byte, len(indices)*t.Size())
	for i, idx := range indices {
		if t == gpu.IndexUint16 {
			binary.LittleEndian.PutUint16(out[2*i:], uint16(idx))
		} else {
			binary.LittleEndian.PutUint32(out[4*i:], idx)
		}
	}
	return out
}

package asset

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/png"
	stdmath "math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbit-renderer/core"
	"orbit-renderer/gpu"
	"orbit-renderer/gpu/gputest"
	"orbit-renderer/math"
)

func TestLoadOBJQuadIsFanTriangulated(t *testing.T) {
	mesh, err := LoadOBJ(filepath.Join("testdata", "quad.obj"))
	require.NoError(t, err)

	assert.Equal(t, "quad", mesh.Name)
	require.Len(t, mesh.Vertices, 4)
	require.Len(t, mesh.Submeshes, 1)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Submeshes[0].Indices)
	assert.Equal(t, gpu.PrimitiveTriangle, mesh.Submeshes[0].Primitive)

	assert.Equal(t, math.NewVec3(1, 1, 0), mesh.Vertices[2].Position)
	assert.Equal(t, math.NewVec2(1, 1), mesh.Vertices[2].UV)
	assert.Equal(t, math.NewVec3(0, 0, 1), mesh.Vertices[2].Normal)
}

func TestParseOBJGroupsByMaterialInFirstSeenOrder(t *testing.T) {
	mesh, err := LoadOBJ(filepath.Join("testdata", "two_materials.obj"))
	require.NoError(t, err)

	require.Len(t, mesh.Submeshes, 2)
	assert.Equal(t, "body", mesh.Submeshes[0].Material)
	assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Submeshes[0].Indices)
	assert.Equal(t, "legs", mesh.Submeshes[1].Material)
	assert.Equal(t, []uint32{0, 3, 4}, mesh.Submeshes[1].Indices)

	// Shared (v, vt, vn) triples are stored once.
	assert.Len(t, mesh.Vertices, 5)
	assert.Equal(t, 9, mesh.IndexCount())
}

func TestParseOBJGeneratesNormals(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"
	mesh, err := ParseOBJ(strings.NewReader(src), "tri")
	require.NoError(t, err)
	for _, v := range mesh.Vertices {
		assert.InDelta(t, 1, v.Normal.Z, 1e-6)
	}
	assert.Equal(t, "tri", mesh.Submeshes[0].Name)
}

func TestParseOBJErrors(t *testing.T) {
	for name, src := range map[string]string{
		"empty":           "# nothing\n",
		"index too large": "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n",
		"zero index":      "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n",
		"bad float":       "v 0 zero 0\n",
		"short face":      "v 0 0 0\nv 1 0 0\nf 1 2\n",
		"bad uv index":    "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1 2/1 3/1\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseOBJ(strings.NewReader(src), name)
			assert.Error(t, err)
		})
	}
}

func TestLoadGLTFTriangle(t *testing.T) {
	mesh, err := LoadGLTF(filepath.Join("testdata", "triangle.gltf"))
	require.NoError(t, err)

	assert.Equal(t, "triangle", mesh.Name)
	require.Len(t, mesh.Vertices, 3)
	require.Len(t, mesh.Submeshes, 1)
	assert.Equal(t, []uint32{0, 1, 2}, mesh.Submeshes[0].Indices)
	assert.Equal(t, math.NewVec3(1, 0, 0), mesh.Vertices[1].Position)
	// No NORMAL attribute: generated from the winding.
	assert.InDelta(t, 1, mesh.Vertices[0].Normal.Z, 1e-6)
}

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(y * 40), G: 0, B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestDecodeImageFlipsRows(t *testing.T) {
	path := writePNG(t, t.TempDir(), "rows.png", 2, 4)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := DecodeImage(f, 0)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 2, 4), img.Bounds())
	assert.Equal(t, uint8(3*40), img.RGBAAt(0, 0).R, "bottom row first")
	assert.Equal(t, uint8(0), img.RGBAAt(0, 3).R)
}

func TestDecodeImageRejectsNonImages(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", "notes.txt"))
	require.NoError(t, err)
	defer f.Close()

	_, err = DecodeImage(f, 0)
	assert.ErrorIs(t, err, ErrNotImage)
}

func TestDecodeImageShrinksToMaxSize(t *testing.T) {
	path := writePNG(t, t.TempDir(), "big.png", 64, 32)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	img, err := DecodeImage(f, 16)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), img.Bounds())
}

func TestLoaderLoadTextureResolvesExtension(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "formica_rufa.png", 4, 2)

	device := gputest.New()
	loader := NewLoader(device, dir)
	opts := gpu.TextureOptions{GenerateMipmaps: true, SRGB: true}

	tex, err := loader.LoadTexture("formica_rufa", opts)
	require.NoError(t, err)
	assert.Equal(t, 4, tex.Width())
	assert.Equal(t, 2, tex.Height())
	assert.Equal(t, opts, tex.(*gputest.Texture).Options)
}

func TestLoaderErrorsAreLoadErrors(t *testing.T) {
	loader := NewLoader(gputest.New(), "testdata")

	_, err := loader.LoadTexture("missing", gpu.TextureOptions{})
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, "missing", le.Ref)
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = loader.LoadTexture("notes.txt", gpu.TextureOptions{})
	assert.ErrorIs(t, err, ErrNotImage)

	_, err = loader.LoadMesh("model.fbx", gpu.StandardVertexLayout())
	require.True(t, errors.As(err, &le))
	assert.ErrorIs(t, err, errUnsupportedFormat)

	_, err = loader.LoadMesh("absent.obj", gpu.StandardVertexLayout())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoaderLoadMeshUploads(t *testing.T) {
	device := gputest.New()
	loader := NewLoader(device, "testdata")

	mesh, err := loader.LoadMesh("two_materials.obj", gpu.StandardVertexLayout())
	require.NoError(t, err)

	assert.Equal(t, 5, mesh.VertexCount)
	assert.Equal(t, 5*32, mesh.VertexBuffer.Len())
	require.Len(t, mesh.Submeshes, 2)
	assert.Equal(t, gpu.IndexUint16, mesh.Submeshes[0].IndexType)
	assert.Equal(t, 6, mesh.Submeshes[0].IndexCount)
	assert.Equal(t, 12, mesh.Submeshes[0].IndexBuffer.Len())
	assert.Equal(t, 9, mesh.IndexCount())

	buffers := device.CallsOf(gputest.OpNewBuffer)
	require.Len(t, buffers, 3)
	assert.Equal(t, gpu.BufferVertex, buffers[0].Buffer.(*gputest.Buffer).Usage)
	assert.Equal(t, gpu.BufferIndex, buffers[1].Buffer.(*gputest.Buffer).Usage)
}

func TestPackVerticesFollowsLayout(t *testing.T) {
	v := core.Vertex{
		Position: math.NewVec3(1, 2, 3),
		Normal:   math.NewVec3(4, 5, 6),
		UV:       math.NewVec2(7, 8),
	}
	b, err := PackVertices([]core.Vertex{v, v}, gpu.StandardVertexLayout())
	require.NoError(t, err)
	require.Len(t, b, 64)
	for i := 0; i < 8; i++ {
		f := stdmath.Float32frombits(binary.LittleEndian.Uint32(b[32+4*i:]))
		assert.Equal(t, float32(i+1), f)
	}

	bad := gpu.VertexLayout{Stride: 12, Attributes: []gpu.VertexAttribute{{Name: "tangent", Format: gpu.VertexFormatFloat3}}}
	_, err = PackVertices([]core.Vertex{v}, bad)
	assert.ErrorIs(t, err, gpu.ErrInvalidDescriptor)
}

func TestUploadUsesWideIndicesForLargeMeshes(t *testing.T) {
	data := &MeshData{
		Name:     "big",
		Vertices: make([]core.Vertex, 70000),
		Submeshes: []SubmeshData{{
			Name:      "all",
			Indices:   []uint32{0, 1, 69999},
			Primitive: gpu.PrimitiveTriangle,
		}},
	}
	mesh, err := Upload(gputest.New(), data, gpu.StandardVertexLayout())
	require.NoError(t, err)
	assert.Equal(t, gpu.IndexUint32, mesh.Submeshes[0].IndexType)
	assert.Equal(t, 12, mesh.Submeshes[0].IndexBuffer.Len())

	data.Submeshes[0].Indices = []uint32{70000}
	_, err = Upload(gputest.New(), data, gpu.StandardVertexLayout())
	assert.Error(t, err)
}

func TestPackIndices(t *testing.T) {
	assert.Equal(t, []byte{1, 0, 2, 1}, PackIndices([]uint32{1, 258}, gpu.IndexUint16))
	assert.Equal(t, []byte{1, 0, 0, 0}, PackIndices([]uint32{1}, gpu.IndexUint32))
}

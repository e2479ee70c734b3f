package asset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"orbit-renderer/core"
	"orbit-renderer/gpu"
	"orbit-renderer/math"
)

// LoadGLTF opens a .gltf or .glb file and returns its first mesh. Every
// primitive becomes a submesh; their vertices share one pool.
func LoadGLTF(path string) (*MeshData, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	if len(doc.Meshes) == 0 {
		return nil, fmt.Errorf("gltf %q has no meshes", path)
	}

	gm := doc.Meshes[0]
	name := gm.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	mesh := &MeshData{Name: name}

	for pi, prim := range gm.Primitives {
		if err := appendGLTFPrimitive(doc, mesh, pi, prim); err != nil {
			return nil, fmt.Errorf("gltf %q primitive %d: %w", path, pi, err)
		}
	}
	if len(mesh.Submeshes) == 0 {
		return nil, fmt.Errorf("gltf %q: first mesh has no primitives", path)
	}
	return mesh, nil
}

func appendGLTFPrimitive(doc *gltf.Document, mesh *MeshData, index int, prim *gltf.Primitive) error {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok {
		return fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32
	if idx, ok := prim.Attributes["NORMAL"]; ok {
		if normals, err = modeler.ReadNormal(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("normals: %w", err)
		}
	}
	if idx, ok := prim.Attributes["TEXCOORD_0"]; ok {
		if uvs, err = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil); err != nil {
			return fmt.Errorf("texture coordinates: %w", err)
		}
	}

	base := uint32(len(mesh.Vertices))
	for i, p := range positions {
		v := core.Vertex{
			Position: math.Vec3{X: p[0], Y: p[1], Z: p[2]},
			Normal:   math.Vec3Up,
		}
		if i < len(normals) {
			v.Normal = math.Vec3From(normals[i])
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		mesh.Vertices = append(mesh.Vertices, v)
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return fmt.Errorf("indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	for i := range indices {
		indices[i] += base
	}

	primitive, indices := gltfPrimitive(prim.Mode, indices)
	if len(normals) == 0 && primitive == gpu.PrimitiveTriangle {
		generateNormals(mesh.Vertices, indices)
	}

	material := ""
	if prim.Material != nil && *prim.Material < len(doc.Materials) {
		material = doc.Materials[*prim.Material].Name
	}
	mesh.Submeshes = append(mesh.Submeshes, SubmeshData{
		Name:      fmt.Sprintf("%s_p%d", mesh.Name, index),
		Material:  material,
		Indices:   indices,
		Primitive: primitive,
	})
	return nil
}

// gltfPrimitive maps a glTF mode onto a backend topology. Line loops and
// triangle fans have no backend equivalent and are rewritten as line strips
// and triangle lists.
func gltfPrimitive(mode gltf.PrimitiveMode, indices []uint32) (gpu.PrimitiveType, []uint32) {
	switch mode {
	case gltf.PrimitivePoints:
		return gpu.PrimitivePoint, indices
	case gltf.PrimitiveLines:
		return gpu.PrimitiveLine, indices
	case gltf.PrimitiveLineStrip:
		return gpu.PrimitiveLineStrip, indices
	case gltf.PrimitiveLineLoop:
		if len(indices) > 0 {
			indices = append(indices, indices[0])
		}
		return gpu.PrimitiveLineStrip, indices
	case gltf.PrimitiveTriangleStrip:
		return gpu.PrimitiveTriangleStrip, indices
	case gltf.PrimitiveTriangleFan:
		var list []uint32
		for i := 1; i+1 < len(indices); i++ {
			list = append(list, indices[0], indices[i], indices[i+1])
		}
		return gpu.PrimitiveTriangle, list
	}
	return gpu.PrimitiveTriangle, indices
}

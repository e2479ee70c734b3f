// Package asset loads meshes and textures from disk and uploads them through
// a gpu.Device.
package asset

import (
	"orbit-renderer/core"
	"orbit-renderer/gpu"
)

// MeshData is a parsed, CPU-side mesh: one shared vertex pool and indexed
// submeshes drawn from it.
type MeshData struct {
	Name      string
	Vertices  []core.Vertex
	Submeshes []SubmeshData
}

type SubmeshData struct {
	Name      string
	Material  string
	Indices   []uint32
	Primitive gpu.PrimitiveType
}

// IndexCount sums the index counts of every submesh.
func (m *MeshData) IndexCount() int {
	n := 0
	for _, s := range m.Submeshes {
		n += len(s.Indices)
	}
	return n
}

// generateNormals writes area-weighted vertex normals for triangle lists.
func generateNormals(vertices []core.Vertex, indices []uint32) {
	accum := make([]core.Vertex, len(vertices))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		v0 := vertices[i0].Position
		v1 := vertices[i1].Position
		v2 := vertices[i2].Position
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		accum[i0].Normal = accum[i0].Normal.Add(n)
		accum[i1].Normal = accum[i1].Normal.Add(n)
		accum[i2].Normal = accum[i2].Normal.Add(n)
	}
	for i := range vertices {
		if accum[i].Normal.LengthSqr() > 0 {
			vertices[i].Normal = accum[i].Normal.Normalize()
		}
	}
}

package gpu

// Mesh is an uploaded vertex buffer plus the indexed ranges drawn from it.
type Mesh struct {
	Name         string
	VertexBuffer Buffer
	VertexOffset int
	VertexCount  int
	Submeshes    []Submesh
}

// Submesh is one indexed primitive range sharing a material slot.
type Submesh struct {
	Name        string
	IndexBuffer Buffer
	IndexOffset int
	IndexCount  int
	IndexType   IndexType
	Primitive   PrimitiveType
}

// IndexCount sums the index counts of every submesh.
func (m *Mesh) IndexCount() int {
	n := 0
	for _, s := range m.Submeshes {
		n += s.IndexCount
	}
	return n
}

package asset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbit-renderer/gpu"
	"orbit-renderer/gpu/gputest"
)

func TestBuiltinMeshesFaceOutward(t *testing.T) {
	for name, gen := range builtins {
		t.Run(name, func(t *testing.T) {
			mesh := gen()
			require.Len(t, mesh.Submeshes, 1)
			indices := mesh.Submeshes[0].Indices
			require.NotEmpty(t, indices)
			require.Zero(t, len(indices)%3)

			for i := 0; i < len(indices); i += 3 {
				for _, idx := range indices[i : i+3] {
					require.Less(t, int(idx), len(mesh.Vertices))
				}
				a := mesh.Vertices[indices[i]]
				b := mesh.Vertices[indices[i+1]]
				c := mesh.Vertices[indices[i+2]]
				face := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
				if face.LengthSqr() < 1e-12 {
					continue // collapsed triangle at a sphere pole
				}
				avg := a.Normal.Add(b.Normal).Add(c.Normal)
				assert.Greater(t, face.Dot(avg), float32(0), "triangle %d winds inward", i/3)
			}
		})
	}
}

func TestSphereVerticesLieOnRadius(t *testing.T) {
	mesh := Sphere(2, 8, 4)
	assert.Len(t, mesh.Vertices, 9*5)
	for _, v := range mesh.Vertices {
		assert.InDelta(t, 2, v.Position.Length(), 1e-5)
	}
}

func TestLoaderReadsBuiltinMeshes(t *testing.T) {
	l := NewLoader(gputest.New(), t.TempDir())

	data, err := l.ReadMesh(BuiltinPrefix + "torus")
	require.NoError(t, err)
	assert.Equal(t, "torus", data.Name)

	mesh, err := l.LoadMesh(BuiltinPrefix+"plane", gpu.StandardVertexLayout())
	require.NoError(t, err)
	assert.Equal(t, 6, mesh.Submeshes[0].IndexCount)

	_, err = l.LoadMesh(BuiltinPrefix+"teapot", gpu.StandardVertexLayout())
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.ErrorIs(t, err, errUnsupportedFormat)
}

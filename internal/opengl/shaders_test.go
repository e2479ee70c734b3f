package opengl

import (
	"strings"
	"testing"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbit-renderer/gpu"
	"orbit-renderer/scene"
)

func TestLookupFunction(t *testing.T) {
	fn, err := lookupFunction("vertex_main", gl.VERTEX_SHADER)
	require.NoError(t, err)
	assert.Equal(t, scene.VertexUniformIndex, fn.blockIndex)
	assert.True(t, strings.Contains(fn.source, "uniform VertexUniforms"))

	fn, err = lookupFunction("fragment_main", gl.FRAGMENT_SHADER)
	require.NoError(t, err)
	assert.Equal(t, scene.FragmentUniformIndex, fn.blockIndex)
	assert.True(t, strings.Contains(fn.source, "lights[3]"))

	_, err = lookupFunction("vertex_main", gl.FRAGMENT_SHADER)
	assert.ErrorIs(t, err, gpu.ErrUnknownFunction)
	_, err = lookupFunction("missing", gl.VERTEX_SHADER)
	assert.ErrorIs(t, err, gpu.ErrUnknownFunction)
}

func TestUniformBindingsDoNotOverlap(t *testing.T) {
	seen := map[uint32]string{}
	for i := 0; i < vertexBindingBase; i++ {
		seen[fragmentBinding(i)] = "fragment"
	}
	for i := 0; i < 4; i++ {
		_, clash := seen[vertexBinding(i)]
		assert.False(t, clash, "vertex slot %d", i)
	}
	assert.NotEqual(t, vertexBinding(scene.VertexUniformIndex), fragmentBinding(scene.FragmentUniformIndex))
}

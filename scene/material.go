package scene

import (
	"orbit-renderer/gpu"
	"orbit-renderer/math"
)

// Material holds the per-node shading parameters.
type Material struct {
	SpecularColor    math.Vec3
	SpecularPower    float32
	BaseColorTexture gpu.Texture
}

func DefaultMaterial() Material {
	return Material{
		SpecularColor: math.Vec3One,
		SpecularPower: 1,
	}
}

// LightCount is the number of light slots in the fragment stage.
const LightCount = 3

// Light is a scene-global point light.
type Light struct {
	WorldPosition math.Vec3
	Color         math.Vec3
}

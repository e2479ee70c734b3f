package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"orbit-renderer/gpu"
)

// Uniform block names and the sampler uniform of the shading program.
const (
	vertexBlockName   = "VertexUniforms\x00"
	fragmentBlockName = "FragmentUniforms\x00"
	baseColorSampler  = "baseColorTexture\x00"
)

// Uniform block binding points. GL shares one binding namespace between
// stages, so vertex-stage slots are offset past the fragment-stage slots.
const (
	fragmentBindingBase = 0
	vertexBindingBase   = 8
)

func vertexBinding(index int) uint32   { return uint32(vertexBindingBase + index) }
func fragmentBinding(index int) uint32 { return uint32(fragmentBindingBase + index) }

type shaderFunction struct {
	stage  uint32
	source string
	// blockIndex is the slot the function's uniform block is bound to.
	blockIndex int
}

// functions is the shader library pipelines are compiled from.
var functions = map[string]shaderFunction{
	"vertex_main":   {stage: gl.VERTEX_SHADER, source: vertexMainSrc, blockIndex: 1},
	"fragment_main": {stage: gl.FRAGMENT_SHADER, source: fragmentMainSrc, blockIndex: 0},
}

func lookupFunction(name string, stage uint32) (shaderFunction, error) {
	fn, ok := functions[name]
	if !ok || fn.stage != stage {
		return shaderFunction{}, fmt.Errorf("%w: %q", gpu.ErrUnknownFunction, name)
	}
	return fn, nil
}

// vertex_main: world-space position and normal for per-pixel lighting.
const vertexMainSrc = `
#version 410 core

layout(location = 0) in vec3 position;
layout(location = 1) in vec3 normal;
layout(location = 2) in vec2 texCoords;

layout(std140) uniform VertexUniforms {
    mat4 viewProjectionMatrix;
    mat4 modelMatrix;
    mat3 normalMatrix;
};

out vec3 worldPosition;
out vec3 worldNormal;
out vec2 fragTexCoords;

void main() {
    vec4 world = modelMatrix * vec4(position, 1.0);
    gl_Position = viewProjectionMatrix * world;
    worldPosition = world.xyz;
    worldNormal = normalMatrix * normal;
    fragTexCoords = texCoords;
}
` + "\x00"

// fragment_main: ambient plus Lambert diffuse and Blinn-Phong specular from
// three point lights, diffuse modulated by the base colour texture.
const fragmentMainSrc = `
#version 410 core

#define LIGHT_COUNT 3

struct Light {
    vec3 worldPosition;
    vec3 color;
};

layout(std140) uniform FragmentUniforms {
    vec3 cameraWorldPosition;
    vec3 ambientLightColor;
    vec3 specularColor;
    float specularPower;
    Light lights[LIGHT_COUNT];
};

uniform sampler2D baseColorTexture;

in vec3 worldPosition;
in vec3 worldNormal;
in vec2 fragTexCoords;

out vec4 fragColor;

void main() {
    vec3 baseColor = texture(baseColorTexture, fragTexCoords).rgb;
    vec3 N = normalize(worldNormal);
    vec3 V = normalize(cameraWorldPosition - worldPosition);

    vec3 color = ambientLightColor * baseColor;
    for (int i = 0; i < LIGHT_COUNT; i++) {
        vec3 L = normalize(lights[i].worldPosition - worldPosition);
        vec3 H = normalize(L + V);
        float diffuse = max(dot(N, L), 0.0);
        float specular = pow(max(dot(N, H), 0.0), specularPower);
        color += lights[i].color * (baseColor * diffuse + specularColor * specular);
    }
    fragColor = vec4(color, 1.0);
}
` + "\x00"

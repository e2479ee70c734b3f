package config

import (
	"path/filepath"
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbit-renderer/core"
	"orbit-renderer/math"
	"orbit-renderer/scene"
)

func TestDefaultMatchesSceneDefaults(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	sc := cfg.SceneConfig()
	expected := scene.DefaultConfig()
	assert.InDelta(t, expected.FieldOfView, sc.FieldOfView, 1e-6)
	sc.FieldOfView = expected.FieldOfView
	assert.Equal(t, expected, sc)

	lights := cfg.SceneLights()
	assert.Equal(t, math.NewVec3(2, 2, 2), lights[0].WorldPosition)
	assert.Equal(t, math.NewVec3(1, 0, 0), lights[0].Color)
	assert.Equal(t, math.NewVec3(0, -2, 2), lights[2].WorldPosition)
	assert.Equal(t, math.NewVec3(0, 0, 1), lights[2].Color)

	assert.Equal(t, core.ColorWhite, cfg.ClearColor())
	assert.InDelta(t, 1.0/60, cfg.TimeStep(), 1e-9)
}

func TestLoadTOML(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "viewer.toml"))
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 30, cfg.Window.FramesPerSecond)
	assert.Equal(t, "Orbit Renderer", cfg.Window.Title, "unset keys keep defaults")
	assert.Equal(t, "ant.gltf", cfg.Assets.Model)
	assert.Equal(t, 4, cfg.Scene.Satellites)
	assert.Equal(t, [3]float32{0.1, 0.1, 0.1}, cfg.Scene.Ambient)
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, cfg.Lights[1].Color)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Development)
}

func TestLoadYAML(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "viewer.yaml"))
	require.NoError(t, err)

	assert.Equal(t, [3]float32{0, 0, 4}, cfg.Camera.Position)
	assert.InDelta(t, math32.Pi/4, cfg.SceneConfig().FieldOfView, 1e-6)
	assert.Equal(t, float32(32), cfg.Material.SpecularPower)
	assert.Len(t, cfg.Lights, 3)
}

func TestLoadRejectsWrongLightCount(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "two_lights.yaml"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "absent.toml"))
	assert.Error(t, err)
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse([]byte("{}"), ".json")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse([]byte("[window\nwidth ="), ".toml")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"no fps":          func(c *Config) { c.Window.FramesPerSecond = 0 },
		"zero near":       func(c *Config) { c.Camera.Near = 0 },
		"far before near": func(c *Config) { c.Camera.Far = 0.05 },
		"flat fov":        func(c *Config) { c.Camera.FOVDegrees = 0 },
		"negative count":  func(c *Config) { c.Scene.Satellites = -1 },
		"four lights":     func(c *Config) { c.Lights = append(c.Lights, Light{}) },
		"no central name": func(c *Config) { c.Scene.CentralName = "" },
		"no model":        func(c *Config) { c.Assets.Model = "" },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

// Package config loads the viewer configuration from TOML or YAML files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"orbit-renderer/core"
	"orbit-renderer/math"
	"orbit-renderer/scene"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Window   Window   `toml:"window" yaml:"window"`
	Assets   Assets   `toml:"assets" yaml:"assets"`
	Camera   Camera   `toml:"camera" yaml:"camera"`
	Scene    Scene    `toml:"scene" yaml:"scene"`
	Material Material `toml:"material" yaml:"material"`
	Lights   []Light  `toml:"lights" yaml:"lights"`
	Log      Log      `toml:"log" yaml:"log"`
}

type Window struct {
	Width           int    `toml:"width" yaml:"width"`
	Height          int    `toml:"height" yaml:"height"`
	Title           string `toml:"title" yaml:"title"`
	VSync           bool   `toml:"vsync" yaml:"vsync"`
	FramesPerSecond int    `toml:"frames_per_second" yaml:"frames_per_second"`
}

type Assets struct {
	Dir            string `toml:"dir" yaml:"dir"`
	Model          string `toml:"model" yaml:"model"`
	Texture        string `toml:"texture" yaml:"texture"`
	MaxTextureSize int    `toml:"max_texture_size" yaml:"max_texture_size"`
}

type Camera struct {
	Position    [3]float32 `toml:"position" yaml:"position"`
	Sensitivity float32    `toml:"sensitivity" yaml:"sensitivity"`
	FOVDegrees  float32    `toml:"fov_degrees" yaml:"fov_degrees"`
	Near        float32    `toml:"near" yaml:"near"`
	Far         float32    `toml:"far" yaml:"far"`
}

type Scene struct {
	CentralName    string     `toml:"central_name" yaml:"central_name"`
	Satellites     int        `toml:"satellites" yaml:"satellites"`
	Ambient        [3]float32 `toml:"ambient" yaml:"ambient"`
	ClearColor     [4]float32 `toml:"clear_color" yaml:"clear_color"`
	RotationSpeed  float32    `toml:"rotation_speed" yaml:"rotation_speed"`
	CentralScale   float32    `toml:"central_scale" yaml:"central_scale"`
	SatelliteScale float32    `toml:"satellite_scale" yaml:"satellite_scale"`
	Pivot          [3]float32 `toml:"pivot" yaml:"pivot"`
	Offset         [3]float32 `toml:"offset" yaml:"offset"`
}

type Material struct {
	SpecularColor [3]float32 `toml:"specular_color" yaml:"specular_color"`
	SpecularPower float32    `toml:"specular_power" yaml:"specular_power"`
}

type Light struct {
	Position [3]float32 `toml:"position" yaml:"position"`
	Color    [3]float32 `toml:"color" yaml:"color"`
}

type Log struct {
	Level       string `toml:"level" yaml:"level"`
	Development bool   `toml:"development" yaml:"development"`
	File        string `toml:"file" yaml:"file"`
}

// Default is the stock scene: one central model, ten satellites, and a red,
// a green and a blue light.
func Default() Config {
	return Config{
		Window: Window{
			Width:           1280,
			Height:          720,
			Title:           "Orbit Renderer",
			VSync:           true,
			FramesPerSecond: 60,
		},
		Assets: Assets{
			Dir:     "assets",
			Model:   "formica_rufa.obj",
			Texture: "formica_rufa",
		},
		Camera: Camera{
			Position:    [3]float32{0, 0, 2},
			Sensitivity: scene.DefaultSensitivity,
			FOVDegrees:  60,
			Near:        0.1,
			Far:         100,
		},
		Scene: Scene{
			CentralName:    "formica_rufa",
			Satellites:     10,
			ClearColor:     [4]float32{1, 1, 1, 1},
			RotationSpeed:  0.3,
			CentralScale:   0.5,
			SatelliteScale: 0.25,
			Pivot:          [3]float32{0.4, 0, 0},
			Offset:         [3]float32{2.4, 0, 0},
		},
		Material: Material{
			SpecularColor: [3]float32{0.8, 0.8, 0.8},
			SpecularPower: 200,
		},
		Lights: []Light{
			{Position: [3]float32{2, 2, 2}, Color: [3]float32{1, 0, 0}},
			{Position: [3]float32{-2, 2, 2}, Color: [3]float32{0, 1, 0}},
			{Position: [3]float32{0, -2, 2}, Color: [3]float32{0, 0, 1}},
		},
		Log: Log{
			Level:       "info",
			Development: true,
		},
	}
}

// Load reads path on top of Default. The format follows the extension:
// .toml, or .yaml / .yml.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data in the format named by ext and validates the result.
// A lights list in the file replaces the default lights entirely.
func Parse(data []byte, ext string) (Config, error) {
	cfg := Default()
	// Lights come from the file as a whole, or from the defaults.
	cfg.Lights = nil
	var err error
	switch strings.ToLower(ext) {
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		return Config{}, fmt.Errorf("%w: unsupported config format %q", ErrInvalid, ext)
	}
	if err != nil {
		return Config{}, fmt.Errorf("decode: %w", err)
	}
	if cfg.Lights == nil {
		cfg.Lights = Default().Lights
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the renderer cannot run with.
func (c Config) Validate() error {
	switch {
	case len(c.Lights) != scene.LightCount:
		return fmt.Errorf("%w: need exactly %d lights, have %d", ErrInvalid, scene.LightCount, len(c.Lights))
	case c.Window.FramesPerSecond <= 0:
		return fmt.Errorf("%w: frames_per_second must be positive", ErrInvalid)
	case c.Camera.Near <= 0:
		return fmt.Errorf("%w: near plane must be positive", ErrInvalid)
	case c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("%w: far plane %g must exceed near plane %g", ErrInvalid, c.Camera.Far, c.Camera.Near)
	case c.Camera.FOVDegrees <= 0 || c.Camera.FOVDegrees >= 180:
		return fmt.Errorf("%w: fov_degrees must be in (0, 180)", ErrInvalid)
	case c.Scene.Satellites < 0:
		return fmt.Errorf("%w: satellites must not be negative", ErrInvalid)
	case c.Scene.CentralName == "":
		return fmt.Errorf("%w: central_name is empty", ErrInvalid)
	case c.Assets.Model == "" || c.Assets.Texture == "":
		return fmt.Errorf("%w: model and texture are required", ErrInvalid)
	}
	return nil
}

// SceneConfig converts the animation and projection settings.
func (c Config) SceneConfig() scene.Config {
	return scene.Config{
		SatelliteCount: c.Scene.Satellites,
		FieldOfView:    c.Camera.FOVDegrees * math32.Pi / 180,
		Near:           c.Camera.Near,
		Far:            c.Camera.Far,
		CentralName:    c.Scene.CentralName,
		CentralScale:   c.Scene.CentralScale,
		RotationSpeed:  c.Scene.RotationSpeed,
		PivotPosition:  math.Vec3From(c.Scene.Pivot),
		RotationOffset: math.Vec3From(c.Scene.Offset),
		SatelliteScale: c.Scene.SatelliteScale,
	}
}

// SceneLights returns the three configured lights. Validate guarantees the
// count; missing entries stay dark.
func (c Config) SceneLights() [scene.LightCount]scene.Light {
	var lights [scene.LightCount]scene.Light
	for i := 0; i < len(c.Lights) && i < scene.LightCount; i++ {
		lights[i] = scene.Light{
			WorldPosition: math.Vec3From(c.Lights[i].Position),
			Color:         math.Vec3From(c.Lights[i].Color),
		}
	}
	return lights
}

func (c Config) ClearColor() core.Color {
	return core.ColorFrom(c.Scene.ClearColor)
}

// TimeStep is the animation time added per frame.
func (c Config) TimeStep() float32 {
	return 1 / float32(c.Window.FramesPerSecond)
}

// Command viewer opens a window and renders the orbiting scene described by
// a config file. Drag with the left mouse button to orbit the camera.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"orbit-renderer/asset"
	"orbit-renderer/config"
	"orbit-renderer/internal/opengl"
	"orbit-renderer/internal/platform"
	"orbit-renderer/logging"
	"orbit-renderer/renderer"
)

type options struct {
	configPath string
	assetDir   string
	model      string
	texture    string
	satellites int
	logLevel   string
	watch      bool
}

func parseFlags(args []string) (options, *pflag.FlagSet, error) {
	var o options
	fs := pflag.NewFlagSet("viewer", pflag.ContinueOnError)
	fs.StringVarP(&o.configPath, "config", "c", "", "config file (.toml, .yaml or .yml)")
	fs.StringVar(&o.assetDir, "assets", "", "directory holding the model and texture")
	fs.StringVarP(&o.model, "model", "m", "", "model file (.obj, .gltf or .glb)")
	fs.StringVarP(&o.texture, "texture", "t", "", "base colour texture name")
	fs.IntVarP(&o.satellites, "satellites", "n", 0, "number of satellites")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	fs.BoolVarP(&o.watch, "watch", "w", true, "reload lighting when the config file changes")
	err := fs.Parse(args)
	return o, fs, err
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(o options, fs *pflag.FlagSet) (config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.Config{}, err
		}
	}
	if fs.Changed("assets") {
		cfg.Assets.Dir = o.assetDir
	}
	if fs.Changed("model") {
		cfg.Assets.Model = o.model
	}
	if fs.Changed("texture") {
		cfg.Assets.Texture = o.texture
	}
	if fs.Changed("satellites") {
		cfg.Scene.Satellites = o.satellites
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	return cfg, cfg.Validate()
}

func main() {
	o, fs, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg, err := loadConfig(o, fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(logging.Context(context.Background(), logger))
	defer cancel()

	if err := run(ctx, cfg, o); err != nil {
		logger.Fatal("viewer failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, o options) error {
	log := logging.From(ctx)

	windowConfig := platform.DefaultWindowConfig()
	windowConfig.Width = cfg.Window.Width
	windowConfig.Height = cfg.Window.Height
	windowConfig.Title = cfg.Window.Title
	windowConfig.VSync = cfg.Window.VSync

	window, err := platform.NewWindow(windowConfig)
	if err != nil {
		return err
	}
	defer window.Destroy()

	device, err := opengl.New(window, log)
	if err != nil {
		return err
	}
	defer device.Release()

	loader := asset.NewLoader(device, cfg.Assets.Dir)
	loader.MaxTextureSize = cfg.Assets.MaxTextureSize

	r, err := renderer.New(device, loader, cfg, log)
	if err != nil {
		return err
	}
	window.SetPointerHandler(r)

	var updates <-chan config.Config
	if o.watch && o.configPath != "" {
		w, err := watchConfig(ctx, o.configPath, log)
		if err != nil {
			log.Warn("config live reload disabled", zap.Error(err))
		} else {
			defer w.Close()
			updates = w.Updates()
		}
	}

	titleEvery := uint64(cfg.Window.FramesPerSecond)
	for !window.ShouldClose() {
		window.PollEvents()

		select {
		case next := <-updates:
			if err := r.ApplyLighting(next); err != nil {
				log.Warn("ignoring reloaded config", zap.Error(err))
			}
		default:
		}

		r.Draw(window.AspectRatio())

		if stats := r.Stats(); stats.Drawn > 0 && stats.Drawn%titleEvery == 0 {
			window.SetTitle(fmt.Sprintf("%s | t=%.1fs | %d draws", cfg.Window.Title, r.Time(), stats.DrawCalls))
		}
	}

	stats := r.Stats()
	log.Info("viewer closed",
		zap.Uint64("frames", stats.Drawn),
		zap.Uint64("skipped", stats.Skipped),
		zap.Float32("time", r.Time()))
	return nil
}

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"orbit-renderer/config"
)

func TestLoadConfigAppliesFlagOverrides(t *testing.T) {
	o, fs, err := parseFlags([]string{"--model", "ant.glb", "-n", "3", "--log-level", "debug"})
	require.NoError(t, err)

	cfg, err := loadConfig(o, fs)
	require.NoError(t, err)
	assert.Equal(t, "ant.glb", cfg.Assets.Model)
	assert.Equal(t, 3, cfg.Scene.Satellites)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, config.Default().Assets.Texture, cfg.Assets.Texture)
	assert.True(t, o.watch)
}

func TestLoadConfigRejectsInvalidOverride(t *testing.T) {
	o, fs, err := parseFlags([]string{"--satellites=-2"})
	require.NoError(t, err)
	_, err = loadConfig(o, fs)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestConfigWatcherDeliversReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scene]\nambient = [0.1, 0.1, 0.1]\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := watchConfig(ctx, path, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("[scene]\nambient = [0.5, 0.5, 0.5]\n"), 0o644))

	// A truncating write can be observed half done, so wait for the final state.
	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-w.Updates():
			if cfg.Scene.Ambient == [3]float32{0.5, 0.5, 0.5} {
				return
			}
		case <-timeout:
			t.Fatal("no config update with the new ambient colour")
		}
	}
}

func TestConfigWatcherSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scene:\n  satellites: 2\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w, err := watchConfig(ctx, path, zap.NewNop())
	require.NoError(t, err)
	defer w.Close()

	// Replace atomically so no empty intermediate file is observed.
	tmp := filepath.Join(dir, "viewer.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("scene: [unclosed\n"), 0o644))
	require.NoError(t, os.Rename(tmp, path))
	select {
	case cfg := <-w.Updates():
		t.Fatalf("unexpected update %+v", cfg.Scene)
	case <-time.After(300 * time.Millisecond):
	}
}

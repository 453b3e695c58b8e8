package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 1280, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, DepthAuto, cfg.Renderer.DepthMode)
	assert.Equal(t, [4]float64{0.1, 0.1, 0.1, 1.0}, cfg.Renderer.ClearColor)
	assert.Equal(t, [3]float32{0, 0, 5}, cfg.Camera.Eye)
	assert.Equal(t, float32(45), cfg.Camera.FovDegrees)
	assert.Equal(t, [3]float32{0, -1, 0}, cfg.Light.Direction)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glbview.yaml")
	content := `
window:
  width: 800
  height: 600
renderer:
  depth_mode: always
loader:
  asset_path: models/fox.glb
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, DepthAlways, cfg.Renderer.DepthMode)
	assert.Equal(t, "models/fox.glb", cfg.Loader.AssetPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// untouched sections keep defaults
	assert.Equal(t, "glbview", cfg.Window.Title)
	assert.Equal(t, float32(0.1), cfg.Camera.Near)
}

func TestLoadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glbview.toml")
	content := `
[camera]
fov_degrees = 60.0
eye = [1.0, 2.0, 3.0]

[watch]
enabled = true
debounce_ms = 100
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, float32(60), cfg.Camera.FovDegrees)
	assert.Equal(t, [3]float32{1, 2, 3}, cfg.Camera.Eye)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, 100, cfg.Watch.DebounceMS)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window: [unclosed"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveToRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := Default()
			cfg.Window.Title = "saved"
			cfg.Renderer.DepthMode = DepthNever

			require.NoError(t, cfg.SaveTo(path))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, "saved", loaded.Window.Title)
			assert.Equal(t, DepthNever, loaded.Renderer.DepthMode)
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Renderer.DepthMode = "sometimes"
	cfg.Camera.Near = 10
	cfg.Camera.Far = 1
	cfg.Loader.DecodeWorkers = 0
	cfg.Light.Intensity = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window size")
	assert.Contains(t, err.Error(), "depth mode")
	assert.Contains(t, err.Error(), "clip planes")
	assert.Contains(t, err.Error(), "decode workers")
	assert.Contains(t, err.Error(), "light intensity")
}

func TestFlagsApply(t *testing.T) {
	fs := flag.NewFlagSet("glbview", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"-asset", "duck.glb", "-debug", "-width", "640", "-depth", "never", "-watch"}))

	cfg := Default()
	flags.Apply(cfg)

	assert.Equal(t, "duck.glb", cfg.Loader.AssetPath)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, DepthNever, cfg.Renderer.DepthMode)
	assert.True(t, cfg.Watch.Enabled)
	assert.False(t, cfg.Renderer.Profile)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leeforge/picture/env_mode"
	apperrors "github.com/leeforge/picture/errors"
	"github.com/leeforge/picture/picture"
)

const baseConfig = `
root-dir: /srv/www
concurrency: 4
logging:
  level: debug
  log-in-terminal: false
storage:
  base-path: /srv/www/assets/images
  base-url: /assets/images
cache:
  type: memory
  ttl: 1h
pictures:
  Hero:
    size:
      width: 200
      height: 100
      densities: "1x, 2x"
    items:
      - width: 100
        height: 100
        mode: crop
        zoom: 50
        media: "(max-width: 600px)"
        sizes: 50vw
`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func testOptions(dir string) Options {
	return Options{BasePath: dir, FileName: "config", FileType: "yaml", EnvPrefix: "PICTURE"}
}

func withMode(t *testing.T, mode env_mode.ENV_MODE) {
	t.Helper()
	previous := env_mode.Mode()
	env_mode.SetMode(mode)
	t.Cleanup(func() { env_mode.SetMode(previous) })
}

func TestLoad(t *testing.T) {
	withMode(t, env_mode.TestMode)
	dir := writeFiles(t, map[string]string{"config.yaml": baseConfig})

	settings, err := Load(testOptions(dir))
	require.NoError(t, err)

	assert.Equal(t, "/srv/www", settings.RootDir)
	assert.Equal(t, 4, settings.Concurrency)
	assert.Equal(t, 85, settings.Quality)
	assert.Equal(t, "debug", settings.Logging.Level)
	assert.False(t, settings.Logging.LogInTerminal)
	assert.Equal(t, "json", settings.Logging.Format)
	assert.Equal(t, "local", settings.Storage.Type)
	assert.Equal(t, time.Hour, settings.Cache.TTL)
	assert.Contains(t, settings.Pictures, "hero")

	cfg, err := settings.Picture("hero")
	require.NoError(t, err)
	assert.Equal(t, picture.ResizeConfiguration{Width: 200, Height: 100, Mode: picture.ModeCrop}, cfg.Size().ResizeConfig)
	assert.Equal(t, "1x, 2x", cfg.Size().Densities)
	require.Len(t, cfg.Alternates(), 1)
	alt := cfg.Alternates()[0]
	assert.Equal(t, 50, alt.ResizeConfig.ZoomLevel)
	assert.Equal(t, "50vw", alt.Sizes)
	assert.Equal(t, "(max-width: 600px)", alt.Media)
}

func TestLoadLayersModeFilesAndEnvironment(t *testing.T) {
	withMode(t, env_mode.TestMode)
	dir := writeFiles(t, map[string]string{
		"config.yaml":      baseConfig,
		"config.test.yaml": "concurrency: 2\nstorage:\n  base-url: https://cdn.example.com/images\n",
		"config.prod.yaml": "concurrency: 8\n",
	})
	t.Setenv("PICTURE_ROOT_DIR", "/var/www")

	settings, err := Load(testOptions(dir))
	require.NoError(t, err)

	assert.Equal(t, 2, settings.Concurrency)
	assert.Equal(t, "https://cdn.example.com/images", settings.Storage.BaseURL)
	assert.Equal(t, "/srv/www/assets/images", settings.Storage.BasePath)
	assert.Equal(t, "/var/www", settings.RootDir)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	withMode(t, env_mode.TestMode)

	tests := map[string]string{
		"concurrency": "concurrency: 0\n",
		"cache type":  "cache:\n  type: memcached\n",
		"redis host":  "cache:\n  type: redis\n",
		"zoom":        "pictures:\n  a:\n    size:\n      width: 10\n      zoom: 150\n",
		"mode":        "pictures:\n  a:\n    size:\n      width: 10\n      mode: stretch\n",
		"negative":    "pictures:\n  a:\n    items:\n      - width: -1\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := writeFiles(t, map[string]string{"config.yaml": content})
			_, err := Load(testOptions(dir))
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidConfiguration(err), "got %v", err)
		})
	}
}

func TestLoadWithoutFiles(t *testing.T) {
	_, err := Load(testOptions(t.TempDir()))
	assert.Error(t, err)
}

func TestPictureNotFound(t *testing.T) {
	settings := &Settings{}
	_, err := settings.Picture("missing")
	assert.True(t, apperrors.HasType(err, apperrors.ErrorTypeNotFound))
}

func TestConfigFilesOrder(t *testing.T) {
	withMode(t, env_mode.ProMode)
	dir := writeFiles(t, map[string]string{
		"config.yaml":            "a: 1\n",
		"config.local.yaml":      "a: 2\n",
		"config.production.yaml": "a: 3\n",
		"config.prod.local.yaml": "a: 4\n",
		"config.test.yaml":       "a: 5\n",
	})

	cfg, err := NewConfig(testOptions(dir))
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.local.yaml"),
		filepath.Join(dir, "config.production.yaml"),
		filepath.Join(dir, "config.prod.local.yaml"),
	}, cfg.Files())
	assert.Equal(t, 4, cfg.Get("a"))
}

package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spaghettifunk/vkspin/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeConfigOverridesDefaults(t *testing.T) {
	cfg, err := DecodeConfig(strings.NewReader(`
name = "spin"
width = 1024
log_level = "debug"

[renderer]
frames_in_flight = 3
fence_timeout = "250ms"
clear_color = [0.0, 0.0, 0.0, 1.0]

[assets]
watch = true
`))
	require.NoError(t, err)

	assert.Equal(t, "spin", cfg.Name)
	assert.Equal(t, uint32(1024), cfg.StartWidth)
	assert.Equal(t, uint32(600), cfg.StartHeight, "defaults survive")
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, uint32(3), cfg.Renderer.FramesInFlight)
	assert.Equal(t, 250*time.Millisecond, cfg.Renderer.FenceTimeout.Duration)
	assert.Equal(t, 10*time.Second, cfg.Renderer.AcquireTimeout.Duration)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, cfg.Renderer.ClearColor)
	assert.True(t, cfg.Renderer.PreferMailbox)
	assert.True(t, cfg.Assets.Watch)
	assert.Equal(t, "vert.spv", cfg.Assets.VertexShader)
}

func TestDecodeConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		toml string
	}{
		{"unknown key", `colour = "red"`},
		{"malformed", `width = `},
		{"zero frames", "[renderer]\nframes_in_flight = 0"},
		{"bad duration", "[renderer]\nfence_timeout = \"soon\""},
		{"negative timeout", "[renderer]\nacquire_timeout = \"-1s\""},
		{"bad level", `log_level = "loud"`},
		{"zero width", `width = 0`},
		{"clear color range", "[renderer]\nclear_color = [2.0, 0.0, 0.0, 1.0]"},
		{"empty shader dir", "[assets]\nshader_dir = \"\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeConfig(strings.NewReader(tt.toml))
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestZeroFramesWrapsFrameConfig(t *testing.T) {
	_, err := DecodeConfig(strings.NewReader("[renderer]\nframes_in_flight = 0"))
	require.ErrorIs(t, err, core.ErrInvalidFrameConfig)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("height = 480\n"), 0o644))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, uint32(480), cfg.StartHeight)

	require.NoError(t, os.WriteFile(path, []byte("height = \"tall\"\n"), 0o644))
	_, err = LoadConfig(path)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), path)
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

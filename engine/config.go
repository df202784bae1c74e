package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"github.com/spaghettifunk/vkspin/engine/core"
)

var ErrInvalidConfig = errors.New("invalid configuration")

func DefaultConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:        "vkspin",
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  800,
		StartHeight: 600,
		LogLevel:    "info",
		Renderer: RendererConfig{
			FramesInFlight: 2,
			Validation:     false,
			FenceTimeout:   Duration{10 * time.Second},
			AcquireTimeout: Duration{10 * time.Second},
			ClearColor:     [4]float32{0.1, 0.1, 0.4, 1.0},
			PreferMailbox:  true,
		},
		Assets: AssetsConfig{
			ShaderDir:      "shaders",
			VertexShader:   "vert.spv",
			FragmentShader: "frag.spv",
			Watch:          false,
		},
	}
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults.
func LoadConfig(path string) (*ApplicationConfig, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		core.LogWarn("Config file '%s' not found, using defaults.", path)
		cfg := DefaultConfig()
		return cfg, cfg.Validate()
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := DecodeConfig(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeConfig decodes TOML over the defaults. Unknown keys are rejected.
func DecodeConfig(r io.Reader) (*ApplicationConfig, error) {
	cfg := DefaultConfig()
	d := toml.NewDecoder(r)
	d.DisallowUnknownFields()
	if err := d.Decode(cfg); err != nil {
		var decodeErr *toml.DecodeError
		if errors.As(err, &decodeErr) {
			row, col := decodeErr.Position()
			return nil, fmt.Errorf("%w: line %d column %d: %s", ErrInvalidConfig, row, col, decodeErr)
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ApplicationConfig) Validate() error {
	var errs []error
	if c.StartWidth == 0 || c.StartHeight == 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be non-zero", c.StartWidth, c.StartHeight))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.Renderer.FramesInFlight == 0 {
		errs = append(errs, fmt.Errorf("renderer.frames_in_flight: %w", core.ErrInvalidFrameConfig))
	}
	if c.Renderer.FenceTimeout.Duration < 0 || c.Renderer.AcquireTimeout.Duration < 0 {
		errs = append(errs, errors.New("renderer timeouts must not be negative"))
	}
	for i, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("renderer.clear_color[%d] = %g is outside [0,1]", i, v))
		}
	}
	if c.Assets.ShaderDir == "" || c.Assets.VertexShader == "" || c.Assets.FragmentShader == "" {
		errs = append(errs, errors.New("assets: shader_dir, vertex_shader and fragment_shader are required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
